package export

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/samirwankhede/channel-booking-reports/internal/report"
)

const (
	summarySheet = "요약"
	detailSheet  = "채널별 통계"
	maxColWidth  = 50
)

// Meta describes the request an artifact was rendered for.
type Meta struct {
	StartDate   time.Time
	EndDate     time.Time
	DateType    report.DateType
	Message     string
	GeneratedAt time.Time
}

type column struct {
	header string
	value  func(r report.BookingRecord) any
	hotel  bool
}

var columns = []column{
	{header: "예약일", value: func(r report.BookingRecord) any {
		if r.BookingDate == nil {
			return ""
		}
		return r.BookingDate.Format(report.DateLayout)
	}},
	{header: "채널명", value: func(r report.BookingRecord) any { return r.ChannelName }},
	{header: "채널코드", value: func(r report.BookingRecord) any { return r.ChannelCode }},
	{header: "판매유형", value: func(r report.BookingRecord) any { return r.SaleType }},
	{header: "호텔명", hotel: true, value: func(r report.BookingRecord) any { return r.HotelName }},
	{header: "호텔코드", hotel: true, value: func(r report.BookingRecord) any { return r.HotelCode }},
	{header: "예약건수", value: func(r report.BookingRecord) any { return r.BookingCount }},
	{header: "호텔수", value: func(r report.BookingRecord) any { return r.HotelCount }},
	{header: "총객실수", value: func(r report.BookingRecord) any { return r.TotalRooms }},
	{header: "확정객실수", value: func(r report.BookingRecord) any { return r.ConfirmedRooms }},
	{header: "취소객실수", value: func(r report.BookingRecord) any { return r.CancelledRooms }},
	{header: "취소율(%)", value: func(r report.BookingRecord) any { return r.CancellationRate }},
	{header: "입금가", value: func(r report.BookingRecord) any { return r.TotalDeposit }},
	{header: "구매가", value: func(r report.BookingRecord) any { return r.TotalPurchase }},
	{header: "수익", value: func(r report.BookingRecord) any { return r.TotalProfit }},
	{header: "수익률(%)", value: func(r report.BookingRecord) any { return r.ProfitRate }},
}

// Workbook renders a summary sheet and the detail sheet. Hotel columns appear
// only when some row carries a hotel.
func Workbook(rows []report.BookingRecord, summary report.Summary, meta Meta) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return nil, err
	}
	ratio, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, err
	}

	generated := meta.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	summaryRows := [][]any{
		{"항목", "값"},
		{"총 예약 건수", fmt.Sprintf("%s건", thousandsSep(summary.TotalBookings))},
		{"총 매출액", fmt.Sprintf("%s원", thousandsSep(summary.TotalRevenue))},
		{"조회 채널 수", fmt.Sprintf("%d개", summary.ChannelCount)},
		{"영업일 수", fmt.Sprintf("%d일", summary.ActiveDays)},
		{"조회 기간", fmt.Sprintf("%s ~ %s", meta.StartDate.Format(report.DateLayout), meta.EndDate.Format(report.DateLayout))},
		{"날짜 유형", string(meta.DateType)},
		{"생성 일시", generated.Format("2006-01-02 15:04:05")},
	}
	if meta.Message != "" {
		summaryRows = append(summaryRows, []any{"메시지", meta.Message})
	}
	if err := writeTable(f, summarySheet, summaryRows, bold, nil); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(detailSheet); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		if err := writeTable(f, detailSheet, [][]any{{"메시지"}, {"조회된 데이터가 없습니다."}}, bold, nil); err != nil {
			return nil, err
		}
	} else {
		cols := activeColumns(rows)
		table := make([][]any, 0, len(rows)+1)
		header := make([]any, len(cols))
		styles := make([]int, len(cols))
		for i, c := range cols {
			header[i] = c.header
			switch c.value(report.BookingRecord{}).(type) {
			case int64:
				styles[i] = thousands
			case float64:
				styles[i] = ratio
			}
		}
		table = append(table, header)
		for _, r := range rows {
			line := make([]any, len(cols))
			for i, c := range cols {
				line[i] = c.value(r)
			}
			table = append(table, line)
		}
		if err := writeTable(f, detailSheet, table, bold, styles); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func activeColumns(rows []report.BookingRecord) []column {
	hotels := false
	for _, r := range rows {
		if r.HotelID != nil || r.HotelName != "" {
			hotels = true
			break
		}
	}
	out := make([]column, 0, len(columns))
	for _, c := range columns {
		if c.hotel && !hotels {
			continue
		}
		out = append(out, c)
	}
	return out
}

// writeTable writes rows starting at A1, bolds the header and sizes each column
// to its widest cell.
func writeTable(f *excelize.File, sheet string, rows [][]any, headerStyle int, colStyles []int) error {
	widths := map[int]int{}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
			style := 0
			if r == 0 {
				style = headerStyle
			} else if c < len(colStyles) {
				style = colStyles[c]
			}
			if style != 0 {
				if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
					return err
				}
			}
			if w := displayWidth(fmt.Sprint(v)); w > widths[c] {
				widths[c] = w
			}
		}
	}
	for c, w := range widths {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, float64(min(w+2, maxColWidth))); err != nil {
			return err
		}
	}
	return nil
}

// displayWidth counts wide (non-ASCII) runes double.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r < utf8.RuneSelf {
			w++
		} else {
			w += 2
		}
	}
	return w
}

func thousandsSep(n int64) string {
	s := fmt.Sprint(n)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
