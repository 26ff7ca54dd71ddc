package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/samirwankhede/channel-booking-reports/internal/report"
)

// PDF renders a one-page summary with the top rows. The core fonts cover
// cp1252 only; characters outside it do not survive translation.
func PDF(rows []report.BookingRecord, summary report.Summary, meta Meta, top int) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	generated := meta.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "Channel Booking Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Period %s ~ %s (%s)", meta.StartDate.Format(report.DateLayout), meta.EndDate.Format(report.DateLayout), meta.DateType), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", generated.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	if meta.Message != "" {
		pdf.MultiCell(0, 5, tr(meta.Message), "", "L", false)
	}

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Summary", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Bookings: %s", thousandsSep(summary.TotalBookings)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Revenue: %s", thousandsSep(summary.TotalRevenue)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Channels: %d", summary.ChannelCount), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Active days: %d", summary.ActiveDays), "", 1, "L", false, 0, "")

	pdf.Ln(3)
	headers := []string{"Date", "Channel", "Sale type", "Bookings", "Rooms", "Cancel %", "Deposit", "Purchase", "Profit", "Profit %"}
	widths := []float64{24, 60, 20, 22, 20, 20, 30, 30, 27, 20}
	pdf.SetFont("Arial", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	if len(rows) == 0 {
		pdf.CellFormat(0, 6, "No data for this filter.", "1", 1, "C", false, 0, "")
	}
	if top > 0 && len(rows) > top {
		rows = rows[:top]
	}
	for _, r := range rows {
		date := ""
		if r.BookingDate != nil {
			date = r.BookingDate.Format(report.DateLayout)
		}
		cells := []string{
			date,
			tr(r.ChannelName),
			r.SaleType,
			thousandsSep(r.BookingCount),
			thousandsSep(r.TotalRooms),
			fmt.Sprintf("%.1f", r.CancellationRate),
			thousandsSep(r.TotalDeposit),
			thousandsSep(r.TotalPurchase),
			thousandsSep(r.TotalProfit),
			fmt.Sprintf("%.1f", r.ProfitRate),
		}
		for i, v := range cells {
			align := "R"
			if i < 3 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 5, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
