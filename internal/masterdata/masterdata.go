// Package masterdata reads the operator-maintained reference workbook.
package masterdata

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/samirwankhede/channel-booking-reports/internal/report/channel"
	"github.com/samirwankhede/channel-booking-reports/internal/report/status"
)

const (
	ChannelsSheet = "channels"
	StatusSheet   = "order_status"
)

// Data is the parsed workbook. Warnings list sheets or rows that were skipped.
type Data struct {
	Channels channel.IndexTable
	Statuses []status.Entry
	Warnings []string
}

func Load(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer f.Close()
	return Read(f)
}

func Read(r io.Reader) (Data, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return Data{}, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	d := Data{Channels: channel.IndexTable{}}
	if rows, err := wb.GetRows(ChannelsSheet); err != nil {
		d.Warnings = append(d.Warnings, fmt.Sprintf("sheet %q: %v", ChannelsSheet, err))
	} else {
		d.readChannels(rows)
	}
	if rows, err := wb.GetRows(StatusSheet); err != nil {
		d.Warnings = append(d.Warnings, fmt.Sprintf("sheet %q: %v", StatusSheet, err))
	} else {
		d.readStatuses(rows)
	}
	return d, nil
}

func (d *Data) readChannels(rows [][]string) {
	if len(rows) == 0 {
		return
	}
	idCol := column(rows[0], "id", "idx", "channel_idx")
	nameCol := column(rows[0], "channels", "channel", "name", "채널명")
	if idCol < 0 || nameCol < 0 {
		d.Warnings = append(d.Warnings, fmt.Sprintf("sheet %q: missing ID or channels column", ChannelsSheet))
		return
	}
	for i, row := range rows[1:] {
		id, name := cell(row, idCol), cell(row, nameCol)
		if id == "" || name == "" {
			continue
		}
		n, err := strconv.ParseFloat(id, 64)
		if err != nil {
			d.Warnings = append(d.Warnings, fmt.Sprintf("sheet %q row %d: bad ID %q", ChannelsSheet, i+2, id))
			continue
		}
		if _, ok := d.Channels[int64(n)]; !ok {
			d.Channels[int64(n)] = name
		}
	}
}

func (d *Data) readStatuses(rows [][]string) {
	if len(rows) == 0 {
		return
	}
	codeCol := column(rows[0], "code", "status", "order_status", "상태코드")
	groupCol := column(rows[0], "group", "status_group", "구분", "그룹")
	if codeCol < 0 || groupCol < 0 {
		d.Warnings = append(d.Warnings, fmt.Sprintf("sheet %q: missing code or group column", StatusSheet))
		return
	}
	for _, row := range rows[1:] {
		code := cell(row, codeCol)
		if code == "" {
			continue
		}
		d.Statuses = append(d.Statuses, status.Entry{Code: code, Group: status.ParseGroup(cell(row, groupCol))})
	}
}

func column(header []string, names ...string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
