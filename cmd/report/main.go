package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/samirwankhede/channel-booking-reports/internal/app"
	"github.com/samirwankhede/channel-booking-reports/internal/config"
	"github.com/samirwankhede/channel-booking-reports/internal/export"
	"github.com/samirwankhede/channel-booking-reports/internal/report"
	exportsService "github.com/samirwankhede/channel-booking-reports/internal/service/exports"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	loc := cfg.Location()
	yesterday := report.DateOf(time.Now().In(loc)).AddDate(0, 0, -1)

	start := flag.String("start", yesterday.AddDate(0, 0, -6).Format(report.DateLayout), "first day, YYYY-MM-DD")
	end := flag.String("end", yesterday.Format(report.DateLayout), "last day, YYYY-MM-DD")
	dateType := flag.String("date-type", string(report.DateTypeOrder), "orderDate or useDate")
	channels := flag.String("channels", report.AllChannels, "comma separated channel names")
	orderStatus := flag.String("status", string(report.StatusAll), "all, confirmed or cancelled")
	saleType := flag.String("sale-type", string(report.SaleTypeAll), "all, b2c or b2b")
	grouping := flag.String("grouping", string(report.GroupByDateChannel), "date_channel, channel or date_hotel_channel")
	format := flag.String("format", string(export.FormatXLSX), "xlsx or pdf")
	out := flag.String("out", ".", "output directory")
	flag.Parse()

	log := app.Logger(cfg, "report")
	defer log.Sync()
	ctx := context.Background()

	f := report.Filter{
		DateType:    report.DateType(*dateType),
		OrderStatus: report.StatusFilter(*orderStatus),
		SaleType:    report.SaleType(*saleType),
	}.Normalize()
	for _, c := range strings.Split(*channels, ",") {
		if c = strings.TrimSpace(c); c != "" {
			f.Channels = append(f.Channels, c)
		}
	}
	var err error
	if f.StartDate, err = report.ParseDate(*start, loc); err != nil {
		log.Fatal("bad -start", zap.Error(err))
	}
	if f.EndDate, err = report.ParseDate(*end, loc); err != nil {
		log.Fatal("bad -end", zap.Error(err))
	}
	if err := f.Validate(time.Now().In(loc), app.Limits(cfg)); err != nil {
		log.Fatal("invalid filter", zap.Error(err))
	}

	db, err := app.OpenDB(ctx, cfg)
	if err != nil {
		log.Fatal("db", zap.Error(err))
	}
	defer db.Close()

	// No Redis here: the channel list is not needed for a single export.
	reportsSvc := app.NewReports(cfg, log, db, nil)
	exportsSvc := exportsService.NewExportsService(log, reportsSvc, nil, nil, cfg.TopN)

	art, err := exportsSvc.Render(ctx, exportsService.ExportRequest{
		Filter:   f,
		Grouping: report.Grouping(*grouping),
		Format:   export.ParseFormat(*format),
	})
	if err != nil {
		log.Fatal("export failed", zap.Error(err))
	}

	path := filepath.Join(*out, art.FileName)
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		log.Fatal("write export", zap.Error(err))
	}
	fmt.Println("report written to", path)
}
