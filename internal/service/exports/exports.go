package exports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/samirwankhede/channel-booking-reports/internal/export"
	kafkax "github.com/samirwankhede/channel-booking-reports/internal/kafka"
	"github.com/samirwankhede/channel-booking-reports/internal/metrics"
	redisx "github.com/samirwankhede/channel-booking-reports/internal/redis"
	"github.com/samirwankhede/channel-booking-reports/internal/report"
)

// Reports is the snapshot fetch an export renders from.
type Reports interface {
	Fetch(ctx context.Context, f report.Filter, g report.Grouping) ([]report.BookingRecord, report.Summary, error)
}

// JobStore persists job state and finished artifacts.
type JobStore interface {
	Save(ctx context.Context, job export.Job) error
	Get(ctx context.Context, id string) (export.Job, error)
	SaveArtifact(ctx context.Context, id string, data []byte) error
	Artifact(ctx context.Context, id string) ([]byte, error)
}

type Publisher interface {
	PublishJSON(ctx context.Context, key string, typ string, v any) error
}

type ExportRequest struct {
	Filter   report.Filter   `json:"filter"`
	Grouping report.Grouping `json:"grouping"`
	Format   export.Format   `json:"format"`
}

// JobMessage is the queue payload of an export request.
type JobMessage struct {
	JobID string `json:"job_id"`
}

// Artifact is a rendered export ready for download.
type Artifact struct {
	FileName    string
	ContentType string
	Data        []byte
}

var (
	ErrJobNotFound = errors.New("export job not found")
	ErrJobNotReady = errors.New("export job not ready")
)

type ExportsService struct {
	log       *zap.Logger
	reports   Reports
	jobs      JobStore
	publisher Publisher
	top       int
	now       func() time.Time
}

func NewExportsService(log *zap.Logger, reports Reports, jobs JobStore, publisher Publisher, top int) *ExportsService {
	return &ExportsService{
		log:       log,
		reports:   reports,
		jobs:      jobs,
		publisher: publisher,
		top:       top,
		now:       time.Now,
	}
}

// Render fetches one snapshot and renders it in the requested format.
func (s *ExportsService) Render(ctx context.Context, req ExportRequest) (*Artifact, error) {
	rows, summary, err := s.reports.Fetch(ctx, req.Filter, req.Grouping)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report: %w", err)
	}

	timer := prometheus.NewTimer(metrics.ExportRenderDuration)
	defer timer.ObserveDuration()

	at := s.now()
	meta := export.Meta{
		StartDate:   req.Filter.StartDate,
		EndDate:     req.Filter.EndDate,
		DateType:    req.Filter.DateType,
		GeneratedAt: at,
	}
	var data []byte
	switch req.Format {
	case export.FormatPDF:
		data, err = export.PDF(rows, summary, meta, s.top)
	default:
		req.Format = export.FormatXLSX
		data, err = export.Workbook(rows, summary, meta)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", req.Format, err)
	}
	return &Artifact{FileName: export.FileName(req.Format, at), ContentType: req.Format.ContentType(), Data: data}, nil
}

// Submit records a queued job and hands it to the worker queue.
func (s *ExportsService) Submit(ctx context.Context, req ExportRequest, requestedBy string) (export.Job, error) {
	now := s.now()
	job := export.Job{
		ID:          uuid.NewString(),
		Status:      export.JobQueued,
		Format:      export.ParseFormat(string(req.Format)),
		Grouping:    req.Grouping,
		Filter:      req.Filter,
		RequestedBy: requestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return job, fmt.Errorf("failed to save export job: %w", err)
	}
	if err := s.publisher.PublishJSON(ctx, job.ID, kafkax.TypeExportRequested, JobMessage{JobID: job.ID}); err != nil {
		s.fail(ctx, job, err)
		return job, fmt.Errorf("failed to enqueue export job: %w", err)
	}
	metrics.ExportJobsTotal.WithLabelValues("queued").Inc()
	s.log.Info("export requested",
		zap.String("category", "access"),
		zap.String("job_id", job.ID),
		zap.String("requested_by", requestedBy),
		zap.String("format", string(job.Format)))
	return job, nil
}

// Handle runs a queued job. A job already finished is skipped so redelivered
// messages are harmless.
func (s *ExportsService) Handle(ctx context.Context, msg JobMessage) error {
	job, err := s.jobs.Get(ctx, msg.JobID)
	if errors.Is(err, redisx.ErrNotFound) {
		s.log.Warn("export job expired before it ran", zap.String("job_id", msg.JobID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load export job: %w", err)
	}
	if job.Status == export.JobDone {
		return nil
	}

	job.Status = export.JobRunning
	job.Attempts++
	job.UpdatedAt = s.now()
	if err := s.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("failed to mark export job running: %w", err)
	}

	art, err := s.Render(ctx, ExportRequest{Filter: job.Filter, Grouping: job.Grouping, Format: job.Format})
	if err == nil {
		err = s.jobs.SaveArtifact(ctx, job.ID, art.Data)
	}
	if err != nil {
		s.fail(ctx, job, err)
		return err
	}

	job.Status = export.JobDone
	job.FileName = art.FileName
	job.Error = ""
	job.UpdatedAt = s.now()
	if err := s.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("failed to mark export job done: %w", err)
	}
	metrics.ExportJobsTotal.WithLabelValues("done").Inc()
	s.log.Info("export finished", zap.String("job_id", job.ID), zap.Int("bytes", len(art.Data)))
	return nil
}

func (s *ExportsService) fail(ctx context.Context, job export.Job, cause error) {
	metrics.ExportJobsTotal.WithLabelValues("failed").Inc()
	s.log.Error("export failed", zap.String("job_id", job.ID), zap.Error(cause))
	job.Status = export.JobFailed
	job.Error = cause.Error()
	job.UpdatedAt = s.now()
	if err := s.jobs.Save(ctx, job); err != nil {
		s.log.Error("failed to mark export job failed", zap.String("job_id", job.ID), zap.Error(err))
	}
}

func (s *ExportsService) Status(ctx context.Context, id string) (export.Job, error) {
	job, err := s.jobs.Get(ctx, id)
	if errors.Is(err, redisx.ErrNotFound) {
		return job, ErrJobNotFound
	}
	return job, err
}

// Download returns the artifact of a finished job.
func (s *ExportsService) Download(ctx context.Context, id string) (*Artifact, error) {
	job, err := s.Status(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != export.JobDone {
		return nil, ErrJobNotReady
	}
	data, err := s.jobs.Artifact(ctx, id)
	if errors.Is(err, redisx.ErrNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &Artifact{FileName: job.FileName, ContentType: job.Format.ContentType(), Data: data}, nil
}
