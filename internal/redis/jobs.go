package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/samirwankhede/channel-booking-reports/internal/export"
)

var ErrNotFound = errors.New("not found")

// JobStore keeps export job state and rendered artifacts, both expiring after ttl.
type JobStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewJobStore(client *redis.Client, ttl time.Duration) *JobStore {
	return &JobStore{client: client, ttl: ttl}
}

func (s *JobStore) jobKey(id string) string      { return "reports:export:job:" + id }
func (s *JobStore) artifactKey(id string) string { return "reports:export:file:" + id }

func (s *JobStore) Save(ctx context.Context, job export.Job) error {
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.jobKey(job.ID), b, s.ttl).Err()
}

func (s *JobStore) Get(ctx context.Context, id string) (export.Job, error) {
	var job export.Job
	b, err := s.client.Get(ctx, s.jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return job, ErrNotFound
	}
	if err != nil {
		return job, err
	}
	err = json.Unmarshal(b, &job)
	return job, err
}

func (s *JobStore) SaveArtifact(ctx context.Context, id string, data []byte) error {
	return s.client.Set(ctx, s.artifactKey(id), data, s.ttl).Err()
}

func (s *JobStore) Artifact(ctx context.Context, id string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.artifactKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}
