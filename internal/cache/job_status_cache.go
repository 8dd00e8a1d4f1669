package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// Ingest job lifecycle states.
const (
	JobQueued  = "queued"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

// JobStatus is the externally visible state of one asynchronous ingest job.
type JobStatus struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Dir       string    `json:"dir"`
	Documents int       `json:"documents,omitempty"`
	Chunks    int       `json:"chunks,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobStatusCache keeps ingest job states in Redis with a TTL, so finished
// jobs age out on their own.
type JobStatusCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewJobStatusCache(client *redisv9.Client, ttl time.Duration) *JobStatusCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JobStatusCache{client: client, ttl: ttl}
}

func (c *JobStatusCache) Set(ctx context.Context, status JobStatus) error {
	status.UpdatedAt = time.Now()
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal job status failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(status.ID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set job status failed: %w", err)
	}
	return nil
}

// Get returns the job status and whether it exists.
func (c *JobStatusCache) Get(ctx context.Context, jobID string) (*JobStatus, bool, error) {
	raw, err := c.client.Get(ctx, c.key(jobID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get job status failed: %w", err)
	}
	var status JobStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return nil, false, fmt.Errorf("unmarshal job status failed: %w", err)
	}
	return &status, true, nil
}

func (c *JobStatusCache) key(jobID string) string {
	return fmt.Sprintf("ingest:job:%s", jobID)
}
