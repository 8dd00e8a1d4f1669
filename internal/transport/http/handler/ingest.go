package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"talentsearch/internal/cache"
	"talentsearch/internal/platform/rabbitmq"
	"talentsearch/internal/transport/http/response"
	"talentsearch/internal/vectorstore"
	"talentsearch/pkg/log"
)

// JobPublisher enqueues ingest jobs on the message broker.
type JobPublisher interface {
	Publish(ctx context.Context, job rabbitmq.IngestJob) error
}

// JobStatusStore tracks ingest job lifecycle states.
type JobStatusStore interface {
	Set(ctx context.Context, status cache.JobStatus) error
	Get(ctx context.Context, jobID string) (*cache.JobStatus, bool, error)
}

type IngestHandler struct {
	publisher JobPublisher
	jobStatus JobStatusStore
	store     vectorstore.Store
}

type IngestRequest struct {
	Dir string `json:"dir" binding:"required"`
}

func NewIngestHandler(publisher JobPublisher, jobStatus JobStatusStore, store vectorstore.Store) *IngestHandler {
	return &IngestHandler{publisher: publisher, jobStatus: jobStatus, store: store}
}

// Enqueue validates the source directory and queues an asynchronous ingest
// job; the response carries the job ID for status polling.
func (h *IngestHandler) Enqueue(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	info, err := os.Stat(req.Dir)
	if err != nil || !info.IsDir() {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "source directory does not exist")
		return
	}

	job := rabbitmq.IngestJob{ID: newJobID(), Dir: req.Dir}
	if err := h.jobStatus.Set(c.Request.Context(), cache.JobStatus{
		ID:     job.ID,
		Status: cache.JobQueued,
		Dir:    job.Dir,
	}); err != nil {
		log.Error("set queued job status failed", err)
	}
	if err := h.publisher.Publish(c.Request.Context(), job); err != nil {
		log.Error("publish ingest job failed", err)
		// The queued record must not outlive a failed enqueue, or status
		// polling would report a job no worker will ever pick up.
		if setErr := h.jobStatus.Set(c.Request.Context(), cache.JobStatus{
			ID:     job.ID,
			Status: cache.JobFailed,
			Dir:    job.Dir,
			Error:  "enqueue failed: " + err.Error(),
		}); setErr != nil {
			log.Error("set failed job status failed", setErr)
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "enqueue ingest job failed")
		return
	}

	response.OK(c, gin.H{"job_id": job.ID})
}

func (h *IngestHandler) JobStatus(c *gin.Context) {
	jobID := c.Param("id")
	if jobID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing job id")
		return
	}

	status, found, err := h.jobStatus.Get(c.Request.Context(), jobID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "load job status failed")
		return
	}
	if !found {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "job not found")
		return
	}

	response.OK(c, status)
}

// ResetStore drops every chunk from the vector store. Meant for operators
// rebuilding from scratch, e.g. after switching the embedding model.
func (h *IngestHandler) ResetStore(c *gin.Context) {
	if err := h.store.Reset(c.Request.Context()); err != nil {
		log.Error("reset vector store failed", err)
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, "reset vector store failed")
		return
	}
	log.Info("vector store reset by operator")
	response.OK(c, gin.H{"reset": true})
}

func newJobID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
