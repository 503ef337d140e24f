package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mebegu/audiocorrect/internal/api/dto"
	"github.com/mebegu/audiocorrect/internal/domain"
)

// Upload handles POST /upload
// Accepts a multipart form with an audio file and a submitter email,
// stages the file to disk, and submits it for correction.
func (h *AudioHandler) Upload(c *gin.Context) {
	email := c.PostForm("email")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.respondError(c, domain.Validation("audio file is required"))
		return
	}

	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		h.respondError(c, domain.Validation(fmt.Sprintf("file exceeds the %d byte upload limit", h.maxUploadBytes)))
		return
	}

	if ct := fileHeader.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "audio/") {
		h.respondError(c, domain.Validation("invalid file type"))
		return
	}

	// Stage the upload to disk before ingestion reads it, mirroring the
	// recorder client's chunked uploads.
	staged := filepath.Join(h.uploadDir, fmt.Sprintf("file-%d%s", time.Now().UnixNano(), filepath.Ext(fileHeader.Filename)))
	if err := c.SaveUploadedFile(fileHeader, staged); err != nil {
		h.respondError(c, domain.Ingestion(err))
		return
	}
	defer os.Remove(staged)

	audio, err := os.ReadFile(staged)
	if err != nil {
		h.respondError(c, domain.Ingestion(err))
		return
	}

	id, err := h.ingestion.Submit(c.Request.Context(), email, audio)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{ID: id})
}

// GetStatus handles GET /status/:id
func (h *AudioHandler) GetStatus(c *gin.Context) {
	id := c.Param("id")

	job, err := h.status.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := dto.StatusResponse{Status: string(job.Status)}
	if job.ResultLocation != "" {
		resp.CorrectedAudio = &job.ResultLocation
	}

	c.JSON(http.StatusOK, resp)
}

// ListJobs handles GET /status
// Returns every job, most recent first.
func (h *AudioHandler) ListJobs(c *gin.Context) {
	jobs, err := h.status.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]dto.JobItem, len(jobs))
	for i, job := range jobs {
		items[i] = dto.JobItem{
			ID:        job.ID,
			Email:     job.Email,
			CreatedAt: job.CreatedAt.Format(time.RFC3339),
			UpdatedAt: job.UpdatedAt.Format(time.RFC3339),
			FilePath:  job.SourceLocation,
			Status:    string(job.Status),
		}
		if job.ResultLocation != "" {
			items[i].CorrectedFilePath = &job.ResultLocation
		}
	}

	c.JSON(http.StatusOK, items)
}

// Health handles GET /health
// Always reports liveness; broker connectivity is included when a queue
// client is wired.
func (h *AudioHandler) Health(c *gin.Context) {
	resp := gin.H{
		"status":  "healthy",
		"service": "audio-correction-api",
	}

	if h.queue != nil {
		if h.queue.IsConnected() {
			resp["queue"] = "connected"
		} else {
			resp["queue"] = "disconnected"
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Download handles GET /download/:id
// Streams the corrected audio as a wav attachment once processing is done.
func (h *AudioHandler) Download(c *gin.Context) {
	id := c.Param("id")

	rc, err := h.delivery.Fetch(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="corrected-%s.wav"`, id))
	c.Header("Content-Type", "audio/wav")
	c.Status(http.StatusOK)

	// The status line is already written; a mid-stream failure can only
	// be logged, never retried silently.
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.logger.Error("Corrected audio stream interrupted",
			slog.String("job_id", id),
			slog.Any("error", domain.Delivery(err)),
		)
	}
}
