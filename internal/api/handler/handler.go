package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mebegu/audiocorrect/internal/api/dto"
	"github.com/mebegu/audiocorrect/internal/domain"
	"github.com/mebegu/audiocorrect/internal/service"
)

// QueueChecker reports broker connectivity for the health endpoint.
// Satisfied by the shared rabbitmq client.
type QueueChecker interface {
	IsConnected() bool
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger         *slog.Logger
	Ingestion      *service.Ingestion
	Status         *service.StatusQuery
	Delivery       *service.Delivery
	Queue          QueueChecker
	UploadDir      string
	MaxUploadBytes int64
}

// AudioHandler handles audio-correction HTTP requests
type AudioHandler struct {
	logger         *slog.Logger
	ingestion      *service.Ingestion
	status         *service.StatusQuery
	delivery       *service.Delivery
	queue          QueueChecker
	uploadDir      string
	maxUploadBytes int64
}

// NewAudioHandler creates a new AudioHandler instance
func NewAudioHandler(deps *Dependencies) *AudioHandler {
	return &AudioHandler{
		logger:         deps.Logger,
		ingestion:      deps.Ingestion,
		status:         deps.Status,
		delivery:       deps.Delivery,
		queue:          deps.Queue,
		uploadDir:      deps.UploadDir,
		maxUploadBytes: deps.MaxUploadBytes,
	}
}

// httpStatusFor maps a domain error kind to its boundary status code.
func httpStatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindNotReady:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the uniform JSON error body. Only the domain message
// crosses the boundary; wrapped causes stay in the logs.
func (h *AudioHandler) respondError(c *gin.Context, err error) {
	status := httpStatusFor(err)

	msg := "internal server error"
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Message
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
	}

	c.JSON(status, dto.ErrorResponse{Error: msg})
}
