package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shiprelay/backend/internal/interfaces/http/dto"
)

// SystemHandler serves the liveness and health probes
type SystemHandler struct {
	BaseHandler
	service         string
	version         string
	idempotencyKind string
	startTime       time.Time
}

// NewSystemHandler creates a new SystemHandler. idempotencyKind names the
// configured store and is empty when idempotency is disabled.
func NewSystemHandler(service, version, idempotencyKind string) *SystemHandler {
	return &SystemHandler{
		service:         service,
		version:         version,
		idempotencyKind: idempotencyKind,
		startTime:       time.Now(),
	}
}

// Root answers GET /
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StatusResponse{
		Status:  "ok",
		Service: h.service,
	})
}

// Health answers GET /health with build and runtime details
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StatusResponse{
		Status:      "ok",
		Service:     h.service,
		Version:     h.version,
		GoVersion:   runtime.Version(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Idempotency: h.idempotencyKind,
	})
}
