package handler

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	eventapp "github.com/scholarly/backcontent/internal/application/event"
	"github.com/scholarly/backcontent/internal/infrastructure/logger"
	"github.com/scholarly/backcontent/internal/infrastructure/persistence"
	"github.com/scholarly/backcontent/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping() error
}

type poolReporter interface {
	Pool() (persistence.PoolStats, error)
}

// SystemHandler serves health probes and the activity feed
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	activity  *eventapp.PublicationNotifier
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, db Pinger, activity *eventapp.PublicationNotifier) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		db:        db,
		activity:  activity,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health answers as long as the process serves requests
// @Router /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Ready checks the database
// @Router /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		logger.GetGinLogger(c).Warn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "error",
		})
		return
	}
	body := gin.H{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": "ok",
	}
	if pr, ok := h.db.(poolReporter); ok {
		if pool, err := pr.Pool(); err == nil {
			body["pool"] = pool
		}
	}
	c.JSON(http.StatusOK, body)
}

// Info godoc
// @Summary      Get system information
// @Tags         system
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /system/info [get]
func (h *SystemHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}))
}

// Activity returns the journal's most recent back content events
// @Param  limit query int false "At most 100"
// @Router /activity [get]
func (h *SystemHandler) Activity(c *gin.Context) {
	journalID, ok := h.journalID(c)
	if !ok {
		return
	}
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(n, 100)
	}
	h.Success(c, h.activity.Recent(journalID, limit))
}
