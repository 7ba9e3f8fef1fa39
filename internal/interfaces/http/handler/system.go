package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/resumescore/backend/internal/infrastructure/persistence"
	"github.com/resumescore/backend/internal/interfaces/http/dto"
)

// HealthChecker reports whether the database is reachable and how its
// connection pool is doing
type HealthChecker interface {
	Ping() error
	Stats() (persistence.ConnectionStats, error)
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	db        HealthChecker
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db HealthChecker) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		db:        db,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns basic system information including version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "Resume Scorer API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping checks if the API is responsive
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// PoolStats is the connection pool summary included in health checks
type PoolStats struct {
	Open      int   `json:"open"`
	InUse     int   `json:"in_use"`
	Idle      int   `json:"idle"`
	WaitCount int64 `json:"wait_count"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string     `json:"status"`
	Database string     `json:"database,omitempty"`
	Pool     *PoolStats `json:"pool,omitempty"`
}

// Health reports service and dependency health
func (h *SystemHandler) Health(c *gin.Context) {
	response := HealthResponse{Status: "ok"}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			response.Status = "degraded"
			response.Database = "unreachable"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "ok"

		if stats, err := h.db.Stats(); err == nil {
			response.Pool = &PoolStats{
				Open:      stats.OpenConnections,
				InUse:     stats.InUse,
				Idle:      stats.Idle,
				WaitCount: stats.WaitCount,
			}
		}
	}

	c.JSON(http.StatusOK, response)
}

// RegisterRoutes registers system routes on the API group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", h.GetSystemInfo)
		system.GET("/ping", h.Ping)
	}
}
