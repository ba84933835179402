package handler

import (
	"net/http"

	"github.com/arcollect/backend/internal/infrastructure/persistence"
	"github.com/arcollect/backend/internal/infrastructure/scheduler"
	"github.com/arcollect/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SystemHandler handles health and operational endpoints
type SystemHandler struct {
	BaseHandler
	db     *persistence.Database
	sweeps *scheduler.SweepRunner
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database, sweeps *scheduler.SweepRunner) *SystemHandler {
	return &SystemHandler{
		db:     db,
		sweeps: sweeps,
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/system")
	g.GET("/health", h.Health)
	g.POST("/sweeps/auto-approvals", h.TriggerAutoApprovalSweep)
	g.POST("/sweeps/aging", h.TriggerAgingSweep)
}

// HealthResponse represents the health check result
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health reports liveness of the service and its database
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Database: "up"}
	if err := h.db.Ping(); err != nil {
		resp.Status = "degraded"
		resp.Database = "down"
		c.JSON(http.StatusServiceUnavailable, dto.NewSuccessResponse(resp))
		return
	}
	h.Success(c, resp)
}

// TriggerAutoApprovalSweep kicks off the change request auto-approval sweep
// outside its schedule
func (h *SystemHandler) TriggerAutoApprovalSweep(c *gin.Context) {
	if err := h.sweeps.TriggerAutoApprovalSweep(); err != nil {
		h.Error(c, http.StatusConflict, dto.ErrCodeConflict, err.Error())
		return
	}
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(nil))
}

// TriggerAgingSweep kicks off the collection aging sweep outside its schedule
func (h *SystemHandler) TriggerAgingSweep(c *gin.Context) {
	if err := h.sweeps.TriggerAgingSweep(); err != nil {
		h.Error(c, http.StatusConflict, dto.ErrCodeConflict, err.Error())
		return
	}
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(nil))
}
