package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// AutoSyncToggle switches the periodic sync on and off.
type AutoSyncToggle interface {
	Enable(ctx context.Context)
	Disable(ctx context.Context)
	Enabled() bool
}

// SyncHandler serves manual sync, scheduler control and conflict overrides.
type SyncHandler struct {
	sync *app.SyncService
	auto AutoSyncToggle
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(sync *app.SyncService, auto AutoSyncToggle) *SyncHandler {
	return &SyncHandler{sync: sync, auto: auto}
}

// TriggerSync handles POST /api/v1/sync. A pass already running yields 409.
//
// @Summary Run a sync pass now
// @Tags sync
// @Produce json
// @Success 200 {object} dto.SyncReportResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/sync [post]
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	report, err := h.sync.Sync(c.Request.Context(), app.TriggerManual)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSyncReportResponse(report))
}

// GetStatus handles GET /api/v1/sync/status.
func (h *SyncHandler) GetStatus(c *gin.Context) {
	status := h.sync.Status()

	c.JSON(http.StatusOK, dto.SyncStatusResponse{
		State:            status.State.String(),
		LastSyncAt:       status.LastSyncAt,
		PendingConflicts: status.PendingConflicts,
		AutoSync:         h.auto.Enabled(),
		Passes:           status.Passes,
		Skipped:          status.Skipped,
		LastReport:       dto.NewSyncReportResponse(status.LastReport),
	})
}

// SetAutoSync handles PUT /api/v1/sync/auto with {"enabled": bool}.
func (h *SyncHandler) SetAutoSync(c *gin.Context) {
	var req dto.AutoSyncRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	if *req.Enabled {
		h.auto.Enable(c.Request.Context())
	} else {
		h.auto.Disable(c.Request.Context())
	}

	c.JSON(http.StatusOK, dto.AutoSyncResponse{Enabled: h.auto.Enabled()})
}

// ListConflicts handles GET /api/v1/conflicts.
func (h *SyncHandler) ListConflicts(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewConflictListResponse(h.sync.Conflicts()))
}

// KeepLocal handles POST /api/v1/conflicts/:id/keep-local.
//
// @Summary Restore the local side of a conflict
// @Tags conflicts
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.Quote
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/conflicts/{id}/keep-local [post]
func (h *SyncHandler) KeepLocal(c *gin.Context) {
	h.resolve(c, h.sync.KeepLocal)
}

// KeepServer handles POST /api/v1/conflicts/:id/keep-server.
func (h *SyncHandler) KeepServer(c *gin.Context) {
	h.resolve(c, h.sync.KeepServer)
}

func (h *SyncHandler) resolve(c *gin.Context, fn func(context.Context, string) (domain.Quote, error)) {
	quote, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// DismissConflicts handles DELETE /api/v1/conflicts.
func (h *SyncHandler) DismissConflicts(c *gin.Context) {
	c.JSON(http.StatusOK, dto.DismissResponse{Dismissed: h.sync.DismissAll(c.Request.Context())})
}

// RegisterSyncRoutes registers sync and conflict routes.
func (h *SyncHandler) RegisterSyncRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	sync.POST("", h.TriggerSync)
	sync.GET("/status", h.GetStatus)
	sync.PUT("/auto", h.SetAutoSync)

	conflicts := rg.Group("/conflicts")
	conflicts.GET("", h.ListConflicts)
	conflicts.DELETE("", h.DismissConflicts)
	conflicts.POST("/:id/keep-local", h.KeepLocal)
	conflicts.POST("/:id/keep-server", h.KeepServer)
}
