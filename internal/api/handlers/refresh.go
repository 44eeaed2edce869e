package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psyrax/pokeprices/internal/services"
)

type RefreshHandler struct {
	baseCtx  context.Context
	worker   *services.RefreshWorker
	settings *services.SettingsStore
}

// NewRefreshHandler binds the worker to baseCtx so a background run outlives
// the triggering request but stops with the server.
func NewRefreshHandler(baseCtx context.Context, worker *services.RefreshWorker, settings *services.SettingsStore) *RefreshHandler {
	return &RefreshHandler{baseCtx: baseCtx, worker: worker, settings: settings}
}

// StartRefresh kicks off the batch card refresh. 409 while a run is active.
func (h *RefreshHandler) StartRefresh(c *gin.Context) {
	apiKey, err := h.settings.APIKey()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if apiKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "JustTCG API key is not configured"})
		return
	}

	if err := h.worker.Start(h.baseCtx, apiKey); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, h.worker.GetStatus())
}

func (h *RefreshHandler) GetRefreshStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.worker.GetStatus())
}
