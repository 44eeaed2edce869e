package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psyrax/pokeprices/internal/metrics"
	"github.com/psyrax/pokeprices/internal/services"
)

type SetHandler struct {
	repo     *services.CardRepository
	settings *services.SettingsStore
}

func NewSetHandler(repo *services.CardRepository, settings *services.SettingsStore) *SetHandler {
	return &SetHandler{repo: repo, settings: settings}
}

// ListSets returns the locally stored catalog, newest release first.
func (h *SetHandler) ListSets(c *gin.Context) {
	sets, err := h.repo.AllSets()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sets)
}

// RefreshSets re-fetches the remote set list and upserts it by id. Sets
// that vanished remotely stay in the local catalog.
func (h *SetHandler) RefreshSets(c *gin.Context) {
	apiKey, err := h.settings.APIKey()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if apiKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "JustTCG API key is not configured"})
		return
	}

	game := c.DefaultQuery("game", "pokemon")
	payloads, err := h.repo.FetchSets(c.Request.Context(), apiKey, game)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if err := h.repo.SaveSets(payloads); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.CatalogSets.Set(float64(len(payloads)))
	c.JSON(http.StatusOK, gin.H{"sets_loaded": len(payloads)})
}
