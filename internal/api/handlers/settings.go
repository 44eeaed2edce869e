package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psyrax/pokeprices/internal/services"
)

type SettingsHandler struct {
	settings     *services.SettingsStore
	currencyRepo *services.CurrencyRepository
}

func NewSettingsHandler(settings *services.SettingsStore, currencyRepo *services.CurrencyRepository) *SettingsHandler {
	return &SettingsHandler{settings: settings, currencyRepo: currencyRepo}
}

type settingsResponse struct {
	APIKeyConfigured bool    `json:"api_key_configured"`
	USDToMXNRate     float64 `json:"usd_to_mxn_rate"`
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	apiKey, err := h.settings.APIKey()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	rate, err := h.settings.USDToMXNRate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settingsResponse{
		APIKeyConfigured: apiKey != "",
		USDToMXNRate:     rate,
	})
}

type saveSettingsRequest struct {
	APIKey       *string  `json:"api_key"`
	USDToMXNRate *float64 `json:"usd_to_mxn_rate"`
}

func (h *SettingsHandler) SaveSettings(c *gin.Context) {
	var req saveSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.APIKey != nil {
		if err := h.settings.SaveAPIKey(*req.APIKey); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if req.USDToMXNRate != nil {
		if err := h.settings.SaveUSDToMXNRate(*req.USDToMXNRate); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	h.GetSettings(c)
}

// RefreshExchangeRate fetches the live USD to MXN rate and persists it. A
// rate table without MXN is reported distinctly from a transport failure.
func (h *SettingsHandler) RefreshExchangeRate(c *gin.Context) {
	rate, err := h.currencyRepo.FetchUSDToMXNRate(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrRateNotFound) {
			c.JSON(http.StatusBadGateway, gin.H{"error": services.ErrRateNotFound.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if err := h.settings.SaveUSDToMXNRate(rate); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"usd_to_mxn_rate": rate})
}
