package api

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/psyrax/pokeprices/internal/api/handlers"
	"github.com/psyrax/pokeprices/internal/metrics"
	"github.com/psyrax/pokeprices/internal/services"
)

// SetupRouter wires the REST surface. baseCtx bounds the lifetime of the
// background refresh runs started from handlers.
func SetupRouter(baseCtx context.Context, cardRepo *services.CardRepository, currencyRepo *services.CurrencyRepository, settings *services.SettingsStore, refreshWorker *services.RefreshWorker) *gin.Engine {
	router := gin.Default()

	// CORS configuration - allow origins from environment or use defaults
	config := cors.DefaultConfig()
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = false
	router.Use(cors.New(config))
	router.Use(metricsMiddleware())

	cardHandler := handlers.NewCardHandler(cardRepo, settings)
	setHandler := handlers.NewSetHandler(cardRepo, settings)
	settingsHandler := handlers.NewSettingsHandler(settings, currencyRepo)
	refreshHandler := handlers.NewRefreshHandler(baseCtx, refreshWorker, settings)

	api := router.Group("/api")
	{
		cards := api.Group("/cards")
		{
			cards.GET("", cardHandler.ListCards)
			cards.POST("", cardHandler.CreateCard)
			cards.GET("/search", cardHandler.SearchCards)
			cards.GET("/remote/:apiId", cardHandler.FetchRemoteCard)
			cards.GET("/by-tag/:tagId", cardHandler.GetCardByTag)
			cards.GET("/:id", cardHandler.GetCard)
			cards.PUT("/:id", cardHandler.UpdateCard)
			cards.DELETE("/:id", cardHandler.DeleteCard)
		}

		sets := api.Group("/sets")
		{
			sets.GET("", setHandler.ListSets)
			sets.POST("/refresh", setHandler.RefreshSets)
		}

		settingsGroup := api.Group("/settings")
		{
			settingsGroup.GET("", settingsHandler.GetSettings)
			settingsGroup.PUT("", settingsHandler.SaveSettings)
			settingsGroup.POST("/rate/refresh", settingsHandler.RefreshExchangeRate)
		}

		api.POST("/refresh", refreshHandler.StartRefresh)
		api.GET("/refresh/status", refreshHandler.GetRefreshStatus)
	}

	// NFC deep links arrive as <scheme>://card?id=<tagId>; the host serves
	// the same lookup at /card.
	router.GET("/card", cardHandler.ResolveDeepLink)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}
