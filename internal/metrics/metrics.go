// Package metrics provides Prometheus metrics for the PokePrices server.
// Scrape these at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeprices_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pokeprices_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Batch refresh metrics
	RefreshRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokeprices_refresh_running",
			Help: "1 while a batch card refresh is in progress",
		},
	)

	RefreshCardsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeprices_refresh_cards_total",
			Help: "Total number of cards successfully refreshed",
		},
	)

	RefreshErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeprices_refresh_errors_total",
			Help: "Total number of per-card refresh failures",
		},
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pokeprices_refresh_duration_seconds",
			Help:    "Time taken for a full batch refresh run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// JustTCG API metrics
	JustTCGRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeprices_justtcg_requests_total",
			Help: "Total JustTCG API requests by outcome",
		},
		[]string{"result"}, // "success" or "error"
	)

	// Inventory metrics
	InventoryCards = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pokeprices_inventory_cards",
			Help: "Number of cards stored by list type",
		},
		[]string{"list"},
	)

	CatalogSets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokeprices_catalog_sets",
			Help: "Number of expansions in the local catalog",
		},
	)
)
