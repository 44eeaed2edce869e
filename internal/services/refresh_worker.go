package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/psyrax/pokeprices/internal/metrics"
	"github.com/psyrax/pokeprices/internal/models"
)

// defaultRefreshInterval is the minimum gap between remote calls during a
// batch refresh. The remote service publishes no rate-limit contract, so the
// loop stays strictly serial with this courtesy pacing.
const defaultRefreshInterval = 500 * time.Millisecond

// RefreshWorker re-fetches every stored card from the catalog and applies
// the result locally. Idle -> Running -> Idle; one run at a time.
//
// Each iteration either fully updates a card (row plus replaced variants) or
// leaves it untouched and counts an error. A failure never aborts the run;
// cancellation stops between iterations, so a canceled run leaves no card
// half-written. Progress is not persisted: a run killed mid-loop keeps the
// updates already applied but must be restarted from the top.
type RefreshWorker struct {
	repo    *CardRepository
	limiter *rate.Limiter

	mu           sync.RWMutex
	running      bool
	progress     string
	successCount int
	errorCount   int
	lastRun      time.Time
}

// RefreshStatus is the worker state exposed over the API.
type RefreshStatus struct {
	Running      bool      `json:"running"`
	Progress     string    `json:"progress,omitempty"`
	SuccessCount int       `json:"success_count"`
	ErrorCount   int       `json:"error_count"`
	LastRun      time.Time `json:"last_run,omitempty"`
}

func NewRefreshWorker(repo *CardRepository) *RefreshWorker {
	return NewRefreshWorkerWithInterval(repo, defaultRefreshInterval)
}

// NewRefreshWorkerWithInterval overrides the pacing interval.
func NewRefreshWorkerWithInterval(repo *CardRepository, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		repo:    repo,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Start launches a run in the background. It returns an error when a run is
// already in progress.
func (w *RefreshWorker) Start(ctx context.Context, apiKey string) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("refresh already in progress")
	}
	w.running = true
	w.successCount = 0
	w.errorCount = 0
	w.progress = "Starting update..."
	w.mu.Unlock()

	metrics.RefreshRunning.Set(1)

	go func() {
		defer func() {
			w.mu.Lock()
			w.running = false
			w.lastRun = time.Now()
			w.mu.Unlock()
			metrics.RefreshRunning.Set(0)
		}()
		w.run(ctx, apiKey)
	}()
	return nil
}

// Run executes a full refresh synchronously. Exposed for callers that want
// to wait for the summary (and for tests); Start wraps it for the API.
func (w *RefreshWorker) Run(ctx context.Context, apiKey string) (success, errored int, err error) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return 0, 0, fmt.Errorf("refresh already in progress")
	}
	w.running = true
	w.successCount = 0
	w.errorCount = 0
	w.progress = "Starting update..."
	w.mu.Unlock()

	metrics.RefreshRunning.Set(1)
	defer func() {
		w.mu.Lock()
		w.running = false
		w.lastRun = time.Now()
		success = w.successCount
		errored = w.errorCount
		w.mu.Unlock()
		metrics.RefreshRunning.Set(0)
	}()

	return success, errored, w.run(ctx, apiKey)
}

func (w *RefreshWorker) run(ctx context.Context, apiKey string) error {
	start := time.Now()

	cards, err := w.repo.AllCards()
	if err != nil {
		w.setProgress(fmt.Sprintf("Error: %v", err))
		return err
	}

	log.Printf("Refresh worker: updating %d cards", len(cards))

	for i, card := range cards {
		w.setProgress(fmt.Sprintf("Updating %d of %d...", i+1, len(cards)))

		// Pacing between remote calls; also the cancellation point.
		if err := w.limiter.Wait(ctx); err != nil {
			w.setProgress(fmt.Sprintf("Canceled after %d of %d", i, len(cards)))
			log.Printf("Refresh worker: canceled: %v", err)
			return err
		}

		if w.refreshOne(ctx, card, apiKey) {
			w.incSuccess()
		} else {
			w.incError()
		}
	}

	w.mu.RLock()
	summary := fmt.Sprintf("completed: %d succeeded, %d errored", w.successCount, w.errorCount)
	w.mu.RUnlock()
	w.setProgress(summary)
	log.Printf("Refresh worker: %s", summary)

	metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	return nil
}

// refreshOne fetches the remote record for one card and applies it. Returns
// false on any failure or empty result, leaving the local row untouched.
func (w *RefreshWorker) refreshOne(ctx context.Context, card models.Card, apiKey string) bool {
	var fetched *models.CardWithVariants

	if card.APICardID != nil && *card.APICardID != "" {
		fetched = w.repo.FetchCard(ctx, *card.APICardID, apiKey)
	} else {
		results, err := w.repo.SearchCardsByNameAndSet(ctx, card.Name, card.ExpansionCode, apiKey)
		if err != nil {
			log.Printf("Refresh worker: search for %q failed: %v", card.Name, err)
			return false
		}
		if len(results) > 0 {
			fetched = &results[0]
		}
	}

	if fetched == nil {
		return false
	}

	// Merge fetched fields into the existing card: local identity (id, list,
	// tag) is preserved, everything sourced from the catalog is replaced.
	updated := card
	updated.APIID = fetched.Card.APIID
	updated.APICardID = fetched.Card.APICardID
	updated.Name = fetched.Card.Name
	updated.Game = fetched.Card.Game
	updated.ExpansionName = fetched.Card.ExpansionName
	updated.CardNumber = fetched.Card.CardNumber
	updated.Rarity = fetched.Card.Rarity
	updated.TCGPlayerID = fetched.Card.TCGPlayerID
	updated.Details = fetched.Card.Details
	updated.ImageURL = fetched.Card.ImageURL
	updated.Price = fetched.Card.Price
	updated.Currency = fetched.Card.Currency

	// The mapper minted a fresh id; re-tag the variants with ours.
	variants := make([]models.CardVariant, len(fetched.Variants))
	copy(variants, fetched.Variants)
	for i := range variants {
		variants[i].CardID = card.ID
	}

	if err := w.repo.Update(updated, variants); err != nil {
		log.Printf("Refresh worker: update for %q failed: %v", card.Name, err)
		return false
	}

	metrics.RefreshCardsTotal.Inc()
	return true
}

// GetStatus returns the current worker state.
func (w *RefreshWorker) GetStatus() RefreshStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return RefreshStatus{
		Running:      w.running,
		Progress:     w.progress,
		SuccessCount: w.successCount,
		ErrorCount:   w.errorCount,
		LastRun:      w.lastRun,
	}
}

func (w *RefreshWorker) setProgress(msg string) {
	w.mu.Lock()
	w.progress = msg
	w.mu.Unlock()
}

func (w *RefreshWorker) incSuccess() {
	w.mu.Lock()
	w.successCount++
	w.mu.Unlock()
}

func (w *RefreshWorker) incError() {
	w.mu.Lock()
	w.errorCount++
	w.mu.Unlock()
	metrics.RefreshErrorsTotal.Inc()
}
