package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/psyrax/pokeprices/internal/models"
)

// CardRepository is the single entry point for all card state. It owns the
// local store reads/writes, the JustTCG calls and the mapping policy.
//
// Multi-statement writes (Insert, Update) are not wrapped in a transaction.
// Concurrent callers touching the same card id can interleave, and a reader
// racing Update can observe the card with zero variants between the delete
// and the insert. This mirrors the single-writer assumption the app was
// built on; it is a known weakness, not an invariant.
type CardRepository struct {
	db  *gorm.DB
	api *JustTCGClient

	subMu   sync.Mutex
	subs    map[int]*cardSubscription
	nextSub int
}

type cardSubscription struct {
	listType models.ListType
	ch       chan []models.CardWithVariants
}

func NewCardRepository(db *gorm.DB, api *JustTCGClient) *CardRepository {
	return &CardRepository{
		db:   db,
		api:  api,
		subs: make(map[int]*cardSubscription),
	}
}

// === Local store queries ===

// ForSaleCards lists the for-sale cards: tagged cards first in numeric tag
// order, then untagged by name. This matches the physical NFC shelf order.
func (r *CardRepository) ForSaleCards() ([]models.CardWithVariants, error) {
	var cards []models.Card
	err := r.db.Where("list_type = ?", models.ListForSale).
		Order("CASE WHEN tag_id IS NULL THEN 1 ELSE 0 END, CAST(tag_id AS INTEGER), name ASC").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return r.withVariants(cards)
}

// WantToBuyCards lists the want-to-buy cards by name.
func (r *CardRepository) WantToBuyCards() ([]models.CardWithVariants, error) {
	var cards []models.Card
	err := r.db.Where("list_type = ?", models.ListWantToBuy).
		Order("name ASC").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return r.withVariants(cards)
}

// CardByID returns one card with its variants, or nil when absent.
func (r *CardRepository) CardByID(id string) (*models.CardWithVariants, error) {
	return r.oneCard("id = ?", id)
}

// CardByTagID resolves an NFC tag id to its card. A missing tag is not an
// error: the result is simply nil, and deep-link callers render "not found".
func (r *CardRepository) CardByTagID(tagID string) (*models.CardWithVariants, error) {
	return r.oneCard("tag_id = ?", tagID)
}

// AllCards returns every card unsorted. Used by the batch refresh routine.
func (r *CardRepository) AllCards() ([]models.Card, error) {
	var cards []models.Card
	if err := r.db.Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// AllSets returns the stored catalog, newest release first.
func (r *CardRepository) AllSets() ([]models.GameSet, error) {
	var sets []models.GameSet
	if err := r.db.Order("release_date DESC").Find(&sets).Error; err != nil {
		return nil, err
	}
	return sets, nil
}

// === Local store writes ===

// Insert writes the card, then its variants when there are any.
func (r *CardRepository) Insert(card models.Card, variants []models.CardVariant) error {
	if err := r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&card).Error; err != nil {
		return err
	}
	if len(variants) > 0 {
		if err := r.db.Create(&variants).Error; err != nil {
			return err
		}
	}
	r.notifySubscribers()
	return nil
}

// Update replaces the card row, deletes all of its variants, then inserts
// the new set when non-empty. An empty variant list leaves the card with no
// variants at all.
func (r *CardRepository) Update(card models.Card, variants []models.CardVariant) error {
	if err := r.db.Save(&card).Error; err != nil {
		return err
	}
	if err := r.db.Where("card_id = ?", card.ID).Delete(&models.CardVariant{}).Error; err != nil {
		return err
	}
	if len(variants) > 0 {
		if err := r.db.Create(&variants).Error; err != nil {
			return err
		}
	}
	r.notifySubscribers()
	return nil
}

// Delete removes the card; the store cascades to its variants.
func (r *CardRepository) Delete(card models.Card) error {
	if err := r.db.Delete(&card).Error; err != nil {
		return err
	}
	r.notifySubscribers()
	return nil
}

// SaveSets bulk upserts the catalog keyed by remote id. Stale sets are not
// pruned.
func (r *CardRepository) SaveSets(payloads []SetPayload) error {
	if len(payloads) == 0 {
		return nil
	}
	sets := make([]models.GameSet, 0, len(payloads))
	for _, p := range payloads {
		sets = append(sets, models.GameSet{
			ID:          p.ID,
			Name:        p.Name,
			GameID:      p.GameID,
			Game:        p.Game,
			ReleaseDate: p.ReleaseDate,
			CardsCount:  p.CardsCount,
		})
	}
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&sets).Error
}

// === Remote operations ===

// SearchCards searches the remote catalog and maps every hit. Results are a
// preview; nothing is persisted.
func (r *CardRepository) SearchCards(ctx context.Context, query, apiKey string, pageSize int) ([]models.CardWithVariants, error) {
	payloads, err := r.api.SearchCards(ctx, query, 1, pageSize, apiKey)
	if err != nil {
		return nil, err
	}
	return mapAll(payloads), nil
}

// SearchCardsByNameAndSet searches within one set and maps every hit.
func (r *CardRepository) SearchCardsByNameAndSet(ctx context.Context, name, setID, apiKey string) ([]models.CardWithVariants, error) {
	payloads, err := r.api.SearchCardsByNameAndSet(ctx, name, setID, apiKey)
	if err != nil {
		return nil, err
	}
	return mapAll(payloads), nil
}

// FetchCard fetches one card by catalog id. Any remote failure is swallowed
// and reported as no result; callers cannot tell "not found" from a network
// error here, by contract.
func (r *CardRepository) FetchCard(ctx context.Context, apiID, apiKey string) *models.CardWithVariants {
	payload, err := r.api.GetCard(ctx, apiID, apiKey)
	if err != nil {
		log.Printf("FetchCard %s: %v", apiID, err)
		return nil
	}
	mapped := MapCardPayload(*payload)
	return &mapped
}

// FetchSets returns the raw remote expansion list for a game.
func (r *CardRepository) FetchSets(ctx context.Context, apiKey, game string) ([]SetPayload, error) {
	return r.api.GetSets(ctx, game, "release_date", "desc", apiKey)
}

// === Subscriptions ===

// Subscribe registers a listener for one list. The channel re-delivers the
// list's full current result set after every store mutation, coalescing when
// the consumer lags: a slow reader sees the latest snapshot, not a backlog.
// The unsubscribe func releases the registration and closes the channel.
func (r *CardRepository) Subscribe(listType models.ListType) (<-chan []models.CardWithVariants, func()) {
	sub := &cardSubscription{
		listType: listType,
		ch:       make(chan []models.CardWithVariants, 1),
	}

	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = sub
	r.subMu.Unlock()

	// Seed with the current result set.
	r.deliver(sub)

	unsubscribe := func() {
		r.subMu.Lock()
		if _, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub.ch)
		}
		r.subMu.Unlock()
	}
	return sub.ch, unsubscribe
}

func (r *CardRepository) notifySubscribers() {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for _, sub := range r.subs {
		r.deliver(sub)
	}
}

func (r *CardRepository) deliver(sub *cardSubscription) {
	var (
		result []models.CardWithVariants
		err    error
	)
	if sub.listType == models.ListWantToBuy {
		result, err = r.WantToBuyCards()
	} else {
		result, err = r.ForSaleCards()
	}
	if err != nil {
		log.Printf("subscription query failed: %v", err)
		return
	}

	select {
	case sub.ch <- result:
	default:
		// Drop the stale snapshot, then push the fresh one.
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- result
	}
}

// === Helpers ===

func (r *CardRepository) oneCard(query string, arg string) (*models.CardWithVariants, error) {
	var card models.Card
	err := r.db.Where(query, arg).First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	variants, err := r.variantsFor(card.ID)
	if err != nil {
		return nil, err
	}
	return &models.CardWithVariants{Card: card, Variants: variants}, nil
}

func (r *CardRepository) withVariants(cards []models.Card) ([]models.CardWithVariants, error) {
	result := make([]models.CardWithVariants, 0, len(cards))
	for _, card := range cards {
		variants, err := r.variantsFor(card.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, models.CardWithVariants{Card: card, Variants: variants})
	}
	return result, nil
}

func (r *CardRepository) variantsFor(cardID string) ([]models.CardVariant, error) {
	var variants []models.CardVariant
	if err := r.db.Where("card_id = ?", cardID).Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

func mapAll(payloads []CardPayload) []models.CardWithVariants {
	result := make([]models.CardWithVariants, 0, len(payloads))
	for _, p := range payloads {
		result = append(result, MapCardPayload(p))
	}
	return result
}
