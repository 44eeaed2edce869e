package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/psyrax/pokeprices/internal/metrics"
	"github.com/psyrax/pokeprices/internal/models"
	"github.com/psyrax/pokeprices/internal/services"
)

const searchCacheSize = 128

type CardHandler struct {
	repo     *services.CardRepository
	settings *services.SettingsStore

	// Remote search results are previews; keep recent ones in memory so
	// retyping the same query does not burn API quota.
	searchCache *lru.Cache[string, []models.CardWithVariants]
}

func NewCardHandler(repo *services.CardRepository, settings *services.SettingsStore) *CardHandler {
	cache, _ := lru.New[string, []models.CardWithVariants](searchCacheSize)
	return &CardHandler{
		repo:        repo,
		settings:    settings,
		searchCache: cache,
	}
}

// ListCards returns one of the two inventory lists. ?list=wantToBuy selects
// the want-to-buy view; anything else means for-sale.
func (h *CardHandler) ListCards(c *gin.Context) {
	listType := models.ParseListType(c.Query("list"))

	var (
		cards []models.CardWithVariants
		err   error
	)
	if listType == models.ListWantToBuy {
		cards, err = h.repo.WantToBuyCards()
	} else {
		cards, err = h.repo.ForSaleCards()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	metrics.InventoryCards.WithLabelValues(string(listType)).Set(float64(len(cards)))
	c.JSON(http.StatusOK, cards)
}

func (h *CardHandler) GetCard(c *gin.Context) {
	card, err := h.repo.CardByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	c.JSON(http.StatusOK, card)
}

// GetCardByTag resolves an NFC tag id. An unknown tag is a plain 404; this
// path must never fail harder than that.
func (h *CardHandler) GetCardByTag(c *gin.Context) {
	card, err := h.repo.CardByTagID(c.Param("tagId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	c.JSON(http.StatusOK, card)
}

// ResolveDeepLink handles the <scheme>://card?id=<tagId> surface.
func (h *CardHandler) ResolveDeepLink(c *gin.Context) {
	tagID := c.Query("id")
	if tagID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'id' is required"})
		return
	}
	card, err := h.repo.CardByTagID(tagID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	c.JSON(http.StatusOK, card)
}

// CreateCardRequest carries a new card. Unset fields get the "new card"
// defaults the app seeds a blank entry with.
type CreateCardRequest struct {
	ListType      string               `json:"list_type"`
	Name          string               `json:"name"`
	ExpansionCode string               `json:"expansion_code"`
	CardNumber    string               `json:"card_number"`
	Price         *float64             `json:"price"`
	Currency      string               `json:"currency"`
	TagID         *string              `json:"tag_id"`
	Card          *models.Card         `json:"card"`
	Variants      []models.CardVariant `json:"variants"`
}

func (h *CardHandler) CreateCard(c *gin.Context) {
	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var card models.Card
	if req.Card != nil {
		// Applying fetched remote data: keep the mapped fields, mint a
		// local id if the client did not carry one.
		card = *req.Card
		if card.ID == "" {
			card.ID = uuid.New().String()
		}
	} else {
		card = models.Card{
			ID:            uuid.New().String(),
			Name:          req.Name,
			ExpansionCode: req.ExpansionCode,
			CardNumber:    req.CardNumber,
			Price:         req.Price,
			Currency:      req.Currency,
			TagID:         req.TagID,
		}
		if card.Name == "" {
			card.Name = "New card"
		}
		if card.ExpansionCode == "" {
			card.ExpansionCode = "SWSH"
		}
		if card.CardNumber == "" {
			card.CardNumber = "1/202"
		}
		if card.Price == nil {
			zero := 0.0
			card.Price = &zero
		}
		if card.Currency == "" {
			card.Currency = "USD"
		}
	}
	card.ListType = models.ParseListType(req.ListType)

	variants := req.Variants
	for i := range variants {
		if variants[i].ID == "" {
			variants[i].ID = uuid.New().String()
		}
		variants[i].CardID = card.ID
	}

	if err := h.repo.Insert(card, variants); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, models.CardWithVariants{Card: card, Variants: variants})
}

// UpdateCardRequest replaces a card and its full variant set. An empty
// variant list leaves the card with zero variants.
type UpdateCardRequest struct {
	Card     models.Card          `json:"card" binding:"required"`
	Variants []models.CardVariant `json:"variants"`
}

func (h *CardHandler) UpdateCard(c *gin.Context) {
	id := c.Param("id")

	existing, err := h.repo.CardByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}

	var req UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The identifier is immutable; the path wins over the body.
	req.Card.ID = id
	for i := range req.Variants {
		if req.Variants[i].ID == "" {
			req.Variants[i].ID = uuid.New().String()
		}
		req.Variants[i].CardID = id
	}

	if err := h.repo.Update(req.Card, req.Variants); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.CardWithVariants{Card: req.Card, Variants: req.Variants})
}

func (h *CardHandler) DeleteCard(c *gin.Context) {
	card, err := h.repo.CardByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	if err := h.repo.Delete(card.Card); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": card.Card.ID})
}

// SearchCards previews remote catalog matches. Nothing is persisted; results
// for a repeated query come from the in-memory cache.
func (h *CardHandler) SearchCards(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}
	setID := c.Query("set")
	pageSize := 20
	if raw := c.Query("pageSize"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			pageSize = n
		}
	}

	apiKey, err := h.settings.APIKey()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if apiKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "JustTCG API key is not configured"})
		return
	}

	cacheKey := query + "|" + setID + "|" + strconv.Itoa(pageSize)
	if cached, ok := h.searchCache.Get(cacheKey); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	var results []models.CardWithVariants
	if setID != "" {
		results, err = h.repo.SearchCardsByNameAndSet(c.Request.Context(), query, setID, apiKey)
	} else {
		results, err = h.repo.SearchCards(c.Request.Context(), query, apiKey, pageSize)
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	h.searchCache.Add(cacheKey, results)
	c.JSON(http.StatusOK, results)
}

// FetchRemoteCard previews a single catalog card. The repository collapses
// remote failures into "no result", so the only error shape here is 404.
func (h *CardHandler) FetchRemoteCard(c *gin.Context) {
	apiKey, err := h.settings.APIKey()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if apiKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "JustTCG API key is not configured"})
		return
	}

	card := h.repo.FetchCard(c.Request.Context(), c.Param("apiId"), apiKey)
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	c.JSON(http.StatusOK, card)
}
