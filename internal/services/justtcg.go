package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/psyrax/pokeprices/internal/metrics"
)

const (
	justTCGBaseURL        = "https://api.justtcg.com"
	justTCGDefaultTimeout = 30 * time.Second
)

// JustTCGClient is a thin client for the JustTCG card catalog and pricing
// API. The API key travels as an x-api-key header on every call; a missing
// or invalid key surfaces only as a generic call failure.
type JustTCGClient struct {
	client  *http.Client
	baseURL string
}

// CardPayload is the remote card shape. Every field except the id can be
// absent, so everything else is a pointer and callers must handle nil at
// each step.
type CardPayload struct {
	ID          string             `json:"id"`
	Name        *string            `json:"name"`
	Game        *string            `json:"game"`
	Number      *string            `json:"number"`
	Rarity      *string            `json:"rarity"`
	TCGPlayerID *string            `json:"tcgplayerId"`
	Details     *string            `json:"details"`
	Set         *string            `json:"set"`
	SetName     *string            `json:"set_name"`
	Variants    []VariantPayload   `json:"variants"`
	Images      *ImagePayload      `json:"images"`
	CardMarket  *CardMarketPayload `json:"cardmarket"`
	TCGPlayer   *TCGPlayerPayload  `json:"tcgplayer"`
}

// VariantPayload is one condition/printing price observation. All four
// fields must be present for the variant to be accepted locally.
type VariantPayload struct {
	Condition   *string  `json:"condition"`
	Printing    *string  `json:"printing"`
	Price       *float64 `json:"price"`
	LastUpdated *int64   `json:"lastUpdated"`
}

type ImagePayload struct {
	Small *string `json:"small"`
	Large *string `json:"large"`
}

type CardMarketPayload struct {
	Prices *CardMarketPrices `json:"prices"`
}

type CardMarketPrices struct {
	AverageSellPrice *float64 `json:"averageSellPrice"`
	LowPrice         *float64 `json:"lowPrice"`
	TrendPrice       *float64 `json:"trendPrice"`
}

type TCGPlayerPayload struct {
	Prices *TCGPlayerPrices `json:"prices"`
}

type TCGPlayerPrices struct {
	Market             *MarketPriceContainer `json:"market"`
	AverageMarketPrice *float64              `json:"averageMarketPrice"`
}

type MarketPriceContainer struct {
	MarketPrice *float64 `json:"marketPrice"`
}

// SetPayload is the remote expansion shape from /v1/sets.
type SetPayload struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	GameID      string  `json:"game_id"`
	Game        string  `json:"game"`
	ReleaseDate *string `json:"release_date"`
	CardsCount  int     `json:"cards_count"`
}

type cardsResponse struct {
	Data []CardPayload `json:"data"`
}

type singleCardResponse struct {
	Data CardPayload `json:"data"`
}

type setsResponse struct {
	Data []SetPayload `json:"data"`
}

// NewJustTCGClient creates a client against the production JustTCG API.
func NewJustTCGClient() *JustTCGClient {
	return &JustTCGClient{
		client: &http.Client{
			Timeout: justTCGDefaultTimeout,
		},
		baseURL: justTCGBaseURL,
	}
}

// SearchCards searches the catalog by free-text query.
func (c *JustTCGClient) SearchCards(ctx context.Context, query string, page, pageSize int, apiKey string) ([]CardPayload, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))

	var resp cardsResponse
	if err := c.get(ctx, "/v1/cards?"+params.Encode(), apiKey, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SearchCardsByNameAndSet searches the catalog by card name within a set.
func (c *JustTCGClient) SearchCardsByNameAndSet(ctx context.Context, query, setID, apiKey string) ([]CardPayload, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("set", setID)

	var resp cardsResponse
	if err := c.get(ctx, "/v1/cards?"+params.Encode(), apiKey, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetCard fetches one card by its catalog id.
func (c *JustTCGClient) GetCard(ctx context.Context, cardID, apiKey string) (*CardPayload, error) {
	var resp singleCardResponse
	if err := c.get(ctx, "/v1/cards/"+url.PathEscape(cardID), apiKey, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetSets lists the expansions for a game.
func (c *JustTCGClient) GetSets(ctx context.Context, game, orderBy, order, apiKey string) ([]SetPayload, error) {
	params := url.Values{}
	params.Set("game", game)
	params.Set("orderBy", orderBy)
	params.Set("order", order)

	var resp setsResponse
	if err := c.get(ctx, "/v1/sets?"+params.Encode(), apiKey, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *JustTCGClient) get(ctx context.Context, path, apiKey string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.JustTCGRequestsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("JustTCG request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.JustTCGRequestsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("JustTCG API error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		metrics.JustTCGRequestsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to decode response: %w", err)
	}
	metrics.JustTCGRequestsTotal.WithLabelValues("success").Inc()
	return nil
}
