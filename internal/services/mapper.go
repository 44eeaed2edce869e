package services

import (
	"github.com/google/uuid"

	"github.com/psyrax/pokeprices/internal/models"
)

// MapCardPayload converts one remote card payload into a local card plus its
// variant rows. It is a pure transform: defensive about absent fields and
// never failing.
//
// A fresh local id is minted on every call - remote ids are kept only in
// APIID/APICardID. Callers applying fetched data onto an existing card must
// carry the existing id forward themselves and re-tag the produced variants
// (see RefreshWorker).
func MapCardPayload(p CardPayload) models.CardWithVariants {
	cardID := uuid.New().String()

	card := models.Card{
		ID:            cardID,
		ListType:      models.ListForSale,
		APIID:         strPtr(p.ID),
		APICardID:     strPtr(p.ID),
		Name:          strOrEmpty(p.Name),
		Game:          p.Game,
		ExpansionCode: strOrEmpty(p.Set),
		ExpansionName: p.SetName,
		CardNumber:    strOrEmpty(p.Number),
		Rarity:        p.Rarity,
		TCGPlayerID:   p.TCGPlayerID,
		Details:       p.Details,
		Price:         ResolvePrice(p),
		Currency:      "USD",
	}
	if p.Images != nil {
		card.ImageURL = p.Images.Small
	}

	return models.CardWithVariants{
		Card:     card,
		Variants: extractVariants(cardID, p.Variants),
	}
}

// ResolvePrice picks the single authoritative price for a payload. The
// attempts are strictly ordered, first match wins:
//
//  1. the first entry of the variant list, when it carries a price
//  2. cardmarket: averageSellPrice, then trendPrice, then lowPrice
//  3. tcgplayer: market.marketPrice, then averageMarketPrice
//  4. nil - the price is unknown
func ResolvePrice(p CardPayload) *float64 {
	if len(p.Variants) > 0 && p.Variants[0].Price != nil {
		return p.Variants[0].Price
	}

	if p.CardMarket != nil && p.CardMarket.Prices != nil {
		cm := p.CardMarket.Prices
		if cm.AverageSellPrice != nil {
			return cm.AverageSellPrice
		}
		if cm.TrendPrice != nil {
			return cm.TrendPrice
		}
		if cm.LowPrice != nil {
			return cm.LowPrice
		}
	}

	if p.TCGPlayer != nil && p.TCGPlayer.Prices != nil {
		tp := p.TCGPlayer.Prices
		if tp.Market != nil && tp.Market.MarketPrice != nil {
			return tp.Market.MarketPrice
		}
		if tp.AverageMarketPrice != nil {
			return tp.AverageMarketPrice
		}
	}

	return nil
}

// extractVariants keeps only payload variants carrying all of condition,
// printing, price and lastUpdated. Partial records are dropped silently.
func extractVariants(cardID string, payload []VariantPayload) []models.CardVariant {
	var variants []models.CardVariant
	for _, v := range payload {
		if v.Condition == nil || v.Printing == nil || v.Price == nil || v.LastUpdated == nil {
			continue
		}
		variants = append(variants, models.CardVariant{
			ID:          uuid.New().String(),
			CardID:      cardID,
			Condition:   *v.Condition,
			Printing:    *v.Printing,
			Price:       *v.Price,
			LastUpdated: *v.LastUpdated,
		})
	}
	return variants
}

func strPtr(s string) *string {
	return &s
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
