package services

import (
	"testing"
)

func TestResolvePriceVariantWins(t *testing.T) {
	// The first variant's price beats both marketplace blocks
	payload := CardPayload{
		ID: "card-1",
		Variants: []VariantPayload{
			{Condition: ptr("NM"), Printing: ptr("Normal"), Price: ptr(12.34), LastUpdated: ptr(int64(1700000000))},
			{Condition: ptr("LP"), Printing: ptr("Normal"), Price: ptr(9.99), LastUpdated: ptr(int64(1700000000))},
		},
		CardMarket: &CardMarketPayload{Prices: &CardMarketPrices{AverageSellPrice: ptr(50.0)}},
		TCGPlayer:  &TCGPlayerPayload{Prices: &TCGPlayerPrices{AverageMarketPrice: ptr(60.0)}},
	}

	price := ResolvePrice(payload)
	if price == nil || *price != 12.34 {
		t.Errorf("Expected first variant price 12.34, got %v", price)
	}
}

func TestResolvePriceCardMarketFallback(t *testing.T) {
	tests := []struct {
		name     string
		prices   CardMarketPrices
		expected float64
	}{
		{"averageSellPrice first", CardMarketPrices{AverageSellPrice: ptr(1.0), TrendPrice: ptr(2.0), LowPrice: ptr(3.0)}, 1.0},
		{"trendPrice second", CardMarketPrices{TrendPrice: ptr(2.0), LowPrice: ptr(3.0)}, 2.0},
		{"lowPrice last", CardMarketPrices{LowPrice: ptr(3.0)}, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := CardPayload{
				ID:         "card-1",
				CardMarket: &CardMarketPayload{Prices: &tt.prices},
			}
			price := ResolvePrice(payload)
			if price == nil || *price != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, price)
			}
		})
	}
}

func TestResolvePriceTCGPlayerFallback(t *testing.T) {
	// market.marketPrice wins over averageMarketPrice
	payload := CardPayload{
		ID: "card-1",
		TCGPlayer: &TCGPlayerPayload{Prices: &TCGPlayerPrices{
			Market:             &MarketPriceContainer{MarketPrice: ptr(4.5)},
			AverageMarketPrice: ptr(5.5),
		}},
	}
	price := ResolvePrice(payload)
	if price == nil || *price != 4.5 {
		t.Errorf("Expected market price 4.5, got %v", price)
	}

	// averageMarketPrice when market block is empty
	payload.TCGPlayer.Prices.Market = nil
	price = ResolvePrice(payload)
	if price == nil || *price != 5.5 {
		t.Errorf("Expected average market price 5.5, got %v", price)
	}
}

func TestResolvePriceUnknown(t *testing.T) {
	// No variants, no marketplace data: the price stays unknown, not 0
	payload := CardPayload{ID: "card-1"}
	if price := ResolvePrice(payload); price != nil {
		t.Errorf("Expected nil price, got %v", *price)
	}

	// A variant without a price does not count
	payload.Variants = []VariantPayload{{Condition: ptr("NM"), Printing: ptr("Normal")}}
	if price := ResolvePrice(payload); price != nil {
		t.Errorf("Expected nil price for priceless variant, got %v", *price)
	}
}

func TestMapCardPayloadVariantFilter(t *testing.T) {
	// 3 payload variants, 1 missing printing: exactly 2 survive
	payload := CardPayload{
		ID: "card-1",
		Variants: []VariantPayload{
			{Condition: ptr("NM"), Printing: ptr("Normal"), Price: ptr(10.0), LastUpdated: ptr(int64(1700000000))},
			{Condition: ptr("LP"), Price: ptr(8.0), LastUpdated: ptr(int64(1700000000))},
			{Condition: ptr("MP"), Printing: ptr("Foil"), Price: ptr(6.0), LastUpdated: ptr(int64(1700000000))},
		},
	}

	mapped := MapCardPayload(payload)
	if len(mapped.Variants) != 2 {
		t.Fatalf("Expected 2 variants, got %d", len(mapped.Variants))
	}
	for _, v := range mapped.Variants {
		if v.CardID != mapped.Card.ID {
			t.Errorf("Variant card id %s does not match card %s", v.CardID, mapped.Card.ID)
		}
	}
}

func TestMapCardPayloadMintsFreshID(t *testing.T) {
	payload := CardPayload{
		ID:      "remote-123",
		Name:    ptr("Pikachu"),
		Set:     ptr("base1"),
		SetName: ptr("Base Set"),
		Number:  ptr("58/102"),
		Images:  &ImagePayload{Small: ptr("https://img.example/p-small.png"), Large: ptr("https://img.example/p-large.png")},
	}

	first := MapCardPayload(payload)
	second := MapCardPayload(payload)

	if first.Card.ID == "" || first.Card.ID == payload.ID {
		t.Errorf("Mapped card must mint a fresh local id, got %q", first.Card.ID)
	}
	if first.Card.ID == second.Card.ID {
		t.Error("Two mappings of the same payload must not share an id")
	}
	if first.Card.APIID == nil || *first.Card.APIID != "remote-123" {
		t.Errorf("Expected APIID remote-123, got %v", first.Card.APIID)
	}
	if first.Card.APICardID == nil || *first.Card.APICardID != "remote-123" {
		t.Errorf("Expected APICardID remote-123, got %v", first.Card.APICardID)
	}
	if first.Card.Name != "Pikachu" {
		t.Errorf("Expected name Pikachu, got %q", first.Card.Name)
	}
	if first.Card.ExpansionCode != "base1" {
		t.Errorf("Expected expansion code base1, got %q", first.Card.ExpansionCode)
	}
	if first.Card.ImageURL == nil || *first.Card.ImageURL != "https://img.example/p-small.png" {
		t.Errorf("Expected small image url, got %v", first.Card.ImageURL)
	}
	if first.Card.Currency != "USD" {
		t.Errorf("Expected currency USD, got %q", first.Card.Currency)
	}
}

func TestMapCardPayloadDefensiveEmpty(t *testing.T) {
	// A payload carrying only an id maps without blowing up
	mapped := MapCardPayload(CardPayload{ID: "bare"})
	if mapped.Card.Name != "" || mapped.Card.ExpansionCode != "" {
		t.Errorf("Expected empty name/expansion, got %q/%q", mapped.Card.Name, mapped.Card.ExpansionCode)
	}
	if mapped.Card.Price != nil {
		t.Errorf("Expected unknown price, got %v", *mapped.Card.Price)
	}
	if len(mapped.Variants) != 0 {
		t.Errorf("Expected no variants, got %d", len(mapped.Variants))
	}
}
