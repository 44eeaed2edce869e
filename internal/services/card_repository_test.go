package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/psyrax/pokeprices/internal/models"
)

func testCard(listType models.ListType) models.Card {
	return models.Card{
		ID:            uuid.New().String(),
		ListType:      listType,
		Name:          "Charizard",
		ExpansionCode: "base1",
		CardNumber:    "4/102",
		Currency:      "USD",
	}
}

func testVariants(cardID string, n int) []models.CardVariant {
	variants := make([]models.CardVariant, 0, n)
	conditions := []string{"NM", "LP", "MP", "HP", "DMG"}
	for i := 0; i < n; i++ {
		variants = append(variants, models.CardVariant{
			ID:          uuid.New().String(),
			CardID:      cardID,
			Condition:   conditions[i%len(conditions)],
			Printing:    "Normal",
			Price:       float64(i + 1),
			LastUpdated: 1700000000,
		})
	}
	return variants
}

func TestInsertAndListByType(t *testing.T) {
	repo := NewCardRepository(newTestDB(t), nil)

	forSale := testCard(models.ListForSale)
	wanted := testCard(models.ListWantToBuy)
	wanted.Name = "Blastoise"

	if err := repo.Insert(forSale, testVariants(forSale.ID, 2)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := repo.Insert(wanted, nil); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	sale, err := repo.ForSaleCards()
	if err != nil {
		t.Fatalf("ForSaleCards failed: %v", err)
	}
	if len(sale) != 1 || sale[0].Card.ID != forSale.ID {
		t.Fatalf("Expected 1 for-sale card %s, got %+v", forSale.ID, sale)
	}
	if len(sale[0].Variants) != 2 {
		t.Errorf("Expected 2 variants, got %d", len(sale[0].Variants))
	}

	buy, err := repo.WantToBuyCards()
	if err != nil {
		t.Fatalf("WantToBuyCards failed: %v", err)
	}
	if len(buy) != 1 || buy[0].Card.ID != wanted.ID {
		t.Fatalf("Expected 1 want-to-buy card %s, got %+v", wanted.ID, buy)
	}
}

func TestForSaleOrderingTagsFirst(t *testing.T) {
	repo := NewCardRepository(newTestDB(t), nil)

	untagged := testCard(models.ListForSale)
	untagged.Name = "Abra"

	tag2 := testCard(models.ListForSale)
	tag2.Name = "Zubat"
	tag2.TagID = ptr("2")

	tag10 := testCard(models.ListForSale)
	tag10.Name = "Mew"
	tag10.TagID = ptr("10")

	for _, card := range []models.Card{untagged, tag10, tag2} {
		if err := repo.Insert(card, nil); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	cards, err := repo.ForSaleCards()
	if err != nil {
		t.Fatalf("ForSaleCards failed: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("Expected 3 cards, got %d", len(cards))
	}
	// Numeric tag order first (2 before 10), untagged last
	if cards[0].Card.ID != tag2.ID || cards[1].Card.ID != tag10.ID || cards[2].Card.ID != untagged.ID {
		t.Errorf("Unexpected order: %s, %s, %s", cards[0].Card.Name, cards[1].Card.Name, cards[2].Card.Name)
	}
}

func TestUpdateWithEmptyVariantsClears(t *testing.T) {
	repo := NewCardRepository(newTestDB(t), nil)

	card := testCard(models.ListForSale)
	if err := repo.Insert(card, testVariants(card.ID, 3)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	card.Name = "Charizard (shadowless)"
	if err := repo.Update(card, nil); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.CardByID(card.ID)
	if err != nil {
		t.Fatalf("CardByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("Card vanished after update")
	}
	if got.Card.Name != "Charizard (shadowless)" {
		t.Errorf("Expected updated name, got %q", got.Card.Name)
	}
	if len(got.Variants) != 0 {
		t.Errorf("Expected 0 variants after empty-variant update, got %d", len(got.Variants))
	}
}

func TestUpdateReplacesVariantsWholesale(t *testing.T) {
	repo := NewCardRepository(newTestDB(t), nil)

	card := testCard(models.ListForSale)
	if err := repo.Insert(card, testVariants(card.ID, 3)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	replacement := testVariants(card.ID, 1)
	replacement[0].Price = 99.0
	if err := repo.Update(card, replacement); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.CardByID(card.ID)
	if err != nil {
		t.Fatalf("CardByID failed: %v", err)
	}
	if len(got.Variants) != 1 {
		t.Fatalf("Expected 1 variant after replacement, got %d", len(got.Variants))
	}
	if got.Variants[0].Price != 99.0 {
		t.Errorf("Expected replacement price 99.0, got %v", got.Variants[0].Price)
	}
}

func TestDeleteCascadesVariants(t *testing.T) {
	repo := NewCardRepository(newTestDB(t), nil)

	card := testCard(models.ListForSale)
	if err := repo.Insert(card, testVariants(card.ID, 2)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := repo.Delete(card); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := repo.CardByID(card.ID)
	if err != nil {
		t.Fatalf("CardByID failed: %v", err)
	}
	if got != nil {
		t.Fatal("Card still present after delete")
	}

	variants, err := repo.variantsFor(card.ID)
	if err != nil {
		t.Fatalf("variant lookup failed: %v", err)
	}
	if len(variants) != 0 {
		t.Errorf("Expected cascade to remove variants, found %d", len(variants))
	}
}

func TestCardByTagID(t *testing.T) {
	repo := NewCardRepository(newTestDB(t), nil)

	card := testCard(models.ListForSale)
	card.TagID = ptr("42")
	if err := repo.Insert(card, nil); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := repo.CardByTagID("42")
	if err != nil {
		t.Fatalf("CardByTagID failed: %v", err)
	}
	if got == nil || got.Card.ID != card.ID {
		t.Fatalf("Expected card %s for tag 42, got %+v", card.ID, got)
	}

	// Unknown tag: nil result, no error
	missing, err := repo.CardByTagID("no-such-tag")
	if err != nil {
		t.Fatalf("CardByTagID for unknown tag must not error, got %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for unknown tag, got %+v", missing)
	}
}

func TestSaveSetsUpsertsByID(t *testing.T) {
	repo := NewCardRepository(newTestDB(t), nil)

	initial := []SetPayload{
		{ID: "base1", Name: "Base Set", GameID: "pokemon", Game: "Pokemon", CardsCount: 102},
		{ID: "base2", Name: "Jungle", GameID: "pokemon", Game: "Pokemon", CardsCount: 64},
	}
	if err := repo.SaveSets(initial); err != nil {
		t.Fatalf("SaveSets failed: %v", err)
	}

	// Refresh with a changed row and one new row; base2 is absent but stays
	refresh := []SetPayload{
		{ID: "base1", Name: "Base Set (revised)", GameID: "pokemon", Game: "Pokemon", CardsCount: 102},
		{ID: "base3", Name: "Fossil", GameID: "pokemon", Game: "Pokemon", CardsCount: 62},
	}
	if err := repo.SaveSets(refresh); err != nil {
		t.Fatalf("SaveSets failed: %v", err)
	}

	sets, err := repo.AllSets()
	if err != nil {
		t.Fatalf("AllSets failed: %v", err)
	}
	if len(sets) != 3 {
		t.Fatalf("Expected 3 sets (refresh never prunes), got %d", len(sets))
	}
	byID := make(map[string]models.GameSet)
	for _, s := range sets {
		byID[s.ID] = s
	}
	if byID["base1"].Name != "Base Set (revised)" {
		t.Errorf("Expected base1 to be replaced, got %q", byID["base1"].Name)
	}
	if _, ok := byID["base2"]; !ok {
		t.Error("Expected stale set base2 to remain")
	}
}

func TestSubscribeRedeliversOnMutation(t *testing.T) {
	repo := NewCardRepository(newTestDB(t), nil)

	ch, unsubscribe := repo.Subscribe(models.ListForSale)
	defer unsubscribe()

	// Seed snapshot is the current (empty) result set
	select {
	case snapshot := <-ch:
		if len(snapshot) != 0 {
			t.Fatalf("Expected empty seed snapshot, got %d cards", len(snapshot))
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for seed snapshot")
	}

	card := testCard(models.ListForSale)
	if err := repo.Insert(card, nil); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	select {
	case snapshot := <-ch:
		if len(snapshot) != 1 || snapshot[0].Card.ID != card.ID {
			t.Fatalf("Expected snapshot with inserted card, got %+v", snapshot)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for post-insert snapshot")
	}

	// A lagging consumer sees the latest state, not a backlog
	second := testCard(models.ListForSale)
	second.Name = "Venusaur"
	if err := repo.Insert(second, nil); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := repo.Delete(second); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	select {
	case snapshot := <-ch:
		if len(snapshot) != 1 || snapshot[0].Card.ID != card.ID {
			t.Fatalf("Expected coalesced latest snapshot, got %+v", snapshot)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for coalesced snapshot")
	}
}
