package services

import (
	"testing"
)

func TestAPIKeyDefaultsEmpty(t *testing.T) {
	store := NewSettingsStore(newTestDB(t))

	key, err := store.APIKey()
	if err != nil {
		t.Fatalf("APIKey failed: %v", err)
	}
	if key != "" {
		t.Errorf("Expected empty key before save, got %q", key)
	}
}

func TestAPIKeyRoundtrip(t *testing.T) {
	store := NewSettingsStore(newTestDB(t))

	if err := store.SaveAPIKey("tcg_abc123"); err != nil {
		t.Fatalf("SaveAPIKey failed: %v", err)
	}
	key, err := store.APIKey()
	if err != nil {
		t.Fatalf("APIKey failed: %v", err)
	}
	if key != "tcg_abc123" {
		t.Errorf("Expected saved key, got %q", key)
	}

	// Last write wins
	if err := store.SaveAPIKey("tcg_def456"); err != nil {
		t.Fatalf("SaveAPIKey failed: %v", err)
	}
	key, _ = store.APIKey()
	if key != "tcg_def456" {
		t.Errorf("Expected overwritten key, got %q", key)
	}
}

func TestUSDToMXNRateDefault(t *testing.T) {
	store := NewSettingsStore(newTestDB(t))

	rate, err := store.USDToMXNRate()
	if err != nil {
		t.Fatalf("USDToMXNRate failed: %v", err)
	}
	if rate != DefaultUSDToMXNRate {
		t.Errorf("Expected default %v, got %v", DefaultUSDToMXNRate, rate)
	}
}

func TestUSDToMXNRateRoundtrip(t *testing.T) {
	store := NewSettingsStore(newTestDB(t))

	if err := store.SaveUSDToMXNRate(17.04); err != nil {
		t.Fatalf("SaveUSDToMXNRate failed: %v", err)
	}
	rate, err := store.USDToMXNRate()
	if err != nil {
		t.Fatalf("USDToMXNRate failed: %v", err)
	}
	if rate != 17.04 {
		t.Errorf("Expected 17.04, got %v", rate)
	}
}

func TestUSDToMXNRateCorruptValueFallsBack(t *testing.T) {
	db := newTestDB(t)
	store := NewSettingsStore(db)

	if err := store.put(settingUSDToMXNRate, "not a number"); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	rate, err := store.USDToMXNRate()
	if err != nil {
		t.Fatalf("USDToMXNRate failed: %v", err)
	}
	if rate != DefaultUSDToMXNRate {
		t.Errorf("Expected default for corrupt value, got %v", rate)
	}
}
