package services

import (
	"errors"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/psyrax/pokeprices/internal/models"
)

// Setting keys. The names match the original app's preferences store so a
// migrated database keeps working.
const (
	settingAPIKey       = "justTcgApiKey"
	settingUSDToMXNRate = "usdToMxnRate"

	// DefaultUSDToMXNRate is used until the user fetches or saves a rate.
	DefaultUSDToMXNRate = 18.5
)

// SettingsStore persists user configuration in the settings table. Last
// write wins.
type SettingsStore struct {
	db *gorm.DB
}

func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// APIKey returns the stored JustTCG API key, or "" when none is saved.
func (s *SettingsStore) APIKey() (string, error) {
	return s.get(settingAPIKey, "")
}

func (s *SettingsStore) SaveAPIKey(key string) error {
	return s.put(settingAPIKey, key)
}

// USDToMXNRate returns the stored rate, defaulting to DefaultUSDToMXNRate.
func (s *SettingsStore) USDToMXNRate() (float64, error) {
	raw, err := s.get(settingUSDToMXNRate, "")
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return DefaultUSDToMXNRate, nil
	}
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return DefaultUSDToMXNRate, nil
	}
	return rate, nil
}

func (s *SettingsStore) SaveUSDToMXNRate(rate float64) error {
	return s.put(settingUSDToMXNRate, strconv.FormatFloat(rate, 'f', -1, 64))
}

func (s *SettingsStore) get(key, fallback string) (string, error) {
	var setting models.Setting
	err := s.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingsStore) put(key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&setting).Error
}
