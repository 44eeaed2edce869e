package models

// Setting is a persisted key-value configuration row (API key, exchange
// rate). Last write wins.
type Setting struct {
	Key   string `json:"key" gorm:"primaryKey"`
	Value string `json:"value"`
}
