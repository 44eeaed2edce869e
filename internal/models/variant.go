package models

// CardVariant is a condition/printing-specific price point owned by exactly
// one card. Variants never outlive their card (the store cascades the
// delete) and the full set is replaced, not merged, whenever an update
// carries new variants.
type CardVariant struct {
	ID          string  `json:"id" gorm:"primaryKey"`
	CardID      string  `json:"card_id" gorm:"not null;index"`
	Condition   string  `json:"condition" gorm:"not null"`
	Printing    string  `json:"printing" gorm:"not null"`
	Price       float64 `json:"price" gorm:"not null"`
	LastUpdated int64   `json:"last_updated"` // epoch seconds
}
