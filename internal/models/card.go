package models

// ListType is the disjoint partition a card belongs to. A card is in exactly
// one list at a time.
type ListType string

const (
	ListForSale   ListType = "forSale"
	ListWantToBuy ListType = "wantToBuy"
)

// ParseListType returns the list type for a raw string, defaulting to
// ListForSale for unknown values.
func ParseListType(raw string) ListType {
	if raw == string(ListWantToBuy) {
		return ListWantToBuy
	}
	return ListForSale
}

// Card is a user-owned inventory entry. The ID is minted locally and never
// changes; APIID/APICardID point back into the JustTCG catalog when the card
// came from (or was matched against) a remote record.
//
// Price is nil when unknown - a card without a price renders as "no price",
// never as $0.00. TagID holds the NFC tag written for the card and is
// expected to be unique in practice, though the store does not enforce it.
type Card struct {
	ID            string   `json:"id" gorm:"primaryKey"`
	ListType      ListType `json:"list_type" gorm:"not null;index;default:'forSale'"`
	APIID         *string  `json:"api_id"`
	APICardID     *string  `json:"api_card_id"`
	Name          string   `json:"name" gorm:"not null;index"`
	Game          *string  `json:"game"`
	ExpansionCode string   `json:"expansion_code" gorm:"not null"`
	ExpansionName *string  `json:"expansion_name"`
	CardNumber    string   `json:"card_number"`
	Rarity        *string  `json:"rarity"`
	TCGPlayerID   *string  `json:"tcgplayer_id"`
	Details       *string  `json:"details"`
	ImageURL      *string  `json:"image_url"`
	Price         *float64 `json:"price"`
	Currency      string   `json:"currency" gorm:"default:'USD'"`
	TagID         *string  `json:"tag_id" gorm:"index"`

	Variants []CardVariant `json:"-" gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE"`
}

// CardWithVariants pairs a card with its condition/printing price points.
// It is the unit produced by the mapping layer and returned by list queries.
type CardWithVariants struct {
	Card     Card          `json:"card"`
	Variants []CardVariant `json:"variants"`
}
