package models

// GameSet is a catalog entry for a printed card series, sourced from the
// JustTCG set list. Rows are upserted by remote id on every catalog refresh;
// sets that disappear from the remote list are left in place.
type GameSet struct {
	ID          string  `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null"`
	GameID      string  `json:"game_id"`
	Game        string  `json:"game"`
	ReleaseDate *string `json:"release_date"`
	CardsCount  int     `json:"cards_count"`
}
