package database

import (
	"log"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/psyrax/pokeprices/internal/models"
)

// Open connects to the sqlite database at dbPath and migrates the schema.
// The returned handle is the single store for the process; it is constructed
// here and passed explicitly to the repositories, never held as a package
// global.
func Open(dbPath string) (*gorm.DB, error) {
	// Foreign keys are off by default in sqlite and the pragma is
	// per-connection, so it has to ride the DSN to cover the whole pool.
	// Variant rows must die with their card.
	if strings.Contains(dbPath, "?") {
		dbPath += "&_foreign_keys=on"
	} else {
		dbPath += "?_foreign_keys=on"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connected successfully")

	err = db.AutoMigrate(
		&models.Card{},
		&models.CardVariant{},
		&models.GameSet{},
		&models.Setting{},
	)
	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")
	return db, nil
}
