package services

import (
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/psyrax/pokeprices/internal/database"
)

// newTestDB opens a fresh in-memory database for one test. cache=shared
// keeps the database alive across the pool's connections; the test name
// keeps parallel tests apart.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func ptr[T any](v T) *T {
	return &v
}
