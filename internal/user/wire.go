package user

import (
	"github.com/google/wire"

	"portal/internal/database"
)

// ProvideRepository is a Wire provider function that creates a Repository
func ProvideRepository(db *database.Database) Repository {
	return NewRepository(db.DB)
}

var Set = wire.NewSet(ProvideRepository)
