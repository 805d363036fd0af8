package chat

import (
	"github.com/google/wire"

	"portal/internal/database"
	"portal/pkg/clock"
)

// ProvideStore is a Wire provider function that creates the conversation Store
func ProvideStore(db *database.Database, auth Authorizer, clk clock.Clock) *Store {
	return NewStore(db.DB, auth, clk)
}

var Set = wire.NewSet(ProvideStore)
