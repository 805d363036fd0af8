package lastseen

import (
	"github.com/google/wire"

	"portal/internal/database"
	"portal/pkg/clock"
)

// ProvideTracker is a Wire provider function that creates a Tracker
func ProvideTracker(db *database.Database, clk clock.Clock) *Tracker {
	return NewTracker(db.DB, clk)
}

var Set = wire.NewSet(ProvideTracker)
