package activity

import (
	"github.com/google/wire"

	"portal/internal/database"
	"portal/pkg/clock"
)

// ProvideRecorder is a Wire provider function that creates a Recorder
func ProvideRecorder(db *database.Database, clk clock.Clock) *Recorder {
	return NewRecorder(db.DB, clk)
}

var Set = wire.NewSet(ProvideRecorder)
