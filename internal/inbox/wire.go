package inbox

import (
	"github.com/google/wire"

	"portal/internal/chat"
	"portal/internal/lastseen"
	"portal/internal/membership"
)

// ProvideService is a Wire provider function that creates the inbox Service
func ProvideService(rosters *membership.Repository, store *chat.Store, tracker *lastseen.Tracker) *Service {
	return NewService(rosters, store, tracker)
}

var Set = wire.NewSet(ProvideService)
