package messaging

import (
	"github.com/google/wire"

	"portal/config"
	"portal/internal/chat"
	"portal/internal/files"
	"portal/internal/inbox"
	"portal/internal/lastseen"
	"portal/internal/membership"
	"portal/internal/realtime"
	"portal/internal/reminder"
	"portal/internal/user"
)

// ProvideService is a Wire provider function that creates the messaging Service
func ProvideService(
	store *chat.Store,
	members *membership.Repository,
	tracker *lastseen.Tracker,
	inboxService *inbox.Service,
	users user.Repository,
	fileRepo files.Repository,
	hub *realtime.Hub,
	scheduler *reminder.Scheduler,
	cfg *config.Config,
) *Service {
	return NewService(store, members, tracker, inboxService, users, fileRepo, hub, scheduler, cfg.AllowedDomain)
}

// ProvideJSONHandler is a Wire provider function that creates a JSONHandler
func ProvideJSONHandler(service *Service) *JSONHandler {
	return NewJSONHandler(service)
}

var Set = wire.NewSet(ProvideService, ProvideJSONHandler)
