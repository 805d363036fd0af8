package api

import (
	"github.com/google/wire"

	"portal/config"
	"portal/internal/auth"
	"portal/internal/database"
	"portal/internal/messaging"
	"portal/internal/realtime"
)

// ProvideServer is a Wire provider function that creates the HTTP Server
func ProvideServer(
	db *database.Database,
	messages *messaging.JSONHandler,
	ws *realtime.WSHandler,
	am *auth.AuthMiddleware,
	cfg *config.Config,
) *Server {
	return NewServer(db, messages, ws, am, cfg.RateLimitRPS)
}

var Set = wire.NewSet(ProvideServer)
