package realtime

import (
	"github.com/google/wire"

	"portal/config"
	"portal/internal/activity"
	"portal/internal/auth"
	"portal/internal/chat"
)

// ProvideHub is a Wire provider function that creates the connection Hub
func ProvideHub(authorizer chat.Authorizer) *Hub {
	return NewHub(authorizer)
}

// ProvideWSHandler is a Wire provider function that creates a WSHandler
func ProvideWSHandler(hub *Hub, am *auth.AuthMiddleware, recorder *activity.Recorder, cfg *config.Config) *WSHandler {
	return NewWSHandler(hub, am, recorder, cfg.WSInsecureSkipVerify)
}

var Set = wire.NewSet(ProvideHub, ProvideWSHandler)
