//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"portal/config"
	"portal/internal/activity"
	"portal/internal/api"
	"portal/internal/auth"
	"portal/internal/chat"
	"portal/internal/database"
	"portal/internal/email"
	"portal/internal/files"
	"portal/internal/inbox"
	"portal/internal/lastseen"
	"portal/internal/membership"
	"portal/internal/messaging"
	"portal/internal/realtime"
	"portal/internal/reminder"
	"portal/internal/user"
	"portal/pkg/clock"
)

var AppSet = wire.NewSet(
	auth.Set,
	user.Set,
	files.Set,
	membership.Set,
	chat.Set,
	lastseen.Set,
	inbox.Set,
	email.Set,
	reminder.Set,
	activity.Set,
	realtime.Set,
	messaging.Set,
	api.Set,
	ProvideApp,
)

func InitializeApp(cfg *config.Config, db *database.Database, clk clock.Clock) *App {
	wire.Build(AppSet)

	return &App{}
}
