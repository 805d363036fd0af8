package main

import (
	"portal/internal/api"
	"portal/internal/reminder"
)

// App holds the long-lived pieces main needs to run and stop.
type App struct {
	Server    *api.Server
	Scheduler *reminder.Scheduler
}

func ProvideApp(server *api.Server, scheduler *reminder.Scheduler) *App {
	return &App{Server: server, Scheduler: scheduler}
}
