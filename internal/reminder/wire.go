package reminder

import (
	"github.com/google/wire"

	"portal/config"
	"portal/internal/email"
	"portal/internal/lastseen"
	"portal/internal/membership"
	"portal/internal/user"
	"portal/pkg/clock"
)

// ProvideScheduler is a Wire provider function that creates a Scheduler
func ProvideScheduler(
	members *membership.Repository,
	tracker *lastseen.Tracker,
	users user.Repository,
	sender *email.Sender,
	clk clock.Clock,
	cfg *config.Config,
) *Scheduler {
	return NewScheduler(members, tracker, users, sender, clk, Options{
		Delay:      cfg.ReminderDelay,
		PortalURL:  cfg.PortalURL,
		APIBaseURL: cfg.APIBaseURL,
	})
}

var Set = wire.NewSet(ProvideScheduler)
