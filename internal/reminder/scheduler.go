// Package reminder emails conversation members about messages they have
// not opened some time after the message was sent.
package reminder

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"portal/internal/chat"
	"portal/internal/email"
	"portal/internal/user"
	"portal/pkg/clock"
)

type Members interface {
	MemberIDs(ctx context.Context, ref chat.Ref) ([]string, error)
}

type Watermarks interface {
	GetWatermark(ctx context.Context, userID string, ref chat.Ref) (time.Time, error)
}

type Users interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Mailer interface {
	SendUnreadReminder(to string, reminder email.UnreadReminder) error
}

type Options struct {
	Delay      time.Duration
	PortalURL  string
	APIBaseURL string
}

// Scheduler arms one in-process timer per message. Pending timers are
// lost when the process exits.
type Scheduler struct {
	members    Members
	watermarks Watermarks
	users      Users
	mailer     Mailer
	clock      clock.Clock
	opts       Options

	mu      sync.Mutex
	timers  map[uint64]clock.Timer
	next    uint64
	stopped bool
}

func NewScheduler(members Members, watermarks Watermarks, users Users, mailer Mailer, clk clock.Clock, opts Options) *Scheduler {
	return &Scheduler{
		members:    members,
		watermarks: watermarks,
		users:      users,
		mailer:     mailer,
		clock:      clk,
		opts:       opts,
		timers:     map[uint64]clock.Timer{},
	}
}

// Schedule arms the reminder check for msg. It returns immediately.
func (s *Scheduler) Schedule(ref chat.Ref, msg *chat.Message, senderID string) {
	if msg == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	id := s.next
	s.next++
	s.timers[id] = s.clock.AfterFunc(s.opts.Delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.remind(ctx, ref, msg, senderID)
	})
}

// Pending reports how many reminders are armed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop disarms every pending reminder. Later Schedule calls are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// remind emails every member other than the sender whose watermark is
// still behind the message. Nothing here is reported to the caller.
func (s *Scheduler) remind(ctx context.Context, ref chat.Ref, msg *chat.Message, senderID string) {
	log := slog.With("conversation", ref.String(), "message", msg.ID)

	memberIDs, err := s.members.MemberIDs(ctx, ref)
	if err != nil {
		log.Error("reminder: failed to load members", "error", err)
		return
	}

	for _, memberID := range memberIDs {
		if memberID == senderID {
			continue
		}

		seen, err := s.watermarks.GetWatermark(ctx, memberID, ref)
		if err != nil {
			log.Error("reminder: failed to read watermark", "user", memberID, "error", err)
			continue
		}
		if !seen.Before(msg.CreatedAt) {
			continue
		}

		member, err := s.users.GetByID(ctx, memberID)
		if err != nil || member.Email == "" {
			log.Error("reminder: failed to load recipient", "user", memberID, "error", err)
			continue
		}

		if err := s.mailer.SendUnreadReminder(member.Email, s.build(ref, msg)); err != nil {
			log.Error("reminder: failed to send email", "user", memberID, "error", err)
			continue
		}
		log.Info("reminder sent", "user", memberID)
	}
}

func (s *Scheduler) build(ref chat.Ref, msg *chat.Message) email.UnreadReminder {
	r := email.UnreadReminder{
		Group:    ref.Scope == chat.ScopeGroup,
		From:     "Someone",
		ChatLink: ChatLink(s.opts.PortalURL, ref),
	}
	if msg.Sender != nil {
		r.From = msg.Sender.DisplayName()
	}
	if msg.Text != nil {
		r.Text = *msg.Text
	}
	if msg.FileID != nil {
		r.FileLink = FileLink(s.opts.APIBaseURL, *msg.FileID)
	}
	return r
}

// ChatLink is the portal page that opens ref.
func ChatLink(portalURL string, ref chat.Ref) string {
	param := "threadId"
	if ref.Scope == chat.ScopeGroup {
		param = "groupId"
	}
	return portalURL + "/messages?" + param + "=" + url.QueryEscape(ref.ID)
}

// FileLink is the API download URL for a file.
func FileLink(apiBaseURL, fileID string) string {
	return apiBaseURL + "/api/v1/files/" + url.PathEscape(fileID) + "/download"
}
