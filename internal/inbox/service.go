// Package inbox builds a user's merged list of conversations with
// previews and unread counts.
package inbox

import (
	"context"
	"sort"
	"time"
	"unicode/utf8"

	"portal/internal/chat"
	"portal/internal/membership"
)

// PreviewMaxRunes caps the text preview. Longer texts end in an ellipsis.
const PreviewMaxRunes = 200

type Rosters interface {
	GroupsForUser(ctx context.Context, userID string) ([]*membership.Group, error)
	ThreadsForUser(ctx context.Context, userID string) ([]*membership.DirectThread, error)
}

type Messages interface {
	LatestMessage(ctx context.Context, ref chat.Ref) (*chat.Message, error)
	CountUnread(ctx context.Context, ref chat.Ref, viewerID string, since time.Time) (int64, error)
}

type Watermarks interface {
	GetWatermark(ctx context.Context, userID string, ref chat.Ref) (time.Time, error)
}

type Participant struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Alias *string `json:"alias"`
}

type Summary struct {
	Type            chat.Scope   `json:"type"`
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	OtherUser       *Participant `json:"otherUser,omitempty"`
	LastMessageText string       `json:"lastMessageText"`
	LastMessageAt   *time.Time   `json:"lastMessageAt"`
	UnreadCount     int64        `json:"unreadCount"`

	createdAt time.Time
}

func (s Summary) Ref() chat.Ref { return chat.Ref{Scope: s.Type, ID: s.ID} }

type Service struct {
	rosters    Rosters
	messages   Messages
	watermarks Watermarks
}

func NewService(rosters Rosters, messages Messages, watermarks Watermarks) *Service {
	return &Service{rosters: rosters, messages: messages, watermarks: watermarks}
}

// UnreadCount counts messages in ref that userID did not send and that
// arrived after userID last opened it. It is computed on every call.
func (s *Service) UnreadCount(ctx context.Context, userID string, ref chat.Ref) (int64, error) {
	since, err := s.watermarks.GetWatermark(ctx, userID, ref)
	if err != nil {
		return 0, err
	}
	return s.messages.CountUnread(ctx, ref, userID, since)
}

// GetInbox lists every group and direct thread userID belongs to, most
// recently active first. Conversations without messages come last.
func (s *Service) GetInbox(ctx context.Context, userID string) ([]Summary, error) {
	groups, err := s.rosters.GroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	threads, err := s.rosters.ThreadsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]Summary, 0, len(groups)+len(threads))
	for _, g := range groups {
		item := Summary{Type: chat.ScopeGroup, ID: g.ID, Name: g.Name, createdAt: g.CreatedAt}
		if err := s.fill(ctx, userID, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	for _, t := range threads {
		item := Summary{Type: chat.ScopeDirect, ID: t.ID, createdAt: t.CreatedAt}
		if other := t.Other(userID); other != nil {
			item.Name = other.DisplayName()
			item.OtherUser = &Participant{ID: other.ID, Email: other.Email, Alias: other.Alias}
		} else {
			item.OtherUser = &Participant{ID: t.OtherID(userID)}
		}
		if err := s.fill(ctx, userID, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	sortSummaries(items)
	return items, nil
}

func (s *Service) fill(ctx context.Context, userID string, item *Summary) error {
	last, err := s.messages.LatestMessage(ctx, item.Ref())
	if err != nil {
		return err
	}
	if last != nil {
		at := last.CreatedAt
		item.LastMessageAt = &at
		item.LastMessageText = Preview(last)
	}

	unread, err := s.UnreadCount(ctx, userID, item.Ref())
	if err != nil {
		return err
	}
	item.UnreadCount = unread
	return nil
}

// Preview renders the one-line inbox text for a message.
func Preview(m *chat.Message) string {
	if m == nil {
		return ""
	}
	if m.Kind == chat.KindFile {
		name := "File"
		if m.File != nil && m.File.OriginalName != "" {
			name = m.File.OriginalName
		}
		return "📎 " + name
	}
	if m.Text == nil {
		return ""
	}
	return truncate(*m.Text, PreviewMaxRunes)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "…"
}

func sortSummaries(items []Summary) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.LastMessageAt != nil && b.LastMessageAt != nil:
			if !a.LastMessageAt.Equal(*b.LastMessageAt) {
				return a.LastMessageAt.After(*b.LastMessageAt)
			}
		case a.LastMessageAt != nil:
			return true
		case b.LastMessageAt != nil:
			return false
		}
		if !a.createdAt.Equal(b.createdAt) {
			return a.createdAt.After(b.createdAt)
		}
		return a.ID < b.ID
	})
}
