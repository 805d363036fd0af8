// Package messaging is the entry point for chat operations: it checks
// access, writes through the conversation store and then notifies live
// clients and the reminder scheduler.
package messaging

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"portal/infrastructure"
	"portal/internal/chat"
	"portal/internal/files"
	"portal/internal/inbox"
	"portal/internal/membership"
	"portal/internal/user"
)

type Members interface {
	IsMember(ctx context.Context, ref chat.Ref, userID string) (bool, error)
	MemberIDs(ctx context.Context, ref chat.Ref) ([]string, error)
	FindOrCreateDirectThread(ctx context.Context, a, b string) (*membership.DirectThread, error)
}

type Watermarks interface {
	MarkSeen(ctx context.Context, userID string, ref chat.Ref) error
}

type Publisher interface {
	PublishMessage(msg *chat.Message)
	PublishInboxUpdate(userIDs ...string)
}

type Reminders interface {
	Schedule(ref chat.Ref, msg *chat.Message, senderID string)
}

type Service struct {
	store         *chat.Store
	members       Members
	watermarks    Watermarks
	inbox         *inbox.Service
	users         user.Repository
	files         files.Repository
	publisher     Publisher
	reminders     Reminders
	allowedDomain string
}

func NewService(
	store *chat.Store,
	members Members,
	watermarks Watermarks,
	inboxService *inbox.Service,
	users user.Repository,
	fileRepo files.Repository,
	publisher Publisher,
	reminders Reminders,
	allowedDomain string,
) *Service {
	return &Service{
		store:         store,
		members:       members,
		watermarks:    watermarks,
		inbox:         inboxService,
		users:         users,
		files:         fileRepo,
		publisher:     publisher,
		reminders:     reminders,
		allowedDomain: strings.ToLower(strings.TrimSpace(allowedDomain)),
	}
}

func (s *Service) requireMember(ctx context.Context, ref chat.Ref, userID string) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	ok, err := s.members.IsMember(ctx, ref, userID)
	if err != nil {
		return infrastructure.StoreError("check membership", err)
	}
	if !ok {
		if ref.Scope == chat.ScopeGroup {
			return infrastructure.NotAuthorized("not a group member")
		}
		return infrastructure.NotAuthorized("not a participant of this thread")
	}
	return nil
}

// PostMessage appends a text message to ref.
func (s *Service) PostMessage(ctx context.Context, senderID string, ref chat.Ref, text string) (*chat.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, infrastructure.Validation("message text is required")
	}

	msg, err := s.store.AppendText(ctx, ref, senderID, text)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, ref, msg, senderID)
	return msg, nil
}

// SendDirectMessage sends text to the user owning toEmail, creating the
// user and the thread if needed. It returns the thread id.
func (s *Service) SendDirectMessage(ctx context.Context, senderID, toEmail, text string) (string, *chat.Message, error) {
	toEmail = user.NormalizeEmail(toEmail)
	if addr, err := mail.ParseAddress(toEmail); err != nil || addr.Address != toEmail {
		return "", nil, infrastructure.Validation("valid toEmail is required")
	}
	if strings.TrimSpace(text) == "" {
		return "", nil, infrastructure.Validation("message text is required")
	}
	if s.allowedDomain != "" {
		domain := toEmail[strings.LastIndex(toEmail, "@")+1:]
		if domain != s.allowedDomain {
			return "", nil, infrastructure.NotAuthorized("email domain not allowed")
		}
	}

	recipient, err := s.users.FindOrCreateByEmail(ctx, toEmail)
	if err != nil {
		return "", nil, err
	}
	thread, err := s.members.FindOrCreateDirectThread(ctx, senderID, recipient.ID)
	if err != nil {
		return "", nil, err
	}

	msg, err := s.PostMessage(ctx, senderID, chat.ThreadRef(thread.ID), text)
	if err != nil {
		return "", nil, err
	}
	return thread.ID, msg, nil
}

// AttachFile posts an existing uploaded file into ref as a message.
func (s *Service) AttachFile(ctx context.Context, senderID string, ref chat.Ref, fileID string) (*chat.Message, error) {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return nil, infrastructure.Validation("fileId is required")
	}
	if err := s.requireMember(ctx, ref, senderID); err != nil {
		return nil, err
	}

	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	msg, err := s.store.AppendFile(ctx, ref, senderID, file)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, ref, msg, senderID)
	return msg, nil
}

// ListMessages returns ref's history and marks it seen for viewerID.
func (s *Service) ListMessages(ctx context.Context, viewerID string, ref chat.Ref) ([]*chat.Message, error) {
	if err := s.requireMember(ctx, ref, viewerID); err != nil {
		return nil, err
	}

	msgs, err := s.store.ListMessages(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.watermarks.MarkSeen(ctx, viewerID, ref); err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkSeen advances userID's watermark for the conversation.
func (s *Service) MarkSeen(ctx context.Context, userID, scope, conversationID string) error {
	if scope == "" || strings.TrimSpace(conversationID) == "" {
		return infrastructure.Validation("scope and chatId are required")
	}
	sc, err := chat.ParseScope(scope)
	if err != nil {
		return err
	}
	ref := chat.Ref{Scope: sc, ID: conversationID}
	if err := s.requireMember(ctx, ref, userID); err != nil {
		return err
	}
	return s.watermarks.MarkSeen(ctx, userID, ref)
}

func (s *Service) GetInbox(ctx context.Context, userID string) ([]inbox.Summary, error) {
	return s.inbox.GetInbox(ctx, userID)
}

// announce runs after a message is durable. Nothing it does can fail the
// write.
func (s *Service) announce(ctx context.Context, ref chat.Ref, msg *chat.Message, senderID string) {
	s.publisher.PublishMessage(msg)

	memberIDs, err := s.members.MemberIDs(ctx, ref)
	if err != nil {
		slog.Warn("failed to load members for inbox update", "conversation", ref.String(), "error", err)
	} else {
		s.publisher.PublishInboxUpdate(memberIDs...)
	}

	s.reminders.Schedule(ref, msg, senderID)
}
