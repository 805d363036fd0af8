package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portal/infrastructure"
	"portal/internal/files"
	"portal/pkg/clock"
)

// Authorizer answers whether a user may read and write a conversation.
type Authorizer interface {
	IsMember(ctx context.Context, ref Ref, userID string) (bool, error)
}

// Store is the durable, append-only record of conversation messages.
type Store struct {
	db    *gorm.DB
	auth  Authorizer
	clock clock.Clock
}

func NewStore(db *gorm.DB, auth Authorizer, clk clock.Clock) *Store {
	return &Store{db: db, auth: auth, clock: clk}
}

func (s *Store) authorize(ctx context.Context, ref Ref, senderID string) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	if senderID == "" {
		return infrastructure.NotAuthorized("sender is required")
	}
	ok, err := s.auth.IsMember(ctx, ref, senderID)
	if err != nil {
		return infrastructure.StoreError("check membership", err)
	}
	if !ok {
		return infrastructure.NotAuthorized("not a member of this conversation")
	}
	return nil
}

// now is truncated to microseconds so the value handed back to callers
// matches what Postgres keeps.
func (s *Store) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// AppendText stores a text message from senderID.
func (s *Store) AppendText(ctx context.Context, ref Ref, senderID, text string) (*Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, infrastructure.Validation("message text is required")
	}
	if err := s.authorize(ctx, ref, senderID); err != nil {
		return nil, err
	}

	msg := newMessage(ref, senderID, KindText, s.now())
	msg.ID = newMessageID()
	msg.Text = &text

	err := infrastructure.TimeOperation(ctx, "chat.append_text", func() error {
		return s.db.WithContext(ctx).Create(msg).Error
	})
	if err != nil {
		return nil, infrastructure.StoreError("append text message", err)
	}
	return s.hydrate(ctx, msg)
}

// AppendFile stores a file message. The file row (if new), its share
// link into the conversation and the message are written in one
// transaction. Sharing the same file into the same conversation again
// keeps the single link and still adds a message.
func (s *Store) AppendFile(ctx context.Context, ref Ref, senderID string, file *files.File) (*Message, error) {
	if file == nil || file.ID == "" {
		return nil, infrastructure.Validation("file is required")
	}
	if err := s.authorize(ctx, ref, senderID); err != nil {
		return nil, err
	}

	at := s.now()
	msg := newMessage(ref, senderID, KindFile, at)
	msg.ID = newMessageID()
	fileID := file.ID
	msg.FileID = &fileID

	share := &files.FileShare{
		ID:        uuid.NewString(),
		FileID:    file.ID,
		GroupID:   msg.GroupID,
		ThreadID:  msg.ThreadID,
		SharedBy:  senderID,
		CreatedAt: at,
	}

	err := infrastructure.TimeOperation(ctx, "chat.append_file", func() error {
		return infrastructure.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(file).Error; err != nil {
				return err
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(share).Error; err != nil {
				return err
			}
			return tx.Omit(clause.Associations).Create(msg).Error
		})
	})
	if err != nil {
		return nil, infrastructure.StoreError("append file message", err)
	}
	return s.hydrate(ctx, msg)
}

func (s *Store) hydrate(ctx context.Context, msg *Message) (*Message, error) {
	var out Message
	err := s.db.WithContext(ctx).Preload("Sender").Preload("File").Where("id = ?", msg.ID).First(&out).Error
	if err != nil {
		return nil, infrastructure.StoreError("load message", err)
	}
	return &out, nil
}

// ListMessages returns the full history of ref, oldest first.
func (s *Store) ListMessages(ctx context.Context, ref Ref) ([]*Message, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	var msgs []*Message
	err := infrastructure.TimeOperation(ctx, "chat.list_messages", func() error {
		return s.db.WithContext(ctx).
			Preload("Sender").
			Preload("File").
			Where(ref.Column()+" = ?", ref.ID).
			Order("created_at ASC").
			Order("id ASC").
			Find(&msgs).Error
	})
	if err != nil {
		return nil, infrastructure.StoreError("list messages", err)
	}
	return msgs, nil
}

// LatestMessage returns the newest message in ref, or nil if it has none.
func (s *Store) LatestMessage(ctx context.Context, ref Ref) (*Message, error) {
	var msg Message
	err := s.db.WithContext(ctx).
		Preload("File").
		Where(ref.Column()+" = ?", ref.ID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(1).
		Take(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, infrastructure.StoreError("latest message", err)
	}
	return &msg, nil
}

// CountUnread counts messages in ref newer than since that viewerID did
// not send.
func (s *Store) CountUnread(ctx context.Context, ref Ref, viewerID string, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&Message{}).
		Where(ref.Column()+" = ?", ref.ID).
		Where("created_at > ?", since.UTC()).
		Where("sender_id <> ?", viewerID).
		Count(&n).Error
	if err != nil {
		return 0, infrastructure.StoreError("count unread", err)
	}
	return n, nil
}
