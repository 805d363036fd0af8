// Package lastseen keeps the per-user, per-conversation read watermark.
package lastseen

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portal/infrastructure"
	"portal/internal/chat"
	"portal/pkg/clock"
)

// Never is the watermark of a conversation the user has not opened.
var Never = time.Unix(0, 0).UTC()

type ChatLastSeen struct {
	ID         string    `gorm:"primaryKey;size:36"`
	UserID     string    `gorm:"size:36;not null;uniqueIndex:idx_chat_last_seen_user_group,priority:1;uniqueIndex:idx_chat_last_seen_user_thread,priority:1"`
	GroupID    *string   `gorm:"size:36;uniqueIndex:idx_chat_last_seen_user_group,priority:2"`
	ThreadID   *string   `gorm:"size:36;uniqueIndex:idx_chat_last_seen_user_thread,priority:2"`
	LastSeenAt time.Time `gorm:"not null"`
}

func (ChatLastSeen) TableName() string { return "chat_last_seen" }

type Tracker struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewTracker(db *gorm.DB, clk clock.Clock) *Tracker {
	return &Tracker{db: db, clock: clk}
}

// MarkSeen moves the user's watermark for ref to now. A concurrent
// writer holding an older now can never move it back.
func (t *Tracker) MarkSeen(ctx context.Context, userID string, ref chat.Ref) error {
	if err := ref.Validate(); err != nil {
		return err
	}

	row := &ChatLastSeen{
		ID:         uuid.NewString(),
		UserID:     userID,
		LastSeenAt: t.clock.Now().UTC().Truncate(time.Microsecond),
	}
	id := ref.ID
	if ref.Scope == chat.ScopeGroup {
		row.GroupID = &id
	} else {
		row.ThreadID = &id
	}

	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: ref.Column()}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			gorm.Expr("chat_last_seen.last_seen_at < excluded.last_seen_at"),
		}},
	}

	return infrastructure.TimeOperation(ctx, "lastseen.mark_seen", func() error {
		err := t.db.WithContext(ctx).Clauses(upsert).Create(row).Error
		return infrastructure.StoreError("mark seen", err)
	})
}

// GetWatermark returns when the user last opened ref, or Never.
func (t *Tracker) GetWatermark(ctx context.Context, userID string, ref chat.Ref) (time.Time, error) {
	var row ChatLastSeen
	err := t.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(ref.Column()+" = ?", ref.ID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Never, nil
	}
	if err != nil {
		return Never, infrastructure.StoreError("get watermark", err)
	}
	return row.LastSeenAt.UTC(), nil
}
