// Package activity keeps an audit trail of user connections.
package activity

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"portal/pkg/clock"
)

const TypeConnection = "connection"

type UserActivity struct {
	ID           string         `gorm:"primaryKey;size:36"`
	UserID       string         `gorm:"size:36;not null;index"`
	ActivityType string         `gorm:"size:32;not null;index"`
	Details      datatypes.JSON `json:"details"`
	CreatedAt    time.Time      `gorm:"not null;index"`
}

func (UserActivity) TableName() string { return "user_activities" }

type Recorder struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewRecorder(db *gorm.DB, clk clock.Clock) *Recorder {
	return &Recorder{db: db, clock: clk}
}

// Record stores one activity row. Failures are logged and dropped: an
// audit write never fails the action being audited.
func (r *Recorder) Record(ctx context.Context, userID, activityType string, details map[string]interface{}) {
	row := &UserActivity{
		ID:           uuid.NewString(),
		UserID:       userID,
		ActivityType: activityType,
		CreatedAt:    r.clock.Now().UTC(),
	}
	if len(details) > 0 {
		if b, err := json.Marshal(details); err == nil {
			row.Details = datatypes.JSON(b)
		}
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		slog.Error("failed to record user activity", "user", userID, "type", activityType, "error", err)
	}
}

// RecordConnection records a realtime connection for userID.
func (r *Recorder) RecordConnection(ctx context.Context, userID string) {
	r.Record(ctx, userID, TypeConnection, nil)
}

// ForUser returns the newest activity rows for userID.
func (r *Recorder) ForUser(ctx context.Context, userID string, limit int) ([]UserActivity, error) {
	var rows []UserActivity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
