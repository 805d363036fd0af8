package lastseen

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal/infrastructure"
	"portal/internal/chat"
	"portal/internal/database/dbtest"
	"portal/pkg/clock"
)

var t0 = time.Date(2024, 5, 2, 14, 30, 0, 0, time.UTC)

func TestGetWatermark_NeverSeen(t *testing.T) {
	tracker := NewTracker(dbtest.Open(t, &ChatLastSeen{}), clock.Fake(t0))

	got, err := tracker.GetWatermark(context.Background(), "alice", chat.GroupRef("g1"))
	require.NoError(t, err)
	assert.True(t, got.Equal(Never))
}

func TestMarkSeen_UpsertsOneRowPerConversation(t *testing.T) {
	db := dbtest.Open(t, &ChatLastSeen{})
	clk := clock.Fake(t0)
	tracker := NewTracker(db, clk)
	ctx := context.Background()

	require.NoError(t, tracker.MarkSeen(ctx, "alice", chat.GroupRef("g1")))
	clk.Advance(time.Minute)
	require.NoError(t, tracker.MarkSeen(ctx, "alice", chat.GroupRef("g1")))
	require.NoError(t, tracker.MarkSeen(ctx, "alice", chat.ThreadRef("g1")))

	var n int64
	require.NoError(t, db.Model(&ChatLastSeen{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)

	got, err := tracker.GetWatermark(ctx, "alice", chat.GroupRef("g1"))
	require.NoError(t, err)
	assert.True(t, got.Equal(t0.Add(time.Minute)), "got %s", got)

	other, err := tracker.GetWatermark(ctx, "bob", chat.GroupRef("g1"))
	require.NoError(t, err)
	assert.True(t, other.Equal(Never))
}

func TestMarkSeen_NeverMovesBackwards(t *testing.T) {
	db := dbtest.Open(t, &ChatLastSeen{})
	ctx := context.Background()
	ref := chat.ThreadRef("t1")

	ahead := NewTracker(db, clock.Fake(t0.Add(time.Hour)))
	behind := NewTracker(db, clock.Fake(t0))

	require.NoError(t, ahead.MarkSeen(ctx, "alice", ref))
	require.NoError(t, behind.MarkSeen(ctx, "alice", ref))

	got, err := ahead.GetWatermark(ctx, "alice", ref)
	require.NoError(t, err)
	assert.True(t, got.Equal(t0.Add(time.Hour)), "got %s", got)
}

func TestMarkSeen_RejectsBadRef(t *testing.T) {
	tracker := NewTracker(dbtest.Open(t, &ChatLastSeen{}), clock.Fake(t0))

	err := tracker.MarkSeen(context.Background(), "alice", chat.Ref{Scope: "room", ID: "x"})
	assert.ErrorIs(t, err, infrastructure.ErrValidation)
}
