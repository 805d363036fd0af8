package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"portal/infrastructure"
	"portal/internal/database/dbtest"
	"portal/internal/files"
	"portal/internal/user"
	"portal/pkg/clock"
)

type members map[Ref]map[string]bool

func (m members) IsMember(_ context.Context, ref Ref, userID string) (bool, error) {
	return m[ref][userID], nil
}

type failingAuth struct{}

func (failingAuth) IsMember(context.Context, Ref, string) (bool, error) {
	return false, errors.New("membership lookup failed")
}

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db    *gorm.DB
	store *Store
	clock *clock.FakeClock
	group Ref
	dm    Ref
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t, &user.User{}, &files.File{}, &files.FileShare{}, &Message{})
	for _, id := range []string{"alice", "bob", "carol"} {
		require.NoError(t, db.Create(&user.User{ID: id, Email: id + "@example.com", IsActive: true}).Error)
	}

	group := GroupRef("g1")
	dm := ThreadRef("t1")
	auth := members{
		group: {"alice": true, "bob": true, "carol": true},
		dm:    {"alice": true, "bob": true},
	}
	clk := clock.Fake(t0)
	return &fixture{db: db, store: NewStore(db, auth, clk), clock: clk, group: group, dm: dm}
}

func TestAppendText_ListsInAppendOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for _, text := range []string{"one", "two", "three"} {
		m, err := f.store.AppendText(ctx, f.group, "alice", text)
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}
	// Same timestamp for all three: order must fall back to insertion id.
	f.clock.Advance(time.Second)
	m, err := f.store.AppendText(ctx, f.group, "bob", "four")
	require.NoError(t, err)
	ids = append(ids, m.ID)

	msgs, err := f.store.ListMessages(ctx, f.group)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	for i, msg := range msgs {
		assert.Equal(t, ids[i], msg.ID)
		require.NotNil(t, msg.Sender)
	}
	assert.Equal(t, "bob@example.com", msgs[3].Sender.Email)
	assert.Equal(t, "four", *msgs[3].Text)
}

func TestAppendText_SetsConversationAndKind(t *testing.T) {
	f := newFixture(t)

	m, err := f.store.AppendText(context.Background(), f.dm, "bob", "hi")
	require.NoError(t, err)

	assert.Nil(t, m.GroupID)
	require.NotNil(t, m.ThreadID)
	assert.Equal(t, "t1", *m.ThreadID)
	assert.Equal(t, KindText, m.Kind)
	assert.Nil(t, m.FileID)
	assert.Equal(t, f.dm, m.Ref())
	assert.True(t, m.CreatedAt.Equal(t0))
}

func TestAppendText_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.AppendText(ctx, f.group, "alice", "   ")
	assert.ErrorIs(t, err, infrastructure.ErrValidation)

	_, err = f.store.AppendText(ctx, f.dm, "carol", "let me in")
	assert.ErrorIs(t, err, infrastructure.ErrNotAuthorized)

	_, err = f.store.AppendText(ctx, Ref{Scope: "channel", ID: "x"}, "alice", "hi")
	assert.ErrorIs(t, err, infrastructure.ErrValidation)

	store := NewStore(f.db, failingAuth{}, f.clock)
	_, err = store.AppendText(ctx, f.group, "alice", "hi")
	assert.Error(t, err)

	var n int64
	require.NoError(t, f.db.Model(&Message{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAppendFile_TwiceMakesTwoMessagesOneShare(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	file := &files.File{ID: "f1", OriginalName: "report.pdf", StoragePath: "x/report.pdf", UploadedBy: "alice", CreatedAt: t0}

	first, err := f.store.AppendFile(ctx, f.group, "alice", file)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	second, err := f.store.AppendFile(ctx, f.group, "alice", file)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	require.NotNil(t, second.File)
	assert.Equal(t, "report.pdf", second.File.OriginalName)
	assert.Equal(t, KindFile, second.Kind)
	assert.Nil(t, second.Text)

	var shares, fileRows int64
	require.NoError(t, f.db.Model(&files.FileShare{}).Where("file_id = ?", "f1").Count(&shares).Error)
	require.NoError(t, f.db.Model(&files.File{}).Count(&fileRows).Error)
	assert.Equal(t, int64(1), shares)
	assert.Equal(t, int64(1), fileRows)

	// Sharing into another conversation adds a second link.
	_, err = f.store.AppendFile(ctx, f.dm, "bob", file)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&files.FileShare{}).Where("file_id = ?", "f1").Count(&shares).Error)
	assert.Equal(t, int64(2), shares)
}

func TestAppendFile_RollsBackEverythingOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_messages", func(tx *gorm.DB) {
		if tx.Statement.Table == "messages" {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))

	file := &files.File{ID: "f2", OriginalName: "a.png", StoragePath: "x/a.png", UploadedBy: "alice", CreatedAt: t0}
	_, err := f.store.AppendFile(ctx, f.group, "alice", file)
	require.Error(t, err)

	var fileRows, shares, msgs int64
	require.NoError(t, f.db.Model(&files.File{}).Count(&fileRows).Error)
	require.NoError(t, f.db.Model(&files.FileShare{}).Count(&shares).Error)
	require.NoError(t, f.db.Model(&Message{}).Count(&msgs).Error)
	assert.Zero(t, fileRows)
	assert.Zero(t, shares)
	assert.Zero(t, msgs)
}

func TestAppendFile_RequiresFile(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.AppendFile(context.Background(), f.group, "alice", nil)
	assert.ErrorIs(t, err, infrastructure.ErrValidation)
}

func TestLatestMessageAndCountUnread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	latest, err := f.store.LatestMessage(ctx, f.group)
	require.NoError(t, err)
	assert.Nil(t, latest)

	_, err = f.store.AppendText(ctx, f.group, "alice", "a1")
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	seen := f.clock.Now()
	f.clock.Advance(time.Second)
	_, err = f.store.AppendText(ctx, f.group, "bob", "b1")
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	last, err := f.store.AppendText(ctx, f.group, "alice", "a2")
	require.NoError(t, err)

	latest, err = f.store.LatestMessage(ctx, f.group)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, last.ID, latest.ID)

	n, err := f.store.CountUnread(ctx, f.group, "carol", time.Unix(0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = f.store.CountUnread(ctx, f.group, "alice", time.Unix(0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = f.store.CountUnread(ctx, f.group, "carol", seen)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		in      string
		want    Scope
		wantErr bool
	}{
		{in: "group", want: ScopeGroup},
		{in: "direct", want: ScopeDirect},
		{in: "Thread", want: ScopeDirect},
		{in: "room", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScope(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, infrastructure.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRefChannel(t *testing.T) {
	assert.Equal(t, "group:g1", GroupRef("g1").Channel())
	assert.Equal(t, "thread:t1", ThreadRef("t1").Channel())
}
