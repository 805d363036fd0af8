package membership

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal/infrastructure"
	"portal/internal/chat"
	"portal/internal/database/dbtest"
	"portal/internal/user"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	db := dbtest.Open(t, &user.User{}, &Group{}, &GroupMember{}, &DirectThread{})
	for _, id := range []string{"alice", "bob", "carol"} {
		require.NoError(t, db.Create(&user.User{ID: id, Email: id + "@example.com", IsActive: true}).Error)
	}
	return NewRepository(db)
}

func TestFindOrCreateDirectThread_OrderIndependent(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	ab, err := repo.FindOrCreateDirectThread(ctx, "alice", "bob")
	require.NoError(t, err)
	ba, err := repo.FindOrCreateDirectThread(ctx, "bob", "alice")
	require.NoError(t, err)

	assert.Equal(t, ab.ID, ba.ID)
	assert.Equal(t, "alice", ab.UserAID)
	assert.Equal(t, "bob", ab.UserBID)

	other, err := repo.FindOrCreateDirectThread(ctx, "carol", "alice")
	require.NoError(t, err)
	assert.NotEqual(t, ab.ID, other.ID)
	assert.Equal(t, "alice", other.UserAID)
}

func TestFindOrCreateDirectThread_Validation(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.FindOrCreateDirectThread(ctx, "alice", "alice")
	assert.ErrorIs(t, err, infrastructure.ErrValidation)

	_, err = repo.FindOrCreateDirectThread(ctx, "", "alice")
	assert.ErrorIs(t, err, infrastructure.ErrValidation)
}

func TestIsMember(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	g, err := repo.CreateGroup(ctx, "Design", "alice")
	require.NoError(t, err)
	require.NoError(t, repo.AddGroupMember(ctx, g.ID, "bob", RoleMember))
	thread, err := repo.FindOrCreateDirectThread(ctx, "alice", "carol")
	require.NoError(t, err)

	tests := []struct {
		name string
		ref  chat.Ref
		user string
		want bool
	}{
		{"group creator", chat.GroupRef(g.ID), "alice", true},
		{"group member", chat.GroupRef(g.ID), "bob", true},
		{"group outsider", chat.GroupRef(g.ID), "carol", false},
		{"unknown group", chat.GroupRef("nope"), "alice", false},
		{"thread participant a", chat.ThreadRef(thread.ID), "alice", true},
		{"thread participant b", chat.ThreadRef(thread.ID), "carol", true},
		{"thread outsider", chat.ThreadRef(thread.ID), "bob", false},
		{"bad scope", chat.Ref{Scope: "room", ID: g.ID}, "alice", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.IsMember(ctx, tt.ref, tt.user)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemberIDs(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	g, err := repo.CreateGroup(ctx, "Ops", "alice")
	require.NoError(t, err)
	require.NoError(t, repo.AddGroupMember(ctx, g.ID, "bob", ""))
	require.NoError(t, repo.AddGroupMember(ctx, g.ID, "bob", RoleMember))

	ids, err := repo.MemberIDs(ctx, chat.GroupRef(g.ID))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, ids)

	thread, err := repo.FindOrCreateDirectThread(ctx, "carol", "bob")
	require.NoError(t, err)
	ids, err = repo.MemberIDs(ctx, chat.ThreadRef(thread.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, ids)

	_, err = repo.MemberIDs(ctx, chat.ThreadRef("missing"))
	assert.ErrorIs(t, err, infrastructure.ErrNotFound)
}

func TestAddGroupMember_Errors(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	err := repo.AddGroupMember(ctx, "missing", "bob", RoleMember)
	assert.ErrorIs(t, err, infrastructure.ErrNotFound)

	g, err := repo.CreateGroup(ctx, "QA", "alice")
	require.NoError(t, err)
	err = repo.AddGroupMember(ctx, g.ID, "bob", Role("owner"))
	assert.ErrorIs(t, err, infrastructure.ErrValidation)

	_, err = repo.CreateGroup(ctx, "  ", "alice")
	assert.ErrorIs(t, err, infrastructure.ErrValidation)
}

func TestGroupsAndThreadsForUser(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	g1, err := repo.CreateGroup(ctx, "One", "alice")
	require.NoError(t, err)
	_, err = repo.CreateGroup(ctx, "Two", "bob")
	require.NoError(t, err)
	_, err = repo.FindOrCreateDirectThread(ctx, "alice", "bob")
	require.NoError(t, err)

	groups, err := repo.GroupsForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, g1.ID, groups[0].ID)
	assert.Equal(t, "One", groups[0].Name)

	threads, err := repo.ThreadsForUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, threads, 1)
	other := threads[0].Other("bob")
	require.NotNil(t, other)
	assert.Equal(t, "alice@example.com", other.Email)
	assert.Equal(t, "alice", threads[0].OtherID("bob"))
}
