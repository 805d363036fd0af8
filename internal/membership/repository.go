package membership

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portal/infrastructure"
	"portal/internal/chat"
)

// Repository answers roster questions for groups and direct threads.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) IsGroupMember(ctx context.Context, groupID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&n).Error
	if err != nil {
		return false, infrastructure.StoreError("check group member", err)
	}
	return n > 0, nil
}

func (r *Repository) IsThreadParticipant(ctx context.Context, threadID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&DirectThread{}).
		Where("id = ? AND (user_a_id = ? OR user_b_id = ?)", threadID, userID, userID).
		Count(&n).Error
	if err != nil {
		return false, infrastructure.StoreError("check thread participant", err)
	}
	return n > 0, nil
}

// IsMember implements chat.Authorizer. Unknown conversations report
// false rather than an error so callers cannot probe for existence.
func (r *Repository) IsMember(ctx context.Context, ref chat.Ref, userID string) (bool, error) {
	switch ref.Scope {
	case chat.ScopeGroup:
		return r.IsGroupMember(ctx, ref.ID, userID)
	case chat.ScopeDirect:
		return r.IsThreadParticipant(ctx, ref.ID, userID)
	}
	return false, nil
}

// FindOrCreateDirectThread returns the single thread between a and b,
// creating it on first use. Argument order does not matter.
func (r *Repository) FindOrCreateDirectThread(ctx context.Context, a, b string) (*DirectThread, error) {
	if a == "" || b == "" {
		return nil, infrastructure.Validation("both participants are required")
	}
	if a == b {
		return nil, infrastructure.Validation("cannot start a direct thread with yourself")
	}
	lo, hi := orderedPair(a, b)

	var thread DirectThread
	err := infrastructure.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		fresh := DirectThread{ID: uuid.NewString(), UserAID: lo, UserBID: hi}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
			return err
		}
		return tx.Where("user_a_id = ? AND user_b_id = ?", lo, hi).First(&thread).Error
	})
	if err != nil {
		return nil, infrastructure.StoreError("find or create direct thread", err)
	}
	return &thread, nil
}

// MemberIDs lists every user who belongs to ref.
func (r *Repository) MemberIDs(ctx context.Context, ref chat.Ref) ([]string, error) {
	switch ref.Scope {
	case chat.ScopeGroup:
		var ids []string
		err := r.db.WithContext(ctx).Model(&GroupMember{}).
			Where("group_id = ?", ref.ID).
			Order("created_at ASC").
			Pluck("user_id", &ids).Error
		if err != nil {
			return nil, infrastructure.StoreError("list group members", err)
		}
		return ids, nil
	case chat.ScopeDirect:
		var thread DirectThread
		if err := r.db.WithContext(ctx).Where("id = ?", ref.ID).First(&thread).Error; err != nil {
			return nil, infrastructure.StoreError("load direct thread", err)
		}
		return []string{thread.UserAID, thread.UserBID}, nil
	}
	return nil, ref.Validate()
}

func (r *Repository) GroupsForUser(ctx context.Context, userID string) ([]*Group, error) {
	var groups []*Group
	err := r.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Find(&groups).Error
	if err != nil {
		return nil, infrastructure.StoreError("list groups for user", err)
	}
	return groups, nil
}

// ThreadsForUser lists userID's direct threads with both participants
// loaded.
func (r *Repository) ThreadsForUser(ctx context.Context, userID string) ([]*DirectThread, error) {
	var threads []*DirectThread
	err := r.db.WithContext(ctx).
		Preload("UserA").
		Preload("UserB").
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Find(&threads).Error
	if err != nil {
		return nil, infrastructure.StoreError("list threads for user", err)
	}
	return threads, nil
}

func (r *Repository) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	var g Group
	if err := r.db.WithContext(ctx).Where("id = ?", groupID).First(&g).Error; err != nil {
		return nil, infrastructure.StoreError("get group", err)
	}
	return &g, nil
}

// CreateGroup creates a group with its creator as the first admin.
func (r *Repository) CreateGroup(ctx context.Context, name, creatorID string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, infrastructure.Validation("group name is required")
	}
	if creatorID == "" {
		return nil, infrastructure.Validation("group creator is required")
	}

	group := &Group{ID: uuid.NewString(), Name: name, CreatedBy: creatorID}
	err := infrastructure.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		return tx.Create(&GroupMember{ID: uuid.NewString(), GroupID: group.ID, UserID: creatorID, Role: RoleAdmin}).Error
	})
	if err != nil {
		return nil, infrastructure.StoreError("create group", err)
	}
	return group, nil
}

// AddGroupMember adds userID to the group. Adding an existing member is a
// no-op.
func (r *Repository) AddGroupMember(ctx context.Context, groupID, userID string, role Role) error {
	if role == "" {
		role = RoleMember
	}
	if role != RoleAdmin && role != RoleMember {
		return infrastructure.Validation("role must be admin or member")
	}

	if _, err := r.GetGroup(ctx, groupID); err != nil {
		if errors.Is(err, infrastructure.ErrNotFound) {
			return infrastructure.NotFound("group not found")
		}
		return err
	}

	member := &GroupMember{ID: uuid.NewString(), GroupID: groupID, UserID: userID, Role: role}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(member).Error
	return infrastructure.StoreError("add group member", err)
}
