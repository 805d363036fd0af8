package membership

import (
	"time"

	"portal/internal/user"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type Group struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	CreatedBy string    `gorm:"size:36;not null;index" json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Group) TableName() string { return "groups" }

type GroupMember struct {
	ID        string    `gorm:"primaryKey;size:36"`
	GroupID   string    `gorm:"size:36;not null;uniqueIndex:idx_group_members_group_user,priority:1"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_group_members_group_user,priority:2;index"`
	Role      Role      `gorm:"size:16;not null;default:member"`
	CreatedAt time.Time
}

func (GroupMember) TableName() string { return "group_members" }

// DirectThread is a one-to-one conversation. UserAID is always the
// lexically smaller participant id.
type DirectThread struct {
	ID        string     `gorm:"primaryKey;size:36"`
	UserAID   string     `gorm:"size:36;not null;uniqueIndex:idx_direct_threads_pair,priority:1;check:chk_direct_threads_order,user_a_id < user_b_id"`
	UserBID   string     `gorm:"size:36;not null;uniqueIndex:idx_direct_threads_pair,priority:2;index"`
	UserA     *user.User `gorm:"foreignKey:UserAID"`
	UserB     *user.User `gorm:"foreignKey:UserBID"`
	CreatedAt time.Time
}

func (DirectThread) TableName() string { return "direct_threads" }

// Other returns the participant that is not userID.
func (t *DirectThread) Other(userID string) *user.User {
	if t.UserAID == userID {
		return t.UserB
	}
	return t.UserA
}

// OtherID returns the id of the participant that is not userID.
func (t *DirectThread) OtherID(userID string) string {
	if t.UserAID == userID {
		return t.UserBID
	}
	return t.UserAID
}

func orderedPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}
