package user

import (
	"time"
)

// User is a portal account. Users referenced by email before they ever
// log in exist as shadow users with a nil Alias.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"size:320;uniqueIndex;not null" json:"email"`
	Alias        *string   `gorm:"size:120" json:"alias"`
	IsActive     bool      `gorm:"not null;default:true" json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"-"`
	IsSuperAdmin bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (User) TableName() string { return "users" }

// DisplayName is the alias when one is set, otherwise the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Alias != nil && *u.Alias != "" {
		return *u.Alias
	}
	return u.Email
}
