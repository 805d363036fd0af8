package user

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portal/infrastructure"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	FindOrCreateByEmail(ctx context.Context, email string) (*User, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// NormalizeEmail lower-cases and trims an address so that uniqueness is
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, infrastructure.StoreError("get user", err)
	}
	return &u, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []string) (map[string]*User, error) {
	out := make(map[string]*User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []*User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, infrastructure.StoreError("get users", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&u).Error
	if err != nil {
		return nil, infrastructure.StoreError("get user by email", err)
	}
	return &u, nil
}

// FindOrCreateByEmail returns the user owning email, creating a shadow
// user (no alias) if none exists. Concurrent callers for the same address
// converge on one row through the unique email index.
func (r *repository) FindOrCreateByEmail(ctx context.Context, email string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, infrastructure.Validation("email is required")
	}

	var u User
	err := infrastructure.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		shadow := User{ID: uuid.NewString(), Email: email, IsActive: true}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&shadow).Error; err != nil {
			return err
		}
		return tx.Where("email = ?", email).First(&u).Error
	})
	if err != nil {
		return nil, infrastructure.StoreError("find or create user", err)
	}
	return &u, nil
}
