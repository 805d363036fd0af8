package files

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"portal/infrastructure"
)

type Repository interface {
	Create(ctx context.Context, file *File) error
	GetByID(ctx context.Context, id string) (*File, error)
	CountShares(ctx context.Context, fileID string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, file *File) error {
	if strings.TrimSpace(file.OriginalName) == "" {
		return infrastructure.Validation("file name is required")
	}
	if file.UploadedBy == "" {
		return infrastructure.Validation("file uploader is required")
	}
	if file.ID == "" {
		file.ID = uuid.NewString()
	}

	return infrastructure.TimeOperation(ctx, "files.create", func() error {
		return infrastructure.StoreError("create file", r.db.WithContext(ctx).Create(file).Error)
	})
}

func (r *repository) GetByID(ctx context.Context, id string) (*File, error) {
	var f File
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, infrastructure.StoreError("get file", err)
	}
	return &f, nil
}

// CountShares reports how many conversations the file is linked into.
func (r *repository) CountShares(ctx context.Context, fileID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&FileShare{}).Where("file_id = ?", fileID).Count(&n).Error
	if err != nil {
		return 0, infrastructure.StoreError("count file shares", err)
	}
	return n, nil
}
