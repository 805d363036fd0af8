package files

import "time"

// File is an uploaded blob's metadata. The bytes live wherever
// StoragePath points; this package never touches them.
type File struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	OriginalName string    `gorm:"size:255;not null" json:"originalName"`
	MimeType     string    `gorm:"size:255" json:"mimeType"`
	Size         int64     `gorm:"not null;default:0" json:"size"`
	StoragePath  string    `gorm:"size:1024;not null" json:"-"`
	UploadedBy   string    `gorm:"size:36;not null;index" json:"uploadedBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (File) TableName() string { return "files" }

// FileShare links a file into exactly one group or direct thread.
type FileShare struct {
	ID        string  `gorm:"primaryKey;size:36"`
	FileID    string  `gorm:"size:36;not null;uniqueIndex:idx_file_shares_group,priority:1;uniqueIndex:idx_file_shares_thread,priority:1"`
	GroupID   *string `gorm:"size:36;uniqueIndex:idx_file_shares_group,priority:2;check:chk_file_shares_conversation,(group_id IS NULL) <> (thread_id IS NULL)"`
	ThreadID  *string `gorm:"size:36;uniqueIndex:idx_file_shares_thread,priority:2"`
	SharedBy  string  `gorm:"size:36;not null"`
	CreatedAt time.Time
}

func (FileShare) TableName() string { return "file_shares" }
