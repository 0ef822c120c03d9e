package models

import "time"

// SubmissionFile is an uploaded asset (logo, copy, photos) stored in object storage.
type SubmissionFile struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SubmissionID int64     `gorm:"column:submission_id;not null;index" json:"submission_id"`
	FileName     string    `gorm:"column:file_name;type:varchar(255);not null" json:"file_name"`
	ContentType  string    `gorm:"column:content_type;type:varchar(128)" json:"content_type"`
	Size         int64     `gorm:"column:size;not null" json:"size"`
	ObjectKey    string    `gorm:"column:object_key;type:varchar(512);not null;uniqueIndex" json:"-"`
	UploadedBy   string    `gorm:"column:uploaded_by;type:varchar(128)" json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func (SubmissionFile) TableName() string {
	return "submission_file"
}
