package models

import "time"

// SubmissionNote is a free-form staff note attached to a submission.
type SubmissionNote struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SubmissionID int64     `gorm:"column:submission_id;not null;index:idx_submission_note_submission,priority:1" json:"submission_id"`
	Author       string    `gorm:"column:author;type:varchar(128);not null" json:"author"`
	Body         string    `gorm:"column:body;type:text;not null" json:"body"`
	CreatedAt    time.Time `gorm:"index:idx_submission_note_submission,priority:2,sort:desc" json:"created_at"`
}

func (SubmissionNote) TableName() string {
	return "submission_note"
}
