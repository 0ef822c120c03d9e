package models

import (
	"time"

	"github.com/fatflowers/sitecraft/pkg/types"
	"gorm.io/datatypes"
)

// SubmissionLog records changes to submissions.
// Use case: audit trail for billing incidents.
type SubmissionLog struct {
	ID           string             `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SubmissionID int64              `gorm:"column:submission_id;not null;index" json:"submission_id"`
	Reason       types.ChangeReason `gorm:"column:reason;type:varchar(64);not null" json:"reason"`
	// Operator is the admin username or "stripe:<event id>".
	Operator string `gorm:"column:operator;type:varchar(128)" json:"operator"`
	// Before and After hold the full record around the change.
	Before    datatypes.JSONType[*Submission] `gorm:"column:before;type:jsonb;default:'null'" json:"before"`
	After     datatypes.JSONType[*Submission] `gorm:"column:after;type:jsonb;default:'null'" json:"after"`
	Changes   datatypes.JSONMap               `gorm:"column:changes;type:jsonb;default:'{}'" json:"changes"`
	TraceID   string                          `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	CreatedAt time.Time                       `json:"created_at"`
}

func (SubmissionLog) TableName() string {
	return "submission_log"
}
