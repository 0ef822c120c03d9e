package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookEventLogStatus string

const (
	WebhookEventLogStatusReceived     WebhookEventLogStatus = "received"
	WebhookEventLogStatusHandled      WebhookEventLogStatus = "handled"
	WebhookEventLogStatusIgnored      WebhookEventLogStatus = "ignored"
	WebhookEventLogStatusHandleFailed WebhookEventLogStatus = "handle_failed"
)

// WebhookEventLog keeps one row per delivery stage of a Stripe webhook.
type WebhookEventLog struct {
	ID           string                `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Provider     string                `gorm:"column:provider;type:varchar(32);not null" json:"provider"`
	EventID      string                `gorm:"column:event_id;type:varchar(128);index" json:"event_id"`
	EventType    string                `gorm:"column:event_type;type:varchar(128)" json:"event_type"`
	SubmissionID *int64                `gorm:"column:submission_id;index" json:"submission_id"`
	TraceID      string                `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	Outcome      string                `gorm:"column:outcome;type:varchar(64)" json:"outcome"`
	Data         datatypes.JSON        `gorm:"column:data;type:jsonb" json:"data"`
	Error        *string               `gorm:"column:error;type:text" json:"error"`
	Status       WebhookEventLogStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CreatedAt    time.Time             `json:"created_at"`
}

func (WebhookEventLog) TableName() string { return "webhook_event_log" }
