package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fatflowers/sitecraft/pkg/types"
)

// Submission is an intake-form lead. Once converted it also carries the customer's
// billing, subscription and project state.
type Submission struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Email        string `gorm:"column:email;type:varchar(255);not null;index" json:"email"`
	Phone        string `gorm:"column:phone;type:varchar(64)" json:"phone"`
	BusinessName string `gorm:"column:business_name;type:varchar(255)" json:"business_name"`
	Website      string `gorm:"column:website;type:varchar(512)" json:"website"`
	Package      string `gorm:"column:package;type:varchar(64)" json:"package"`
	Message      string `gorm:"column:message;type:text" json:"message"`

	Status           types.SubmissionStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	BillingStatus    types.BillingStatus    `gorm:"column:billing_status;type:varchar(32);not null;index" json:"billing_status"`
	DeploymentStatus types.DeploymentStatus `gorm:"column:deployment_status;type:varchar(32);not null" json:"deployment_status"`
	SiteURL          *string                `gorm:"column:site_url;type:varchar(512)" json:"site_url"`

	// Revenue is the one-time setup payment in major currency units.
	Revenue *decimal.Decimal `gorm:"column:revenue;type:numeric(12,2)" json:"revenue"`
	PaidAt  *time.Time       `gorm:"column:paid_at" json:"paid_at"`

	// Capability tokens: possession grants access to the matching checkout flow.
	SetupFeeToken     *string `gorm:"column:setup_fee_token;type:varchar(128);uniqueIndex" json:"-"`
	SubscriptionToken *string `gorm:"column:subscription_token;type:varchar(128);uniqueIndex" json:"-"`
	// SetupFeeAmount overrides the configured setup fee, in minor units.
	SetupFeeAmount *int64 `gorm:"column:setup_fee_amount" json:"setup_fee_amount"`

	StripeCustomerID       *string                   `gorm:"column:stripe_customer_id;type:varchar(128)" json:"stripe_customer_id"`
	StripeSubscriptionID   *string                   `gorm:"column:stripe_subscription_id;type:varchar(128);uniqueIndex" json:"stripe_subscription_id"`
	SubscriptionStatus     *types.SubscriptionStatus `gorm:"column:subscription_status;type:varchar(32)" json:"subscription_status"`
	SubscriptionCanceledAt *time.Time                `gorm:"column:subscription_canceled_at" json:"subscription_canceled_at"`
	LastInvoiceDate        *time.Time                `gorm:"column:last_invoice_date" json:"last_invoice_date"`
	LastInvoicePaidAt      *time.Time                `gorm:"column:last_invoice_paid_at" json:"last_invoice_paid_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Submission) TableName() string {
	return "submission"
}

// HasActiveSubscription reports whether Stripe last told us the subscription is active.
func (s *Submission) HasActiveSubscription() bool {
	return s != nil && s.SubscriptionStatus != nil && *s.SubscriptionStatus == types.SubscriptionStatusActive
}

// SubmissionColumns lists the columns admin list filters and sorting may reference.
var SubmissionColumns = []string{
	"id", "name", "email", "phone", "business_name", "website", "package",
	"status", "billing_status", "deployment_status", "revenue", "paid_at",
	"stripe_customer_id", "stripe_subscription_id", "subscription_status",
	"subscription_canceled_at", "last_invoice_date", "last_invoice_paid_at",
	"created_at", "updated_at",
}

// Column names used by partial updates.
const (
	ColStatus                 = "status"
	ColBillingStatus          = "billing_status"
	ColDeploymentStatus       = "deployment_status"
	ColSiteURL                = "site_url"
	ColRevenue                = "revenue"
	ColPaidAt                 = "paid_at"
	ColSetupFeeToken          = "setup_fee_token"
	ColSubscriptionToken      = "subscription_token"
	ColSetupFeeAmount         = "setup_fee_amount"
	ColStripeCustomerID       = "stripe_customer_id"
	ColStripeSubscriptionID   = "stripe_subscription_id"
	ColSubscriptionStatus     = "subscription_status"
	ColSubscriptionCanceledAt = "subscription_canceled_at"
	ColLastInvoiceDate        = "last_invoice_date"
	ColLastInvoicePaidAt      = "last_invoice_paid_at"
)
