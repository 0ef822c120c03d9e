package types

// SubmissionStatus is the lead lifecycle stage. It only moves forward.
type SubmissionStatus string

const (
	SubmissionStatusNew       SubmissionStatus = "NEW"
	SubmissionStatusContacted SubmissionStatus = "CONTACTED"
	SubmissionStatusPaid      SubmissionStatus = "PAID"
)

var submissionStatusRank = map[SubmissionStatus]int{
	SubmissionStatusNew:       0,
	SubmissionStatusContacted: 1,
	SubmissionStatusPaid:      2,
}

func (s SubmissionStatus) Valid() bool {
	_, ok := submissionStatusRank[s]
	return ok
}

// Before reports whether s comes strictly earlier than other in the lead lifecycle.
func (s SubmissionStatus) Before(other SubmissionStatus) bool {
	return submissionStatusRank[s] < submissionStatusRank[other]
}

type BillingStatus string

const (
	BillingStatusPending   BillingStatus = "PENDING"
	BillingStatusPaid      BillingStatus = "PAID"
	BillingStatusOverdue   BillingStatus = "OVERDUE"
	BillingStatusCancelled BillingStatus = "CANCELLED"
)

// SubscriptionStatus mirrors the Stripe subscription status values we act on.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

type DeploymentStatus string

const (
	DeploymentStatusNotStarted DeploymentStatus = "NOT_STARTED"
	DeploymentStatusInProgress DeploymentStatus = "IN_PROGRESS"
	DeploymentStatusDeployed   DeploymentStatus = "DEPLOYED"
)

func (s DeploymentStatus) Valid() bool {
	switch s {
	case DeploymentStatusNotStarted, DeploymentStatusInProgress, DeploymentStatusDeployed:
		return true
	}
	return false
}

// ChangeReason is recorded on every submission_log row.
type ChangeReason string

const (
	ChangeReasonIntake             ChangeReason = "intake"
	ChangeReasonStatusUpdate       ChangeReason = "status_update"
	ChangeReasonDeploymentUpdate   ChangeReason = "deployment_update"
	ChangeReasonTokenGenerated     ChangeReason = "token_generated"
	ChangeReasonCheckoutCompleted  ChangeReason = "checkout_completed"
	ChangeReasonInvoicePaid        ChangeReason = "invoice_paid"
	ChangeReasonInvoiceFailed      ChangeReason = "invoice_payment_failed"
	ChangeReasonSubscriptionDelete ChangeReason = "subscription_deleted"
)

// TokenKind selects which capability token an admin regenerates.
type TokenKind string

const (
	TokenKindSetupFee     TokenKind = "setup_fee"
	TokenKindSubscription TokenKind = "subscription"
)
