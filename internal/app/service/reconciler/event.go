package reconciler

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v74"
)

const (
	EventTypeCheckoutSessionCompleted = "checkout.session.completed"
	EventTypeInvoicePaid              = "invoice.paid"
	EventTypeInvoicePaymentFailed     = "invoice.payment_failed"
	EventTypeSubscriptionDeleted      = "customer.subscription.deleted"
)

// Event is a verified provider event. The set of implementations is closed.
type Event interface {
	ID() string
	Type() string
	isEvent()
}

type envelope struct {
	id  string
	typ string
	raw json.RawMessage
}

func (e envelope) ID() string   { return e.id }
func (e envelope) Type() string { return e.typ }
func (envelope) isEvent()       {}

func (e envelope) rawData() json.RawMessage { return e.raw }

type CheckoutSessionCompleted struct {
	envelope
	SessionID string
	// SubmissionRef is metadata.submissionId as sent; SubmissionID is zero unless it parsed
	// as a positive integer.
	SubmissionRef  string
	SubmissionID   int64
	Mode           stripe.CheckoutSessionMode
	AmountTotal    int64
	CustomerID     string
	SubscriptionID string
}

// IsSubscription reports whether the session started a subscription rather than a one-time payment.
func (e *CheckoutSessionCompleted) IsSubscription() bool {
	return e.Mode == stripe.CheckoutSessionModeSubscription
}

type InvoicePaid struct {
	envelope
	InvoiceID string
	// SubscriptionID is empty for invoices that do not belong to a subscription.
	SubscriptionID string
	Created        time.Time
}

type InvoicePaymentFailed struct {
	envelope
	InvoiceID      string
	SubscriptionID string
	Created        time.Time
	// DueDate is zero when the invoice has none.
	DueDate time.Time
}

// OverdueSince is the due date, or the creation time for invoices without one.
func (e *InvoicePaymentFailed) OverdueSince() time.Time {
	if !e.DueDate.IsZero() {
		return e.DueDate
	}
	return e.Created
}

type SubscriptionDeleted struct {
	envelope
	SubscriptionID string
}

// UnknownEvent is any type the reconciler does not act on.
type UnknownEvent struct {
	envelope
}

// decodeEvent narrows a provider event into its typed variant.
func decodeEvent(ev *stripe.Event) (Event, error) {
	env := envelope{id: ev.ID, typ: string(ev.Type)}
	if ev.Data != nil {
		env.raw = ev.Data.Raw
	}
	raw := env.raw

	switch env.typ {
	case EventTypeCheckoutSessionCompleted:
		var cs stripe.CheckoutSession
		if err := unmarshalObject(raw, &cs); err != nil {
			return nil, err
		}
		ref := strings.TrimSpace(cs.Metadata["submissionId"])
		out := &CheckoutSessionCompleted{
			envelope:      env,
			SessionID:     cs.ID,
			SubmissionRef: ref,
			SubmissionID:  parseSubmissionID(ref),
			Mode:          cs.Mode,
			AmountTotal:   cs.AmountTotal,
		}
		if cs.Customer != nil {
			out.CustomerID = cs.Customer.ID
		}
		if cs.Subscription != nil {
			out.SubscriptionID = cs.Subscription.ID
		}
		return out, nil

	case EventTypeInvoicePaid:
		var inv stripe.Invoice
		if err := unmarshalObject(raw, &inv); err != nil {
			return nil, err
		}
		return &InvoicePaid{
			envelope:       env,
			InvoiceID:      inv.ID,
			SubscriptionID: invoiceSubscriptionID(&inv),
			Created:        unixTime(inv.Created),
		}, nil

	case EventTypeInvoicePaymentFailed:
		var inv stripe.Invoice
		if err := unmarshalObject(raw, &inv); err != nil {
			return nil, err
		}
		return &InvoicePaymentFailed{
			envelope:       env,
			InvoiceID:      inv.ID,
			SubscriptionID: invoiceSubscriptionID(&inv),
			Created:        unixTime(inv.Created),
			DueDate:        unixTime(inv.DueDate),
		}, nil

	case EventTypeSubscriptionDeleted:
		var sub stripe.Subscription
		if err := unmarshalObject(raw, &sub); err != nil {
			return nil, err
		}
		return &SubscriptionDeleted{envelope: env, SubscriptionID: sub.ID}, nil

	default:
		return &UnknownEvent{envelope: env}, nil
	}
}

func unmarshalObject(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty data.object", ErrInvalidPayload)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func parseSubmissionID(ref string) int64 {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// The subscription reference is either a bare id or an expanded object; stripe-go
// decodes both into a *Subscription with ID set.
func invoiceSubscriptionID(inv *stripe.Invoice) string {
	if inv.Subscription == nil {
		return ""
	}
	return inv.Subscription.ID
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
