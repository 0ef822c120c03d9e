package reconciler

import (
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/pkg/config"
)

const testSecret = "whsec_test_secret"

func signHeader(payload []byte, secret string, at time.Time) string {
	sig := webhook.ComputeSignature(at, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(sig))
}

func newTestVerifier(secret string) *Verifier {
	cfg := &config.Config{}
	cfg.Stripe.WebhookSecret = secret
	return NewVerifier(cfg, zap.NewNop().Sugar())
}

const invoicePaidPayload = `{"id":"evt_inv_1","object":"event","type":"invoice.paid","data":{"object":{"id":"in_1","object":"invoice","subscription":"sub_1","created":1767225600}}}`

func TestVerify_ValidSignature(t *testing.T) {
	v := newTestVerifier(testSecret)
	payload := []byte(invoicePaidPayload)

	ev, err := v.Verify(payload, signHeader(payload, testSecret, time.Now()))
	require.NoError(t, err)
	paid, ok := ev.(*InvoicePaid)
	require.True(t, ok)
	require.Equal(t, "evt_inv_1", paid.ID())
	require.Equal(t, EventTypeInvoicePaid, paid.Type())
	require.Equal(t, "sub_1", paid.SubscriptionID)
	require.Equal(t, time.Unix(1767225600, 0).UTC(), paid.Created)
}

func TestVerify_MissingSignature(t *testing.T) {
	v := newTestVerifier(testSecret)
	_, err := v.Verify([]byte(invoicePaidPayload), "")
	require.ErrorIs(t, err, ErrMissingSignature)
	_, err = v.Verify([]byte(invoicePaidPayload), "   ")
	require.ErrorIs(t, err, ErrMissingSignature)
}

func TestVerify_AnyMutatedBodyByteFails(t *testing.T) {
	v := newTestVerifier(testSecret)
	payload := []byte(invoicePaidPayload)
	header := signHeader(payload, testSecret, time.Now())

	for i := range payload {
		mutated := append([]byte(nil), payload...)
		mutated[i] ^= 0x01
		_, err := v.Verify(mutated, header)
		require.ErrorIs(t, err, ErrInvalidSignature, "byte %d", i)
	}
}

func TestVerify_AnyMutatedSignatureCharFails(t *testing.T) {
	v := newTestVerifier(testSecret)
	payload := []byte(invoicePaidPayload)
	now := time.Now()
	sig := hex.EncodeToString(webhook.ComputeSignature(now, payload, testSecret))

	for i := range sig {
		b := []byte(sig)
		if b[i] == '0' {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
		header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), string(b))
		_, err := v.Verify(payload, header)
		require.ErrorIs(t, err, ErrInvalidSignature, "char %d", i)
	}
}

func TestVerify_WrongSecretAndStaleTimestamp(t *testing.T) {
	v := newTestVerifier(testSecret)
	payload := []byte(invoicePaidPayload)

	_, err := v.Verify(payload, signHeader(payload, "whsec_other", time.Now()))
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = v.Verify(payload, signHeader(payload, testSecret, time.Now().Add(-time.Hour)))
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = v.Verify(payload, "garbage")
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_NoSecretConfigured(t *testing.T) {
	v := newTestVerifier("")
	payload := []byte(invoicePaidPayload)
	_, err := v.Verify(payload, signHeader(payload, "", time.Now()))
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_AuthenticButUndecodable(t *testing.T) {
	v := newTestVerifier(testSecret)

	for _, body := range []string{
		`not json at all`,
		`{"id":"evt_x","object":"event","type":"invoice.paid","data":{"object":{"id":"in_1","created":"yesterday"}}}`,
	} {
		payload := []byte(body)
		_, err := v.Verify(payload, signHeader(payload, testSecret, time.Now()))
		require.ErrorIs(t, err, ErrInvalidPayload, body)
	}
}
