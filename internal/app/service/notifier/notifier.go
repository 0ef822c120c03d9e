package notifier

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/pkg/config"
	"github.com/fatflowers/sitecraft/pkg/logctx"
)

var Module = fx.Options(
	fx.Provide(NewSender),
)

type Links struct {
	SetupFeeURL     string `json:"setup_fee_url,omitempty"`
	SubscriptionURL string `json:"subscription_url,omitempty"`
}

func (l Links) empty() bool { return l.SetupFeeURL == "" && l.SubscriptionURL == "" }

type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result reports what happened to one notification. Failures never propagate as errors.
type Result struct {
	Status    Status `json:"status"`
	Recipient string `json:"recipient,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

type Sender interface {
	SendPaymentLinks(ctx context.Context, m *models.Submission, links Links) Result
}

// NewSender picks SendGrid when an API key is configured and a log-only sender otherwise.
func NewSender(cfg *config.Config, log *zap.SugaredLogger) Sender {
	if cfg.Mail.SendgridAPIKey == "" {
		log.Warnw("mail_disabled", "detail", "payment links will only be logged")
		return &LogSender{log: log}
	}
	return &SendGridSender{
		client: sendgrid.NewSendClient(cfg.Mail.SendgridAPIKey),
		from:   mail.NewEmail(cfg.Mail.FromName, cfg.Mail.FromAddress),
		log:    log,
	}
}

type mailClient interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridSender struct {
	client mailClient
	from   *mail.Email
	log    *zap.SugaredLogger
}

func (s *SendGridSender) SendPaymentLinks(ctx context.Context, m *models.Submission, links Links) Result {
	l := logctx.FromCtx(ctx, s.log).With("submission_id", m.ID)
	if m.Email == "" || links.empty() {
		return Result{Status: StatusSkipped, Detail: "no recipient or no links"}
	}

	msg := mail.NewV3Mail()
	msg.SetFrom(s.from)
	msg.Subject = "Your website payment links"
	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(m.Name, m.Email))
	msg.AddPersonalizations(p)
	msg.AddContent(
		mail.NewContent("text/plain", plainBody(m, links)),
		mail.NewContent("text/html", htmlBody(m, links)),
	)

	resp, err := s.client.Send(msg)
	if err != nil {
		l.Errorw("payment_links_email_failed", "error", err)
		return Result{Status: StatusFailed, Recipient: m.Email, Detail: err.Error()}
	}
	if resp.StatusCode >= 300 {
		l.Errorw("payment_links_email_rejected", "status", resp.StatusCode, "body", resp.Body)
		return Result{Status: StatusFailed, Recipient: m.Email, Detail: fmt.Sprintf("sendgrid status %d", resp.StatusCode)}
	}
	l.Infow("payment_links_email_sent", "status", resp.StatusCode)
	return Result{Status: StatusSent, Recipient: m.Email}
}

// LogSender is used when mail is not configured.
type LogSender struct {
	log *zap.SugaredLogger
}

func (s *LogSender) SendPaymentLinks(ctx context.Context, m *models.Submission, links Links) Result {
	logctx.FromCtx(ctx, s.log).Infow("payment_links_email_skipped",
		"submission_id", m.ID,
		"recipient", m.Email,
		"setup_fee_url", links.SetupFeeURL != "",
		"subscription_url", links.SubscriptionURL != "",
	)
	return Result{Status: StatusSkipped, Recipient: m.Email, Detail: "mail is not configured"}
}

func greetingName(m *models.Submission) string {
	if n := strings.TrimSpace(m.Name); n != "" {
		return n
	}
	return "there"
}

func plainBody(m *models.Submission, links Links) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", greetingName(m))
	b.WriteString("Thanks for choosing us to build your website. You can complete payment here:\n\n")
	if links.SetupFeeURL != "" {
		fmt.Fprintf(&b, "One-time setup fee: %s\n", links.SetupFeeURL)
	}
	if links.SubscriptionURL != "" {
		fmt.Fprintf(&b, "Monthly plan: %s\n", links.SubscriptionURL)
	}
	b.WriteString("\nReply to this email if you have any questions.\n")
	return b.String()
}

func htmlBody(m *models.Submission, links Links) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p>", html.EscapeString(greetingName(m)))
	b.WriteString("<p>Thanks for choosing us to build your website. You can complete payment here:</p><ul>")
	if links.SetupFeeURL != "" {
		fmt.Fprintf(&b, `<li><a href="%s">Pay the one-time setup fee</a></li>`, html.EscapeString(links.SetupFeeURL))
	}
	if links.SubscriptionURL != "" {
		fmt.Fprintf(&b, `<li><a href="%s">Start the monthly plan</a></li>`, html.EscapeString(links.SubscriptionURL))
	}
	b.WriteString("</ul><p>Reply to this email if you have any questions.</p>")
	return b.String()
}
