// Package mailer sends platform email over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/wneessen/go-mail"
)

const defaultTimeout = 15 * time.Second

type Config struct {
	Host     string
	Port     int
	SSL      bool
	Username string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
}

// Attachment is an in-memory file attached to a message.
type Attachment struct {
	Name    string
	Content []byte
}

type Message struct {
	To          string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Result reports the outcome of one delivery. Delivery failures are reported
// here rather than as errors.
type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
	Recipient string `json:"recipient"`
}

// Transport delivers composed messages.
type Transport interface {
	Send(ctx context.Context, msgs ...*mail.Msg) error
}

type smtpTransport struct {
	client *mail.Client
}

func (t *smtpTransport) Send(ctx context.Context, msgs ...*mail.Msg) error {
	return t.client.DialAndSendWithContext(ctx, msgs...)
}

func (t *smtpTransport) Verify(ctx context.Context) error {
	if err := t.client.DialWithContext(ctx); err != nil {
		return err
	}
	return t.client.Close()
}

type Mailer struct {
	transport Transport
	from      string
	fromName  string
	logger    *slog.Logger
	now       func() time.Time
	sleep     func(context.Context, time.Duration) error
}

// New builds a Mailer backed by an SMTP client.
func New(cfg Config, logger *slog.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, domain.ErrMailerNotConfigured
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
	}
	if cfg.SSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return NewWithTransport(&smtpTransport{client: client}, cfg.From, cfg.FromName, logger), nil
}

// NewWithTransport builds a Mailer around any Transport.
func NewWithTransport(t Transport, from, fromName string, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{
		transport: t,
		from:      from,
		fromName:  fromName,
		logger:    logger.With("component", "mailer"),
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// Verify dials the SMTP server when the transport supports it.
func (m *Mailer) Verify(ctx context.Context) error {
	v, ok := m.transport.(interface{ Verify(context.Context) error })
	if !ok {
		return nil
	}
	if err := v.Verify(ctx); err != nil {
		return fmt.Errorf("failed to verify smtp connection: %w", err)
	}
	return nil
}

// Send delivers msg and never returns an error; see Result.
func (m *Mailer) Send(ctx context.Context, msg Message) Result {
	result := Result{Recipient: msg.To}

	composed, err := m.compose(msg)
	if err != nil {
		result.Error = err.Error()
		m.logger.Error("email compose failed", "to", msg.To, "subject", msg.Subject, "error", err)
		return result
	}

	if err := m.transport.Send(ctx, composed); err != nil {
		result.Error = err.Error()
		m.logger.Error("email send failed", "to", msg.To, "subject", msg.Subject, "error", err)
		return result
	}

	if ids := composed.GetGenHeader(mail.HeaderMessageID); len(ids) > 0 {
		result.MessageID = ids[0]
	}
	result.Success = true
	m.logger.Info("email sent", "to", msg.To, "subject", msg.Subject, "message_id", result.MessageID)
	return result
}

func (m *Mailer) compose(msg Message) (*mail.Msg, error) {
	if strings.TrimSpace(msg.To) == "" {
		return nil, fmt.Errorf("recipient: %w", domain.ErrMissingRequiredField)
	}

	out := mail.NewMsg()
	if m.fromName != "" {
		if err := out.FromFormat(m.fromName, m.from); err != nil {
			return nil, fmt.Errorf("invalid sender: %w", err)
		}
	} else if err := out.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetMessageID()
	out.SetDate()

	switch {
	case msg.Text != "" && msg.HTML != "":
		out.SetBodyString(mail.TypeTextPlain, msg.Text)
		out.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		out.SetBodyString(mail.TypeTextHTML, msg.HTML)
	default:
		out.SetBodyString(mail.TypeTextPlain, msg.Text)
	}

	for _, a := range msg.Attachments {
		if err := out.AttachReader(a.Name, bytes.NewReader(a.Content)); err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", a.Name, err)
		}
	}
	return out, nil
}

// Recipient is one addressee of a bulk send.
type Recipient struct {
	Email string
	Name  string
}

type BulkResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// SendBulk renders and sends one message per recipient, pausing delay after
// each send. Cancelling ctx stops the run; recipients not reached are absent
// from Results.
func (m *Mailer) SendBulk(ctx context.Context, recipients []Recipient, render func(Recipient) (Message, error), delay time.Duration) BulkResult {
	out := BulkResult{Total: len(recipients), Results: make([]Result, 0, len(recipients))}

	for _, r := range recipients {
		if ctx.Err() != nil {
			break
		}

		var res Result
		msg, err := render(r)
		if err != nil {
			m.logger.Error("bulk email render failed", "recipient", r.Email, "error", err)
			res = Result{Recipient: r.Email, Error: err.Error()}
		} else {
			msg.To = r.Email
			res = m.Send(ctx, msg)
		}

		out.Results = append(out.Results, res)
		if res.Success {
			out.Successful++
		} else {
			out.Failed++
		}

		if err := m.sleep(ctx, delay); err != nil {
			break
		}
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
