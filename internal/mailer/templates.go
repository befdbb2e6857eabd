package mailer

import (
	"bytes"
	"context"
	"embed"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/report"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl"))
)

const (
	ProfileReminderSubject = "⚡ Complete Your Kozi Profile Today!"
	payrollSubjectPrefix   = "💰 Payroll Update: "

	profileURL   = "https://kozi.rw/profile"
	supportEmail = "support@kozi.rw"
	financeEmail = "finance@kozi.rw"
	officeLine   = "Kigali-Kacyiru, KG 647 St | +250 788 719 678"
)

type profileReminderData struct {
	Name          string
	Completion    int
	MissingFields []string
	ProfileURL    string
	SupportEmail  string
	Address       string
	Year          int
}

// ProfileReminder renders the profile completion reminder for r.
func (m *Mailer) ProfileReminder(r Recipient, completion int, missing []string) (Message, error) {
	data := profileReminderData{
		Name:          greetingName(r.Name),
		Completion:    completion,
		MissingFields: missing,
		ProfileURL:    profileURL,
		SupportEmail:  supportEmail,
		Address:       officeLine,
		Year:          m.now().Year(),
	}
	return render(r.Email, ProfileReminderSubject, "profile_reminder", data)
}

// PayrollNotice describes one payroll run for a notification email.
type PayrollNotice struct {
	Period  string
	Amount  float64
	DueDate time.Time
	Status  string
}

type payrollData struct {
	Name         string
	Period       string
	Amount       string
	DueDate      string
	DueDateLong  string
	Status       string
	StatusClass  string
	FinanceEmail string
	Address      string
	Year         int
}

// PayrollNotification renders the payroll notice for r.
func (m *Mailer) PayrollNotification(r Recipient, n PayrollNotice) (Message, error) {
	data := payrollData{
		Name:         greetingName(r.Name),
		Period:       n.Period,
		Amount:       report.Currency(n.Amount),
		DueDate:      report.Date(n.DueDate),
		DueDateLong:  n.DueDate.Format("January 2, 2006"),
		Status:       n.Status,
		StatusClass:  strings.ToLower(n.Status),
		FinanceEmail: financeEmail,
		Address:      officeLine,
		Year:         m.now().Year(),
	}
	return render(r.Email, payrollSubjectPrefix+n.Period, "payroll_notification", data)
}

func render(to, subject, name string, data any) (Message, error) {
	var html, text bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, name+".html.tmpl", data); err != nil {
		return Message{}, err
	}
	if err := textTemplates.ExecuteTemplate(&text, name+".txt.tmpl", data); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, HTML: html.String(), Text: text.String()}, nil
}

func greetingName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "there"
	}
	return strings.TrimSpace(name)
}

// SendProfileReminder renders and sends the profile reminder.
func (m *Mailer) SendProfileReminder(ctx context.Context, r Recipient, completion int, missing []string) Result {
	msg, err := m.ProfileReminder(r, completion, missing)
	if err != nil {
		return Result{Recipient: r.Email, Error: err.Error()}
	}
	return m.Send(ctx, msg)
}

// SendPayrollNotification renders and sends a payroll notice.
func (m *Mailer) SendPayrollNotification(ctx context.Context, r Recipient, n PayrollNotice) Result {
	msg, err := m.PayrollNotification(r, n)
	if err != nil {
		return Result{Recipient: r.Email, Error: err.Error()}
	}
	return m.Send(ctx, msg)
}
