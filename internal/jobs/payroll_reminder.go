package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/mailer"
)

// ReminderLeadTime is how far ahead of the due date admins are notified.
const ReminderLeadTime = 48 * time.Hour

// PaymentScheduleRepository reads and flags payroll schedules awaiting a reminder.
type PaymentScheduleRepository interface {
	DueReminders(ctx context.Context, before time.Time) ([]domain.PaymentSchedule, error)
	MarkReminderSent(ctx context.Context, scheduleID string, at time.Time) error
}

// PayrollNotifier delivers a payroll notice to one recipient.
type PayrollNotifier interface {
	SendPayrollNotification(ctx context.Context, r mailer.Recipient, n mailer.PayrollNotice) mailer.Result
}

// PayrollReminderWorker emails admins about payroll runs due soon.
type PayrollReminderWorker struct {
	repo       PaymentScheduleRepository
	notifier   PayrollNotifier
	recipients []mailer.Recipient
	logger     *slog.Logger
	now        func() time.Time
}

func NewPayrollReminderWorker(repo PaymentScheduleRepository, notifier PayrollNotifier, recipients []mailer.Recipient, logger *slog.Logger) *PayrollReminderWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollReminderWorker{
		repo:       repo,
		notifier:   notifier,
		recipients: recipients,
		logger:     logger.With("component", "payroll_reminder"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ProcessJobs implements the JobProcessor interface. A schedule is flagged as
// reminded once at least one recipient accepted the notice; otherwise it is
// retried on the next run.
func (w *PayrollReminderWorker) ProcessJobs(ctx context.Context) error {
	if len(w.recipients) == 0 {
		return nil
	}

	now := w.now()
	schedules, err := w.repo.DueReminders(ctx, now.Add(ReminderLeadTime))
	if err != nil {
		return fmt.Errorf("failed to fetch due payment schedules: %w", err)
	}
	if len(schedules) == 0 {
		return nil
	}

	w.logger.Info("sending payroll reminders", "schedules", len(schedules), "recipients", len(w.recipients))

	for _, s := range schedules {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.remind(ctx, s); err != nil {
			w.logger.Error("payroll reminder failed", "schedule_id", s.ID, "error", err)
		}
	}
	return nil
}

func (w *PayrollReminderWorker) remind(ctx context.Context, s domain.PaymentSchedule) error {
	notice := mailer.PayrollNotice{
		Period:  s.PaymentPeriod,
		Amount:  s.TotalAmount,
		DueDate: s.DueDate,
		Status:  s.Status,
	}

	delivered := 0
	for _, r := range w.recipients {
		res := w.notifier.SendPayrollNotification(ctx, r, notice)
		if res.Success {
			delivered++
		}
	}
	if delivered == 0 {
		return fmt.Errorf("no recipient accepted the reminder for %s", s.ID)
	}

	if err := w.repo.MarkReminderSent(ctx, s.ID, w.now()); err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	w.logger.Info("payroll reminder sent", "schedule_id", s.ID, "period", s.PaymentPeriod, "delivered", delivered)
	return nil
}
