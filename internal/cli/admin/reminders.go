package admin

import (
	"context"
	"fmt"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/cli"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/jobs"
	"github.com/spf13/cobra"
)

// RemindersCmd returns the reminders command group
func RemindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Payroll reminder emails",
	}
	cmd.AddCommand(cli.Require(&cobra.Command{
		Use:   "run",
		Short: "Send reminders for payroll runs due within 48 hours, once",
		RunE:  runReminders,
	}, cli.RequiresDatabase, cli.RequiresSMTP))
	return cmd
}

func runReminders(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(context.Background(), cfg, logger, appOptions{requireDB: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if a.mail == nil {
		return fmt.Errorf("SMTP is not configured: set SMTP_USERNAME and SMTP_PASSWORD")
	}
	recipients := reminderRecipients(cfg.ReminderRecipients)
	if len(recipients) == 0 {
		return fmt.Errorf("no reminder recipients: set REMINDER_RECIPIENTS")
	}

	worker := jobs.NewPayrollReminderWorker(a.localRepo, a.mail, recipients, logger)
	if err := worker.ProcessJobs(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Payroll reminders processed")
	return nil
}
