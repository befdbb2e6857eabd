package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/hrapi"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/mailer"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/openai"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/report"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/telemetry"
)

// Intent names the handler an admin message is routed to.
type Intent string

const (
	IntentPayroll   Intent = "payroll"
	IntentDatabase  Intent = "database"
	IntentProfile   Intent = "profile"
	IntentEmail     Intent = "email"
	IntentAnalytics Intent = "analytics"
	IntentGeneral   Intent = "general"
)

type route struct {
	intent   Intent
	keywords []string
}

// routes is evaluated top to bottom; the first route with a keyword contained
// in the lowercased message wins.
var routes = []route{
	{IntentPayroll, []string{"payment", "salary", "salaries", "payroll", "reminder", "due", "pay"}},
	{IntentDatabase, []string{"database", "query", "search", "filter", "worker", "workers", "employee", "employees",
		"job seeker", "job seekers", "employer", "employers", "find", "list", "show me", "how many", "profile"}},
	{IntentProfile, []string{"incomplete", "profile completion", "completion", "send reminder", "email reminder",
		"remind", "profile", "complete", "finish"}},
	{IntentEmail, []string{"email", "emails", "gmail", "inbox", "categorize", "category", "draft", "reply", "respond"}},
	{IntentAnalytics, []string{"analytics", "report", "insight", "insights", "dashboard", "metric", "metrics",
		"statistics", "stats", "performance", "trends", "analysis"}},
}

// Classify maps a message to an intent by keyword. Messages matching no
// route are IntentGeneral.
func Classify(message string) Intent {
	msg := strings.ToLower(message)
	for _, r := range routes {
		for _, kw := range r.keywords {
			if strings.Contains(msg, kw) {
				return r.intent
			}
		}
	}
	return IntentGeneral
}

// HRDataSource fetches live records from the HR platform.
type HRDataSource interface {
	GetPayrollData(ctx context.Context, opts hrapi.FetchOptions) ([]domain.PayrollRecord, error)
	GetAllJobSeekers(ctx context.Context, opts hrapi.FetchOptions) ([]domain.JobSeeker, error)
	GetIncompleteProfiles(ctx context.Context, opts hrapi.FetchOptions) ([]domain.IncompleteProfile, error)
}

// LocalFallbackStore serves reporting data when the HR platform is down.
type LocalFallbackStore interface {
	PendingPaymentSchedules(ctx context.Context, limit int) ([]domain.PaymentSchedule, error)
	EmployeeStats(ctx context.Context) (domain.EmployeeStats, error)
}

// ReminderSender delivers profile completion reminders.
type ReminderSender interface {
	SendProfileReminder(ctx context.Context, r mailer.Recipient, completion int, missing []string) mailer.Result
}

// ContextualResponder answers open questions with a language model.
type ContextualResponder interface {
	GenerateContextualResponse(ctx context.Context, userMessage string, history []openai.ChatTurn, userCtx UserContext) (string, error)
}

// SessionStore reads conversation history and records session context.
type SessionStore interface {
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error)
	MergeContext(ctx context.Context, sessionID string, updates map[string]any) error
}

// CampaignConfig paces reminder campaigns.
type CampaignConfig struct {
	BatchSize  int
	SendDelay  time.Duration
	BatchDelay time.Duration
}

func DefaultCampaignConfig() CampaignConfig {
	return CampaignConfig{BatchSize: 10, SendDelay: 500 * time.Millisecond, BatchDelay: 2 * time.Second}
}

const (
	historyLimit       = 20
	localScheduleLimit = 5
)

// AssistantDeps wires the collaborators of AssistantService. Only HR is
// required; missing collaborators disable the features that use them.
type AssistantDeps struct {
	HR        HRDataSource
	Local     LocalFallbackStore
	Mailer    ReminderSender
	Responder ContextualResponder
	Sessions  SessionStore
	Logger    *slog.Logger
}

type request struct {
	message   string
	sessionID string
	userID    string
}

type handlerFunc func(ctx context.Context, req request) (domain.Reply, error)

// AssistantService routes admin messages to specialized handlers.
type AssistantService struct {
	hr        HRDataSource
	local     LocalFallbackStore
	mailer    ReminderSender
	responder ContextualResponder
	sessions  SessionStore
	logger    *slog.Logger
	campaign  CampaignConfig
	handlers  map[Intent]handlerFunc

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewAssistantService(deps AssistantDeps) *AssistantService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &AssistantService{
		hr:        deps.HR,
		local:     deps.Local,
		mailer:    deps.Mailer,
		responder: deps.Responder,
		sessions:  deps.Sessions,
		logger:    logger.With("component", "assistant"),
		campaign:  DefaultCampaignConfig(),
		now:       time.Now,
		sleep:     sleepContext,
	}
	s.handlers = map[Intent]handlerFunc{
		IntentPayroll:   s.handlePayroll,
		IntentDatabase:  s.handleDatabase,
		IntentProfile:   s.handleProfileReminders,
		IntentEmail:     s.handleEmail,
		IntentAnalytics: s.handleAnalytics,
		IntentGeneral:   s.handleGeneral,
	}
	return s
}

// SetCampaignConfig overrides reminder campaign pacing.
func (s *AssistantService) SetCampaignConfig(cfg CampaignConfig) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultCampaignConfig().BatchSize
	}
	s.campaign = cfg
}

// ProcessAdminMessage classifies message and returns the handler's reply.
// It never fails: handler errors and panics become ErrorReply.
func (s *AssistantService) ProcessAdminMessage(ctx context.Context, message, sessionID, userID string) (reply domain.Reply) {
	intent := Classify(message)

	ctx, span := telemetry.StartSpan(ctx, "assistant.process", telemetry.SpanAttributes{
		SessionID: sessionID,
		UserID:    userID,
		Intent:    string(intent),
		Operation: "process_admin_message",
	})
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("handler %s panicked: %v", intent, r)
			span.SetError(err)
			s.reportFailure(ctx, intent, sessionID, err)
			reply = domain.TextReply(ErrorReply)
		}
	}()

	telemetry.AddBreadcrumb(ctx, "assistant", "dispatch "+string(intent))
	s.logger.Info("processing admin message", "intent", intent, "session_id", sessionID, "user_id", userID)

	reply, err := s.handlers[intent](ctx, request{message: message, sessionID: sessionID, userID: userID})
	if err != nil {
		span.SetError(err)
		s.reportFailure(ctx, intent, sessionID, err)
		return domain.TextReply(ErrorReply)
	}

	s.rememberIntent(ctx, sessionID, intent)
	return reply
}

func (s *AssistantService) reportFailure(ctx context.Context, intent Intent, sessionID string, err error) {
	s.logger.Error("admin message processing failed", "intent", intent, "session_id", sessionID, "error", err)
	telemetry.CaptureError(ctx, err)
}

func (s *AssistantService) rememberIntent(ctx context.Context, sessionID string, intent Intent) {
	if s.sessions == nil || sessionID == "" {
		return
	}
	err := s.sessions.MergeContext(ctx, sessionID, map[string]any{
		"last_intent":     string(intent),
		"last_message_at": s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		s.logger.Warn("failed to update session context", "session_id", sessionID, "error", err)
	}
}

func (s *AssistantService) handlePayroll(ctx context.Context, _ request) (domain.Reply, error) {
	telemetry.AddBreadcrumb(ctx, "hrapi", "fetch payroll")
	records, err := s.hr.GetPayrollData(ctx, hrapi.FetchOptions{UseCache: false})
	if err != nil {
		s.logger.Warn("payroll fetch failed, using local data", "error", err)
		return s.localPayroll(ctx), nil
	}
	if len(records) == 0 {
		return domain.Reply{Message: report.NoPayrollData(), Type: domain.ReplyTypePaymentReminder}, nil
	}

	analysis := report.AnalyzePayroll(records, s.now())
	return domain.Reply{Message: report.Payroll(analysis), Type: domain.ReplyTypePaymentReminder}, nil
}

func (s *AssistantService) localPayroll(ctx context.Context) domain.Reply {
	if s.local == nil {
		return domain.TextReply(payrollUnavailableReply)
	}
	schedules, err := s.local.PendingPaymentSchedules(ctx, localScheduleLimit)
	if err != nil {
		s.logger.Error("local payroll fallback failed", "error", err)
		return domain.TextReply(payrollUnavailableReply)
	}
	if len(schedules) == 0 {
		return domain.Reply{Message: report.LocalPayrollEmpty(), Type: domain.ReplyTypePaymentReminder}
	}
	return domain.Reply{Message: report.LocalPayroll(schedules[0], s.now()), Type: domain.ReplyTypePaymentReminder}
}

func (s *AssistantService) handleDatabase(ctx context.Context, _ request) (domain.Reply, error) {
	telemetry.AddBreadcrumb(ctx, "hrapi", "fetch job seekers")
	seekers, err := s.hr.GetAllJobSeekers(ctx, hrapi.FetchOptions{UseCache: false})
	if err != nil {
		s.logger.Warn("job seeker fetch failed, using local data", "error", err)
		return s.localEmployees(ctx), nil
	}
	if len(seekers) == 0 {
		return domain.Reply{Message: report.NoJobSeekerData(), Type: domain.ReplyTypeDatabaseQuery}, nil
	}

	analysis := report.AnalyzeJobSeekers(seekers)
	return domain.Reply{Message: report.JobSeekers(analysis), Type: domain.ReplyTypeDatabaseQuery}, nil
}

func (s *AssistantService) localEmployees(ctx context.Context) domain.Reply {
	if s.local == nil {
		return domain.TextReply(databaseUnavailableReply)
	}
	stats, err := s.local.EmployeeStats(ctx)
	if err != nil {
		s.logger.Error("local employee fallback failed", "error", err)
		return domain.TextReply(databaseUnavailableReply)
	}
	return domain.Reply{Message: report.LocalEmployees(stats), Type: domain.ReplyTypeDatabaseQuery}
}

func (s *AssistantService) handleProfileReminders(ctx context.Context, req request) (domain.Reply, error) {
	telemetry.AddBreadcrumb(ctx, "hrapi", "fetch incomplete profiles")
	profiles, err := s.hr.GetIncompleteProfiles(ctx, hrapi.FetchOptions{UseCache: false})
	if err != nil {
		s.logger.Error("incomplete profile fetch failed", "error", err)
		return domain.TextReply(profileUnavailableReply), nil
	}
	if len(profiles) == 0 {
		return domain.Reply{Message: report.NoIncompleteProfiles(), Type: domain.ReplyTypeEmailSummary}, nil
	}

	if !wantsSend(req.message) {
		return domain.Reply{Message: report.ProfileAnalysis(profiles), Type: domain.ReplyTypeEmailSummary}, nil
	}

	if s.mailer == nil {
		return domain.Reply{}, domain.ErrMailerNotConfigured
	}
	sent, failed := s.runCampaign(ctx, profiles)
	return domain.Reply{Message: report.CampaignResult(sent, failed, profiles), Type: domain.ReplyTypeEmailSummary}, nil
}

func wantsSend(message string) bool {
	msg := strings.ToLower(message)
	return strings.Contains(msg, "send") || strings.Contains(msg, "email")
}

// runCampaign emails every profile in batches. Cancelling ctx stops the
// campaign; profiles not reached are counted as neither sent nor failed.
func (s *AssistantService) runCampaign(ctx context.Context, profiles []domain.IncompleteProfile) (sent, failed int) {
	s.logger.Info("sending profile completion reminders", "count", len(profiles))
	size := s.campaign.BatchSize

	for start := 0; start < len(profiles); start += size {
		end := min(start+size, len(profiles))

		for _, p := range profiles[start:end] {
			res := s.mailer.SendProfileReminder(ctx, mailer.Recipient{Email: p.Email, Name: p.FullName}, p.Completion, p.MissingFields)
			if res.Success {
				sent++
			} else {
				failed++
			}
			if err := s.sleep(ctx, s.campaign.SendDelay); err != nil {
				s.logger.Warn("reminder campaign cancelled", "sent", sent, "failed", failed)
				return sent, failed
			}
		}

		if end < len(profiles) {
			if err := s.sleep(ctx, s.campaign.BatchDelay); err != nil {
				s.logger.Warn("reminder campaign cancelled", "sent", sent, "failed", failed)
				return sent, failed
			}
		}
	}

	s.logger.Info("reminder campaign completed", "sent", sent, "failed", failed)
	return sent, failed
}

func (s *AssistantService) handleEmail(context.Context, request) (domain.Reply, error) {
	return domain.Reply{Message: report.EmailGuidance(), Type: domain.ReplyTypeEmailSummary}, nil
}

func (s *AssistantService) handleAnalytics(context.Context, request) (domain.Reply, error) {
	return domain.Reply{Message: report.AnalyticsGuidance(), Type: domain.ReplyTypeAnalytics}, nil
}

func (s *AssistantService) handleGeneral(ctx context.Context, req request) (domain.Reply, error) {
	if s.responder == nil {
		return domain.TextReply(GreetingFallback), nil
	}

	answer, err := s.responder.GenerateContextualResponse(ctx, req.message, s.history(ctx, req.sessionID, req.message), UserContext{})
	if err != nil {
		s.logger.Error("admin response generation failed", "error", err)
		return domain.TextReply(GreetingFallback), nil
	}
	if strings.TrimSpace(answer) == "" {
		return domain.TextReply(GreetingFallback), nil
	}
	return domain.TextReply(answer), nil
}

// history returns prior turns of the session. The current message is
// dropped when it was already persisted as the latest entry.
func (s *AssistantService) history(ctx context.Context, sessionID, current string) []openai.ChatTurn {
	if s.sessions == nil || sessionID == "" {
		return nil
	}
	msgs, err := s.sessions.RecentMessages(ctx, sessionID, historyLimit)
	if err != nil {
		s.logger.Warn("failed to load session history", "session_id", sessionID, "error", err)
		return nil
	}
	if n := len(msgs); n > 0 && msgs[n-1].Sender == domain.SenderUser && msgs[n-1].Message == current {
		msgs = msgs[:n-1]
	}
	turns := make([]openai.ChatTurn, 0, len(msgs))
	for _, m := range msgs {
		role := openai.RoleUser
		if m.Sender == domain.SenderAssistant {
			role = openai.RoleAssistant
		}
		turns = append(turns, openai.ChatTurn{Role: role, Content: m.Message})
	}
	return turns
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
