package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/config"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/database"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/hrapi"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/logging"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/mailer"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/openai"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/repository"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/service"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/storage"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/telemetry"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/vectorstore"
	"github.com/jackc/pgx/v5/pgxpool"
)

// appOptions selects which parts of the process a command needs.
type appOptions struct {
	requireDB     bool
	migrate       bool
	migrationsDir string
}

// app holds the wired collaborators shared by the daemon commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	pool    *pgxpool.Pool
	hr      *hrapi.Client
	llm     *openai.Client
	store   *vectorstore.Store
	objects *storage.S3Client
	mail    *mailer.Mailer

	chatRepo  *repository.ChatRepository
	localRepo *repository.LocalDataRepository
	adminRepo *repository.AdminRepository

	assistant *service.AssistantService
	chat      *service.ChatService
	admin     *service.AdminService
	dashboard *service.DashboardService
	loader    *service.KnowledgeLoader

	closers []func()
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts appOptions) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	if err := a.initTelemetry(); err != nil {
		logger.Warn("telemetry init failed, continuing without tracing", "error", err)
	}

	if cfg.DatabaseURL != "" {
		if err := a.initDatabase(ctx, opts); err != nil {
			return a.abort(err)
		}
	} else if opts.requireDB || cfg.UsePostgresVectors() {
		return a.abort(cfg.RequireDatabase())
	}

	a.hr = hrapi.NewClient(hrapi.Config{
		BaseURL:       cfg.APIBaseURL,
		LoginEndpoint: cfg.APILoginEndpoint,
		Email:         cfg.APIEmail,
		Password:      cfg.APIPassword,
		RoleID:        cfg.APIRoleID,
		Timeout:       cfg.APITimeout,
		CacheTTL:      cfg.APICacheTTL,
		Logger:        logger,
	})

	if cfg.HasOpenAI() {
		a.llm = openai.NewClientWithConfig(openai.Config{
			APIKey:         cfg.OpenAIAPIKey,
			EmbeddingModel: cfg.EmbeddingModel,
			ChatModel:      cfg.ChatModel,
		})
	} else {
		logger.Warn("OPENAI_API_KEY not set, knowledge search and contextual answers are disabled")
	}

	if err := a.initKnowledgeStore(ctx); err != nil {
		return a.abort(err)
	}

	if cfg.HasSMTP() {
		m, err := mailer.New(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			SSL:      cfg.SMTPSSL,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			FromName: cfg.MailFromName,
		}, logger)
		if err != nil {
			logger.Warn("mailer disabled", "error", err)
		} else {
			a.mail = m
		}
	}

	a.initServices()
	return a, nil
}

func (a *app) initTelemetry() error {
	if !a.cfg.HasSentry() {
		return nil
	}

	// 10% sampling in production, everything elsewhere
	sampleRate := 0.1
	if a.cfg.Environment == "development" {
		sampleRate = 1.0
	}

	shutdown, err := telemetry.Init(telemetry.Config{
		DSN:              a.cfg.SentryDSN,
		Environment:      a.cfg.Environment,
		TracesSampleRate: sampleRate,
		Debug:            a.cfg.Debug,
	})
	if err != nil {
		return err
	}
	a.closers = append(a.closers, shutdown)
	return nil
}

func (a *app) initDatabase(ctx context.Context, opts appOptions) error {
	pool, err := database.NewPool(ctx, database.Config{
		URL:            a.cfg.DatabaseURL,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.pool = pool
	a.closers = append(a.closers, pool.Close)
	a.logger.Info("connected to database")

	if opts.migrate {
		status, err := database.Migrate(a.cfg.DatabaseURL, opts.migrationsDir, a.logger)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		a.logger.Info("migrations complete", "version", status.Version, "applied", status.Applied)
	}

	a.chatRepo = repository.NewChatRepository(pool)
	a.localRepo = repository.NewLocalDataRepository(pool)
	a.adminRepo = repository.NewAdminRepository(pool)
	return nil
}

func (a *app) initKnowledgeStore(ctx context.Context) error {
	var backend vectorstore.Backend
	if a.cfg.UsePostgresVectors() {
		backend = repository.NewKnowledgeChunkRepository(a.pool)
	} else {
		fb, err := vectorstore.NewFileBackend(a.cfg.VectorStorePath, a.logger)
		if err != nil {
			return fmt.Errorf("failed to open vector store: %w", err)
		}
		backend = fb
	}

	var embedder vectorstore.Embedder
	if a.llm != nil {
		embedder = a.llm
	}
	a.store = vectorstore.New(embedder, backend, vectorstore.WithLogger(a.logger))

	if a.cfg.HasS3() {
		client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        a.cfg.S3Endpoint,
			Region:          a.cfg.S3Region,
			AccessKeyID:     a.cfg.S3AccessKey,
			SecretAccessKey: a.cfg.S3SecretKey,
			Bucket:          a.cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		a.objects = client
	}
	return nil
}

// initServices builds the services. Optional collaborators are only assigned
// to interface fields when present so the services see a nil interface.
func (a *app) initServices() {
	var objects service.ObjectSource
	if a.objects != nil {
		objects = a.objects
	}
	a.loader = service.NewKnowledgeLoader(a.store, objects, service.KnowledgeLoaderConfig{
		DocsDir:  a.cfg.DocsDir,
		S3Prefix: a.cfg.S3Prefix,
	}, a.logger)

	var llm service.ChatCompleter
	if a.llm != nil {
		llm = a.llm
	}
	retrieval := service.NewRetrievalService(a.store, llm, a.logger)

	deps := service.AssistantDeps{
		HR:        a.hr,
		Responder: retrieval,
		Logger:    a.logger,
	}
	if a.mail != nil {
		deps.Mailer = a.mail
	}
	if a.pool != nil {
		deps.Local = a.localRepo
		deps.Sessions = a.chatRepo
	}
	a.assistant = service.NewAssistantService(deps)

	if a.pool == nil {
		return
	}
	a.chat = service.NewChatService(a.chatRepo, repository.NewTxRunner(a.pool), a.assistant, a.logger)
	a.admin = service.NewAdminService(a.localRepo, a.logger)
	a.dashboard = service.NewDashboardService(a.hr, a.localRepo, a.chatRepo, a.logger)
}

// reminderRecipients parses REMINDER_RECIPIENTS entries of the form
// "email" or "Name <email>".
func reminderRecipients(entries []string) []mailer.Recipient {
	recipients := make([]mailer.Recipient, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		name, addr, ok := strings.Cut(e, "<")
		if !ok {
			recipients = append(recipients, mailer.Recipient{Email: e})
			continue
		}
		recipients = append(recipients, mailer.Recipient{
			Name:  strings.TrimSpace(name),
			Email: strings.TrimSpace(strings.TrimSuffix(addr, ">")),
		})
	}
	return recipients
}

// Close releases resources in reverse order of acquisition.
// abort releases whatever newApp acquired so far and returns err.
func (a *app) abort(err error) (*app, error) {
	a.Close()
	return nil, err
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
