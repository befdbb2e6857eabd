package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/cli"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/api/handlers"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/database"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/jobs"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the Kozi admin chatbot API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (default from PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("reload-knowledge", false, "Rebuild the knowledge base on startup even if it already has chunks")
	cmd.Flags().String("migrations", database.DefaultMigrationsDir, "Migrations directory")

	return cli.Require(cmd, cli.RequiresDatabase)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetString("port")
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	migrationsDir, _ := cmd.Flags().GetString("migrations")

	a, err := newApp(ctx, cfg, logger, appOptions{
		requireDB:     true,
		migrate:       !noMigrate,
		migrationsDir: migrationsDir,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	forceReload, _ := cmd.Flags().GetBool("reload-knowledge")
	go a.warmKnowledge(workerCtx, forceReload)

	var reminderWorker *jobs.Worker
	if cfg.ReminderEnabled() && a.mail != nil {
		processor := jobs.NewPayrollReminderWorker(a.localRepo, a.mail, reminderRecipients(cfg.ReminderRecipients), logger)
		reminderWorker = jobs.NewWorker("payroll_reminder", processor, cfg.ReminderInterval, jobs.WithWorkerLogger(logger))
		go reminderWorker.Start(workerCtx)
		logger.Info("payroll reminder worker started", "interval", cfg.ReminderInterval)
	}

	router := server.NewRouter(server.RouterConfig{
		AdminLookup:      a.adminRepo,
		Logger:           logger,
		HealthHandler:    handlers.NewHealthHandler(a.pool, a.hr),
		ChatHandler:      handlers.NewChatHandler(a.chat),
		AdminHandler:     handlers.NewAdminHandler(a.admin, a.dashboard),
		KnowledgeHandler: handlers.NewKnowledgeHandler(a.loader),
		HRHandler:        handlers.NewHRHandler(a.hr),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	cancelWorkers()
	if reminderWorker != nil {
		reminderWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// warmKnowledge fills the knowledge base unless it already holds chunks.
func (a *app) warmKnowledge(ctx context.Context, force bool) {
	if !force {
		n, err := a.store.Count(ctx)
		if err != nil {
			a.logger.Warn("could not count knowledge chunks", "error", err)
		} else if n > 0 {
			a.logger.Info("knowledge base already loaded", "chunks", n)
			return
		}
	}

	load := a.loader.LoadAll
	if force {
		load = a.loader.Reload
	}
	summary, err := load(ctx)
	if err != nil {
		a.logger.Error("knowledge load failed", "error", err)
		return
	}
	a.logger.Info("knowledge base loaded",
		"seed", summary.SeedDocuments,
		"local_chunks", summary.LocalChunks,
		"remote_chunks", summary.RemoteChunks,
		"failed", len(summary.Failed),
	)
}
