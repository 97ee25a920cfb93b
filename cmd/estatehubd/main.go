package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/estatehub/db/migrations"
	"github.com/joseph-ayodele/estatehub/internal/common"
	"github.com/joseph-ayodele/estatehub/internal/export"
	"github.com/joseph-ayodele/estatehub/internal/guard"
	"github.com/joseph-ayodele/estatehub/internal/logging"
	"github.com/joseph-ayodele/estatehub/internal/notify"
	"github.com/joseph-ayodele/estatehub/internal/repository"
	"github.com/joseph-ayodele/estatehub/internal/server"
	"github.com/joseph-ayodele/estatehub/internal/services/profile"
	"github.com/joseph-ayodele/estatehub/internal/session"
	"github.com/joseph-ayodele/estatehub/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "estatehubd:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := common.LoadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.OTELEndpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}

	db, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer repository.Close(db, logger)

	if err := server.PingDB(ctx, db, logger, 3*time.Second); err != nil {
		return fmt.Errorf("database health: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, db, migrations.FS, ".", logger); err != nil {
			return err
		}
	}

	sessions, err := newSessionStore(ctx, cfg.Session)
	if err != nil {
		return err
	}

	var mailer notify.Mailer = notify.NewLogMailer(logger)
	if cfg.Mail.APIURL != "" {
		mailer = notify.NewHTTPMailer(cfg.Mail.APIURL, cfg.Mail.APIKey, cfg.Mail.From, cfg.Mail.Timeout, logger)
	}
	mailQueue := notify.NewQueue(mailer, logger,
		notify.WithWorkers(cfg.Mail.Workers),
		notify.WithQueueSize(cfg.Mail.QueueSize),
		notify.WithSendTimeout(cfg.Mail.Timeout),
	)

	var events notify.Publisher = notify.NopPublisher{}
	if cfg.Events.NATSURL != "" {
		nc, err := notify.ConnectNATS(cfg.Events.NATSURL, cfg.Events.SubjectPrefix, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := nc.Close(); err != nil {
				logger.Warn("closing nats", "error", err)
			}
		}()
		events = nc
	}

	svc := profile.NewService(repository.NewRepositories(db, logger), mailQueue, events, profile.Config{
		MaxResubmissions: cfg.Verification.MaxResubmissions,
		Reviewers:        cfg.Verification.Reviewers,
	}, logger)
	healthCheck := func(ctx context.Context) error {
		return repository.HealthCheck(ctx, db, 2*time.Second, logger)
	}

	gin.SetMode(gin.ReleaseMode)
	httpServer := &http.Server{
		Addr: cfg.Server.HTTPAddr,
		Handler: server.NewRouter(server.Options{
			Profiles:     svc,
			Export:       export.NewService(svc, logger),
			Sessions:     sessions,
			Guard:        guard.New(cfg.Session.LoginPath, cfg.Session.OnboardPath),
			CookieName:   cfg.Session.CookieName,
			SecureCookie: cfg.Session.OIDCIssuer != "",
			Health:       healthCheck,
			Logger:       logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer, hs := server.NewGRPCServer()
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	go server.WatchHealth(ctx, hs, healthCheck, 10*time.Second, logger)

	errCh := make(chan error, 2)
	go func() {
		logger.Info("gRPC health serving", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc serve: %w", err)
		}
	}()
	go func() {
		logger.Info("HTTP serving", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case err = <-errCh:
		logger.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("http shutdown", "error", serr)
	}
	grpcServer.GracefulStop()
	mailQueue.Shutdown(shutdownCtx)
	if serr := shutdownTracing(shutdownCtx); serr != nil {
		logger.Warn("tracing shutdown", "error", serr)
	}
	logger.Info("stopped")
	return err
}

func newSessionStore(ctx context.Context, cfg common.SessionConfig) (session.Store, error) {
	if cfg.OIDCIssuer != "" {
		return session.NewOIDCStore(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
	}
	return session.NewJWTStore(cfg.JWTSecret, "")
}

