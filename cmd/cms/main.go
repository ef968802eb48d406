package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/so-keyldzn/simple-cms-sub001/internal/admins"
	"github.com/so-keyldzn/simple-cms-sub001/internal/app"
	"github.com/so-keyldzn/simple-cms-sub001/internal/audit"
	audithttp "github.com/so-keyldzn/simple-cms-sub001/internal/audit/http"
	"github.com/so-keyldzn/simple-cms-sub001/internal/auth"
	"github.com/so-keyldzn/simple-cms-sub001/internal/i18n"
	"github.com/so-keyldzn/simple-cms-sub001/internal/observability"
	"github.com/so-keyldzn/simple-cms-sub001/internal/platform/cache"
	"github.com/so-keyldzn/simple-cms-sub001/internal/platform/db"
	"github.com/so-keyldzn/simple-cms-sub001/internal/rbac"
	"github.com/so-keyldzn/simple-cms-sub001/internal/shared"
	"github.com/so-keyldzn/simple-cms-sub001/internal/users"
	"github.com/so-keyldzn/simple-cms-sub001/jobs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "cms_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	messages := i18n.New()
	metrics := observability.NewMetrics()

	auditLogger := shared.NewAuditLogger(dbpool)
	usersRepo := users.NewRepository(dbpool)
	adminCache := admins.NewCache(usersRepo, logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	usersService := users.NewService(usersRepo,
		users.WithAudit(auditLogger),
		users.WithNotifier(jobClient),
		users.WithCacheRefresher(adminCache),
		users.WithLogger(logger),
	)

	rbacMiddleware := app.NewRBACMiddleware(cfg, logger, metrics, messages)

	authService := auth.NewService(auth.NewRepository(dbpool))
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, messages, adminCache)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)
	permissionsHandler := rbac.NewPermissionsHandler(logger, messages, rbacMiddleware)
	auditHandler := audithttp.NewHandler(logger, audit.NewService(audit.NewRepository(dbpool)), rbacMiddleware)
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		PermissionsHandler: permissionsHandler,
		AuditHandler:       auditHandler,
		JobHandler:         jobHandler,
		RBACMiddleware:     rbacMiddleware,
		Admins:             adminCache,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return adminCache.Run(gctx, cfg.AdminCacheRefresh)
	})
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
