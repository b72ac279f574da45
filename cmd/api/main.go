package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apihttp "github.com/civic-kit/grievance-service/internal/api/http"
	"github.com/civic-kit/grievance-service/internal/api/http/handlers"
	"github.com/civic-kit/grievance-service/internal/auth"
	"github.com/civic-kit/grievance-service/internal/config"
	"github.com/civic-kit/grievance-service/internal/events"
	"github.com/civic-kit/grievance-service/internal/mail"
	"github.com/civic-kit/grievance-service/internal/observability"
	"github.com/civic-kit/grievance-service/internal/persistence"
	"github.com/civic-kit/grievance-service/internal/repository"
	"github.com/civic-kit/grievance-service/internal/service"
	"github.com/civic-kit/grievance-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postgres, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer postgres.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, postgres.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisStore := persistence.NewRedis(cfg.Redis, logger)
	defer redisStore.Close()

	pool := postgres.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	complaintRepo := repository.NewComplaintRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	escalationRepo := repository.NewEscalationRepository(pool)
	wardRepo := repository.NewWardRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	suggestionRepo := repository.NewSuggestionRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	mailer := mail.NewSMTPMailer(cfg.Mail, logger)

	authService := service.NewAuthService(userRepo, tokens, cfg.Auth, logger)
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo:  complaintRepo,
		AssignmentRepo: assignmentRepo,
		WardRepo:       wardRepo,
		CategoryRepo:   categoryRepo,
		UserRepo:       userRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	escalationService := service.NewEscalationService(service.EscalationDependencies{
		ComplaintRepo:  complaintRepo,
		EscalationRepo: escalationRepo,
		UserRepo:       userRepo,
		Dispatcher:     dispatcher,
		Config:         cfg.Escalation,
		Logger:         logger,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		UserRepo:       userRepo,
		ComplaintRepo:  complaintRepo,
		WardRepo:       wardRepo,
		AssignmentRepo: assignmentRepo,
		EscalationRepo: escalationRepo,
		Redis:          redisStore.Client,
		AuthConfig:     cfg.Auth,
		Escalation:     cfg.Escalation,
		Logger:         logger,
	})
	suggestionService := service.NewSuggestionService(suggestionRepo, wardRepo, logger)
	notificationService := service.NewNotificationService(mailer, logger)

	worker.StartNotificationWorker(dispatcher, notificationService, logger)
	escalationWorker := worker.NewEscalationWorker(escalationService, metrics, cfg.Escalation.SweepInterval(), logger)
	escalationWorker.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.App.RequestTimeout(),
		WriteTimeout: cfg.App.RequestTimeout(),
		ErrorHandler: apihttp.NewErrorHandler(logger, metrics),
	})
	apihttp.RegisterMiddlewares(app, logger, metrics)

	authMW := auth.NewAuthMiddleware(tokens, userRepo)
	apihttp.RegisterRoutes(app, apihttp.Handlers{
		Health:      handlers.NewHealthHandler(postgres, redisStore, cfg.App.Version),
		Auth:        handlers.NewAuthHandler(authService),
		Complaints:  handlers.NewComplaintsHandler(complaintService, categoryRepo),
		Officer:     handlers.NewOfficerHandler(complaintService),
		Admin:       handlers.NewAdminHandler(adminService, complaintService, escalationService, metrics),
		Suggestions: handlers.NewSuggestionsHandler(suggestionService),
	}, authMW)

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
