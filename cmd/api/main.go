package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/deskforge/helpdesk/internal/api/http"
	"github.com/deskforge/helpdesk/internal/api/http/handlers"
	"github.com/deskforge/helpdesk/internal/auth"
	"github.com/deskforge/helpdesk/internal/config"
	"github.com/deskforge/helpdesk/internal/events"
	"github.com/deskforge/helpdesk/internal/observability"
	"github.com/deskforge/helpdesk/internal/persistence"
	"github.com/deskforge/helpdesk/internal/repository"
	"github.com/deskforge/helpdesk/internal/service"
	"github.com/deskforge/helpdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	tenantRepo := repository.NewTenantRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	sectionRepo := repository.NewSectionRepository(pool)
	txManager := repository.NewTxManager(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		TenantRepo: tenantRepo,
		ResetRepo:  resetRepo,
		Tokens:     tokens,
		BcryptCost: cfg.Auth.BcryptCost,
		ResetTTL:   cfg.Auth.PasswordResetTTL(),
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		DepartmentRepo: departmentRepo,
		SectionRepo:    sectionRepo,
		UserRepo:       userRepo,
		HistoryRepo:    historyRepo,
		TxManager:      txManager,
		Dispatcher:     dispatcher,
	})
	analyticsService := service.NewAnalyticsService(service.AnalyticsDependencies{
		TicketRepo:     ticketRepo,
		UserRepo:       userRepo,
		DepartmentRepo: departmentRepo,
		Cache:          redis.Handle(),
		CacheTTL:       cfg.Analytics.CacheTTL(),
		Metrics:        metrics,
		Logger:         logger,
	})
	sweeperService := service.NewSweeperService(ticketRepo, cfg.Sweeper.IdleCutoff(), dispatcher, metrics, logger)
	departmentService := service.NewDepartmentService(departmentRepo, sectionRepo, userRepo)
	notificationService := service.NewNotificationService(dispatcher, cfg.Notification, logger)

	worker.StartNotificationWorker(notificationService)

	var sweeperWorker *worker.SweeperWorker
	if cfg.Sweeper.Enabled {
		sweeperWorker, err = worker.NewSweeperWorker(cfg.Sweeper, sweeperService, logger)
		if err != nil {
			logger.Fatal("failed to init sweeper worker", zap.Error(err))
		}
		sweeperWorker.Start()
	}

	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService, sweeperService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		Departments:    handlers.NewDepartmentsHandler(departmentService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if sweeperWorker != nil {
		sweeperWorker.Stop()
	}
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
