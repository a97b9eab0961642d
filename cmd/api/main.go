package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/food-donation-service/internal/api/http"
	"github.com/spec-kit/food-donation-service/internal/api/http/handlers"
	"github.com/spec-kit/food-donation-service/internal/auth"
	"github.com/spec-kit/food-donation-service/internal/config"
	"github.com/spec-kit/food-donation-service/internal/events"
	"github.com/spec-kit/food-donation-service/internal/mailer"
	"github.com/spec-kit/food-donation-service/internal/observability"
	"github.com/spec-kit/food-donation-service/internal/persistence"
	"github.com/spec-kit/food-donation-service/internal/repository"
	"github.com/spec-kit/food-donation-service/internal/service"
	"github.com/spec-kit/food-donation-service/internal/session"
	"github.com/spec-kit/food-donation-service/internal/worker"
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
	userRepo := repository.NewUserRepository(pool)
	donationRepo := repository.NewDonationRepository(pool)
	otpRepo := repository.NewOtpRepository(pool)
	ticketStore := session.NewRedisTicketStore(redis.Client, cfg.Signup.TicketTTL())

	mail := mailer.NewResendMailer(cfg.Mailer, logger)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, userRepo)
	signupService := service.NewSignupService(*cfg, service.SignupDependencies{
		UserRepo:    userRepo,
		OtpRepo:     otpRepo,
		TicketStore: ticketStore,
		Mailer:      mail,
		Logger:      logger,
	})
	donationService := service.NewDonationService(service.DonationDependencies{
		DonationRepo: donationRepo,
		UserRepo:     userRepo,
		Dispatcher:   dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, mail, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	validate := validator.New()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Signup:         handlers.NewSignupHandler(signupService, validate),
		Users:          handlers.NewUsersHandler(authService, validate),
		Donations:      handlers.NewDonationsHandler(donationService, validate),
		Collections:    handlers.NewCollectionsHandler(donationService),
		Donors:         handlers.NewDonorsHandler(donationService, validate),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
