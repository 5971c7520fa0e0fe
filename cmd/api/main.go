package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/config"
	"github.com/noah-isme/survey-go-api/internal/database"
	"github.com/noah-isme/survey-go-api/internal/handler"
	"github.com/noah-isme/survey-go-api/internal/middleware"
	"github.com/noah-isme/survey-go-api/internal/observability"
	"github.com/noah-isme/survey-go-api/internal/repository"
	"github.com/noah-isme/survey-go-api/internal/router"
	"github.com/noah-isme/survey-go-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "survey-api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to access database pool")
	}
	probes := []handler.HealthProbe{{Name: "postgres", Check: sqlDB.PingContext}}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, caching and fan-out disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
			probes = append(probes, handler.HealthProbe{
				Name:     "redis",
				Optional: true,
				Check:    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			})
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, broker fan-out disabled")
			natsConn = nil
		} else {
			defer natsConn.Close()
			probes = append(probes, handler.HealthProbe{
				Name:     "nats",
				Optional: true,
				Check: func(context.Context) error {
					if !natsConn.IsConnected() {
						return nats.ErrConnectionClosed
					}
					return nil
				},
			})
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	observability.RegisterMetrics()

	userRepo := repository.NewUserRepository(db)
	surveyRepo := repository.NewSurveyRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	competitionRepo := repository.NewCompetitionRepository(db)
	participationRepo := repository.NewParticipationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	faqRepo := repository.NewFaqRepository(db)
	supportInfoRepo := repository.NewSupportInfoRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	tokens := service.NewTokenIssuer(service.TokenConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Expiry:   cfg.JWTExpiry,
	})
	leaderboard := service.NewLeaderboardCache(redisClient, cfg.DashboardCacheTTL, logger)
	views := service.NewCacheInvalidator(redisClient, logger)

	userService := service.NewUserService(userRepo, tokens, views, validate, logger)
	surveyService := service.NewSurveyService(surveyRepo, views, validate, logger)
	questionService := service.NewQuestionService(questionRepo, surveyRepo, validate, logger)
	responseService := service.NewResponseService(responseRepo, surveyRepo, validate, logger)
	answerService := service.NewAnswerService(answerRepo, responseRepo, questionRepo, surveyRepo, validate, logger)
	competitionService := service.NewCompetitionService(competitionRepo, surveyRepo, views, validate, logger)
	winnerService := service.NewWinnerService(competitionRepo, userRepo, leaderboard, validate, logger)
	participationService := service.NewParticipationService(participationRepo, validate, logger)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, redisClient, cfg.RealtimeChannel, natsConn, validate, logger)
	faqService := service.NewFaqService(faqRepo, validate, logger)
	supportInfoService := service.NewSupportInfoService(supportInfoRepo, validate, logger)
	auditLogService := service.NewAuditLogService(auditLogRepo, logger)
	dashboardService := service.NewDashboardService(dashboardRepo, auditLogRepo, redisClient, cfg.DashboardCacheTTL, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notificationService.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:        &logger,
		AccessLogging: cfg.AppEnv == "development",
		AllowOrigins:  cfg.CORSOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		UserHandler:          handler.NewUserHandler(userService, logger),
		SurveyHandler:        handler.NewSurveyHandler(surveyService, logger),
		QuestionHandler:      handler.NewQuestionHandler(questionService, logger),
		ResponseHandler:      handler.NewResponseHandler(responseService, logger),
		AnswerHandler:        handler.NewAnswerHandler(answerService, logger),
		CompetitionHandler:   handler.NewCompetitionHandler(competitionService, winnerService, logger),
		ParticipationHandler: handler.NewParticipationHandler(participationService, logger),
		NotificationHandler:  handler.NewNotificationHandler(notificationService, logger, cfg.NotificationKeepAlive),
		FaqHandler:           handler.NewFaqHandler(faqService, logger),
		SupportInfoHandler:   handler.NewSupportInfoHandler(supportInfoService, logger),
		AuditLogHandler:      handler.NewAuditLogHandler(auditLogService, logger),
		DashboardHandler:     handler.NewDashboardHandler(dashboardService, logger),
		Auth: middleware.JWTProtected(middleware.JWTConfig{
			Secret:      cfg.JWTSecret,
			Issuer:      cfg.JWTIssuer,
			Audience:    cfg.JWTAudience,
			RequireUser: true,
		}),
		CredentialLimit: middleware.RateLimit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow),
		Metrics:         observability.MetricsHandler(),
		HealthProbes:    probes,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, cancel, logger)
}

func waitForShutdown(app *fiber.App, stopBackground context.CancelFunc, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
