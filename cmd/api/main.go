package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/familyflow/familyflow-api/internal/config"
	"github.com/familyflow/familyflow-api/internal/courseconfig"
	"github.com/familyflow/familyflow-api/internal/database"
	"github.com/familyflow/familyflow-api/internal/handler"
	"github.com/familyflow/familyflow-api/internal/middleware"
	"github.com/familyflow/familyflow-api/internal/models"
	"github.com/familyflow/familyflow-api/internal/repository"
	"github.com/familyflow/familyflow-api/internal/router"
	"github.com/familyflow/familyflow-api/internal/service"
	"github.com/familyflow/familyflow-api/pkg/ai"
	cloud "github.com/familyflow/familyflow-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Subject{},
		&models.Assignment{},
		&models.WalletTransaction{},
		&models.Reward{},
		&models.RewardClaim{},
		&models.GroupReward{},
		&models.SubjectProgress{},
		&models.BadgeEarned{},
		&models.DailyActivity{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSUrl != "" {
		natsConn, err = nats.Connect(cfg.NATSUrl)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, events stay on redis only")
		} else {
			defer natsConn.Close()
		}
	}

	configStore := courseconfig.NewStore(logger)
	if err := configStore.LoadDir(cfg.CourseConfigDir); err != nil {
		logger.Warn().Err(err).Str("dir", cfg.CourseConfigDir).Msg("course configs not loaded")
	}

	var uploader service.FileUploader
	if cfg.CloudinaryCloudName != "" {
		cloudSvc, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cloudSvc
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	events := service.NewEventPublisher(redisClient, cfg.EventChannelBase, natsConn, logger)
	resolver := service.NewConfigResolver(subjectRepo, configStore, logger)

	studentService := service.NewStudentService(studentRepo, validate, logger)
	subjectService := service.NewSubjectService(subjectRepo, configStore, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, studentRepo, subjectRepo, validate, uploader, logger)
	progressService := service.NewProgressService(progressRepo, events, logger)
	completionService := service.NewCompletionService(assignmentRepo, walletRepo, resolver, progressService, events, validate, logger)
	walletService := service.NewWalletService(walletRepo, studentRepo, rewardRepo, validate, events, logger)
	rewardService := service.NewRewardService(rewardRepo, validate, logger)
	dashboardService := service.NewDashboardService(studentRepo, walletRepo, progressRepo, rewardRepo, assignmentRepo, redisClient, cfg.DashboardCacheTTL, logger)

	var assistantHandler *handler.AssistantHandler
	if cfg.OpenAIAPIKey != "" && cfg.AIProvider == "openai" {
		model, err := ai.NewOpenAIAssistant(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AssistantModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create assistant: %v", err)
		}
		assistantService := service.NewAssistantService(
			model, studentRepo, subjectRepo, assignmentRepo,
			studentService, subjectService, assignmentService, completionService,
			validate, logger,
		)
		assistantHandler = handler.NewAssistantHandler(assistantService, logger)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		StudentHandler:    handler.NewStudentHandler(studentService, dashboardService, logger),
		SubjectHandler:    handler.NewSubjectHandler(subjectService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, completionService, dashboardService, logger),
		WalletHandler:     handler.NewWalletHandler(walletService, dashboardService, logger),
		RewardHandler:     handler.NewRewardHandler(rewardService, logger),
		ProgressHandler:   handler.NewProgressHandler(progressService, logger),
		AssistantHandler:  assistantHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
