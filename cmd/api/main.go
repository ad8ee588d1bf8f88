package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ChenBaiWa/studentSystem/internal/config"
	"github.com/ChenBaiWa/studentSystem/internal/database"
	"github.com/ChenBaiWa/studentSystem/internal/handler"
	"github.com/ChenBaiWa/studentSystem/internal/middleware"
	"github.com/ChenBaiWa/studentSystem/internal/models"
	"github.com/ChenBaiWa/studentSystem/internal/repository"
	"github.com/ChenBaiWa/studentSystem/internal/router"
	"github.com/ChenBaiWa/studentSystem/internal/service"
	"github.com/ChenBaiWa/studentSystem/pkg/ai"
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
		&models.User{},
		&models.Class{},
		&models.ClassMembership{},
		&models.Textbook{},
		&models.Chapter{},
		&models.ExerciseSet{},
		&models.Question{},
		&models.ExerciseAnswer{},
		&models.Assignment{},
		&models.StudentAssignment{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, overview caching disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, grading events disabled")
		} else {
			defer natsConn.Close()
		}
	}

	grader, err := ai.NewClient(ai.ClientConfig{
		APIKey:    cfg.AIAPIKey,
		BaseURL:   cfg.AIBaseURL,
		Model:     cfg.AIModel,
		MaxTokens: cfg.AIMaxTokens,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("failed to create ai client: %v", err)
	}

	gradingPool := service.NewGradingPool(cfg.GradingWorkers, cfg.GradingQueueSize, logger)
	defer gradingPool.Close()

	events := service.NewGradingEventPublisher(natsConn, "", logger)

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	textbookRepo := repository.NewTextbookRepository(db)
	chapterRepo := repository.NewChapterRepository(db)
	setRepo := repository.NewExerciseSetRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewExerciseAnswerRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewStudentAssignmentRepository(db)

	gradingService := service.NewExerciseGradingService(answerRepo, questionRepo, setRepo, grader, gradingPool, events, logger)
	setService := service.NewExerciseSetService(setRepo, questionRepo, chapterRepo, logger)
	textbookService := service.NewTextbookService(textbookRepo, chapterRepo, logger)
	importService := service.NewQuestionImportService(setRepo, questionRepo, grader, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, submissionRepo, classRepo, chapterRepo, logger)
	studentAssignmentService := service.NewStudentAssignmentService(assignmentRepo, submissionRepo, classRepo, userRepo, grader, events, redisClient, cfg.AssignmentCacheTTL, logger)
	classService := service.NewClassService(classRepo, logger)

	exerciseHandler := handler.NewExerciseHandler(gradingService, logger)
	exerciseSetHandler := handler.NewExerciseSetHandler(setService, importService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	studentAssignmentHandler := handler.NewStudentAssignmentHandler(studentAssignmentService, logger)
	classHandler := handler.NewClassHandler(classService, logger)
	textbookHandler := handler.NewTextbookHandler(textbookService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ExerciseHandler:          exerciseHandler,
		ExerciseSetHandler:       exerciseSetHandler,
		AssignmentHandler:        assignmentHandler,
		StudentAssignmentHandler: studentAssignmentHandler,
		ClassHandler:             classHandler,
		TextbookHandler:          textbookHandler,
		JWTMiddleware:            middleware.JWTProtected(cfg.JWTSecret),
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
