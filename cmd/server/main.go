package main

import (
	"os"

	"github.com/classpulse/quiz-service/internal/cache"
	"github.com/classpulse/quiz-service/internal/config"
	"github.com/classpulse/quiz-service/internal/events"
	"github.com/classpulse/quiz-service/internal/handlers"
	postgresrepo "github.com/classpulse/quiz-service/internal/repositories/postgres"
	"github.com/classpulse/quiz-service/internal/services"
	"github.com/classpulse/quiz-service/internal/utils"
	"github.com/classpulse/quiz-service/internal/validator"
	"github.com/classpulse/quiz-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := pkg.Migrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	quizCache := cache.QuizCache(cache.NoopQuizCache{})
	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		quizCache = cache.NewRedisQuizCache(redisClient, logger, cfg.QuizCacheTTL)
	} else {
		logger.Warn("REDIS_URL not set, quiz cache disabled")
	}

	var publisher events.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: cfg.KafkaBrokers,
			TopicName:    cfg.KafkaTopic,
			Logger:       logger,
		})
		if err != nil {
			logger.Error("failed to create event publisher", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("KAFKA_BROKERS not set, events stay in memory")
		publisher = events.NewMockEventPublisher(logger)
	}
	defer publisher.Close()

	serviceManager := services.NewServiceManager(services.ManagerConfig{
		Repo:        postgresrepo.NewRepository(db),
		Logger:      logger,
		Validator:   validator.New(),
		Publisher:   publisher,
		QuizCache:   quizCache,
		SubmitGrace: cfg.SubmitGrace,
	})

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.RequestLogger(logger), gin.Recovery())

	handlerManager := handlers.NewHandlerManager(serviceManager, logger)
	handlerManager.SetupRoutes(router, []byte(cfg.JWTSecret))

	logger.Info("starting quiz service", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
