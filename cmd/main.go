package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"beerme/internal/app/beerme/brewerydb"
	"beerme/internal/app/beerme/config"
	"beerme/internal/app/beerme/handler"
	"beerme/internal/app/beerme/infrastructure/messaging"
	"beerme/internal/app/beerme/processor"
	"beerme/internal/app/beerme/repository"
	"beerme/internal/app/beerme/service"
	"beerme/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init("beerme", logLevel)

	reviewStore, mentionStore, err := buildStores(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("Failed to initialize record stores")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := reviewStore.Close(ctx); err != nil {
			logger.Error().Err(err).Msg("Error closing review store")
		}
		if err := mentionStore.Close(ctx); err != nil {
			logger.Error().Err(err).Msg("Error closing mention store")
		}
	}()
	logger.Info().Str("backend", cfg.Storage.Backend).Msg("Record stores ready")

	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().Str("topic", cfg.Kafka.Topic).Msg("Initialized Kafka producer")

	catalog := brewerydb.NewClient(cfg.BreweryDB.BaseURL, cfg.BreweryDB.APIKey, cfg.BreweryDB.TimeoutSec)

	resolver := service.NewResolverService(catalog)
	reviewService := service.NewReviewService(reviewStore, kafkaProducer)
	trackerService := service.NewTrackerService(mentionStore, kafkaProducer)
	leaderboardService := service.NewLeaderboardService(reviewStore, mentionStore)

	commandHandler := handler.NewCommandHandler(
		catalog,
		resolver,
		reviewService,
		trackerService,
		leaderboardService,
		cfg.Search.Limit,
		cfg.Search.Fields,
	)

	authMiddleware := handler.NewAuthMiddleware(cfg.Auth.Token)
	webhookHandler := handler.NewWebhookHandler(commandHandler)
	router := handler.SetupRoutes(webhookHandler, authMiddleware)

	var digest *processor.DigestScheduler
	if cfg.Digest.Enabled && len(cfg.Digest.Channels) > 0 {
		digest = processor.NewDigestScheduler(leaderboardService, kafkaProducer, cfg.Digest.Channels)
		if err := digest.Start(context.Background(), cfg.Digest.Schedule); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start digest scheduler")
		}
		defer digest.Stop()
	}

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting BeerMe bot")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down BeerMe bot...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("BeerMe bot stopped gracefully")
}

// buildStores создает хранилища отзывов и упоминаний по выбранному бэкенду
func buildStores(cfg *config.Config) (repository.ReviewStore, repository.MentionStore, error) {
	switch cfg.Storage.Backend {
	case "file":
		reviews, err := repository.NewFileReviewStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		mentions, err := repository.NewFileMentionStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return reviews, mentions, nil

	case "redis":
		client, err := repository.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisReviewStore(client), repository.NewRedisMentionStore(client), nil

	case "mongo":
		client, err := connectMongoDB(cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		db := client.Database(cfg.MongoDB.Database)
		return repository.NewMongoReviewStore(db), repository.NewMongoMentionStore(db), nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func connectMongoDB(cfg config.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

		client, err = mongo.Connect(ctx, clientOptions)
		if err == nil {
			err = client.Ping(ctx, nil)
		}
		cancel()

		if err == nil {
			return client, nil
		}

		logger.Warn().Int("attempt", i+1).Err(err).Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}
