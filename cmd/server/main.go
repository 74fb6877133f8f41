package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"classpulse/internal/cache"
	"classpulse/internal/config"
	"classpulse/internal/jobs"
	"classpulse/internal/llm"
	"classpulse/internal/repository"
	"classpulse/internal/service"
	"classpulse/internal/transport/rest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("failed to init logger:", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	if cfg.LLMEnabled() {
		logger.Info("llm configured",
			zap.String("model", cfg.OpenAI.Model),
			zap.String("embeddingModel", cfg.OpenAI.EmbeddingModel))
	} else {
		logger.Warn("openai api key not set, llm calls will fail")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		logger.Fatal("failed to ping mongodb", zap.Error(err))
	}
	logger.Info("connected to mongodb")

	db := mongoClient.Database(cfg.Mongo.Database)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Fatal("failed to ping redis", zap.Error(err))
	}
	logger.Info("connected to redis")

	// Repositories and caches
	responseRepo := repository.NewResponseRepo(db)
	embeddingRepo := repository.NewEmbeddingRepo(db)
	analysisCache := cache.NewRedisCache(rdb)

	// LLM client and services
	llmClient := llm.NewClient(cfg.OpenAI, logger)

	sentimentSvc := service.NewSentimentService(responseRepo, llmClient, logger)
	clusterSvc := service.NewClusterService(embeddingRepo, llmClient, logger)
	insightSvc := service.NewInsightService()
	riskSvc := service.NewRiskService(sentimentSvc, logger)
	searchSvc := service.NewSearchService(embeddingRepo, llmClient, logger)
	chatSvc := service.NewChatService(embeddingRepo, llmClient, logger)

	facade := service.NewAnalysisFacade(sentimentSvc, clusterSvc, insightSvc, riskSvc, analysisCache, llmClient, logger)

	// Daily batch analysis
	jobCtx, jobCancel := context.WithCancel(ctx)
	defer jobCancel()

	dailyJob := jobs.NewDailyAnalysis(responseRepo, facade, cfg.Analysis.DefaultPeriodDays, cfg.Jobs.MaxConcurrent, logger)
	scheduler := jobs.NewScheduler(dailyJob, cfg.Jobs.DailyInterval, logger)
	scheduler.Start(jobCtx)

	// HTTP server
	router := rest.NewRouter(&rest.Container{
		Facade: facade,
		Search: searchSvc,
		Chat:   chatSvc,
		Logger: logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.HTTP.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen and serve failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	jobCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
