package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bim-review-service/docs"
	"bim-review-service/internal/config"
	"bim-review-service/internal/conversion"
	"bim-review-service/internal/handlers"
	"bim-review-service/internal/logger"
	"bim-review-service/internal/metrics"
	"bim-review-service/internal/normalize"
	"bim-review-service/internal/report"
	"bim-review-service/internal/repository"
	"bim-review-service/internal/services"
	"bim-review-service/internal/storage"
	"bim-review-service/internal/storage/caches"
)

//go:generate swag init --dir ../ --generalInfo cmd/main.go --output ../docs --parseInternal

// @title BIM Review Service API
// @version 1.0
// @description Federated review of building models: load, filter, comment and export.
// @BasePath /api/review
func main() {
	cfg := InitConfig()
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Log

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	store, cached := InitContentStore(cfg, m, log)

	decoder := conversion.NewCommandDecoder(cfg.DecoderCommand, cfg.DecoderArgs, cfg.DecoderTimeout, logger.Named("decoder"))
	reviewService := services.NewReviewService(
		store,
		normalize.NewNormalizer(decoder, logger.Named("normalize")),
		report.NewExporter(cfg.ProjectName, logger.Named("report")),
		m,
		logger.Named("review"),
		services.ReviewOptions{DefaultAuthor: cfg.DefaultAuthor},
	)

	var reportService *services.ReportService
	if cfg.ReportsEnabled() {
		db := ConnectDatabase(cfg, log)
		repo := repository.NewReportRepository(db)
		MigrateDatabase(repo, log)
		reportService = services.NewReportService(reviewService, store, repo, logger.Named("reports"))
	} else {
		log.Info("no database configured, report publishing disabled")
	}

	app := handlers.NewApp(cfg.MaxUploadMB << 20)

	//Register Prometheus metrics endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	docs.SwaggerInfo.BasePath = "/api/review"
	api := app.Group("/api/review")
	handlers.RegisterRoutes(api,
		handlers.NewReviewHandler(reviewService, logger.Named("http")),
		handlers.NewReportHandler(reportService, logger.Named("http")),
		handlers.NewCacheHandler(cached, logger.Named("http")),
	)

	log.Info("Registered routes:")
	for _, r := range app.GetRoutes() {
		log.Info("route", zap.String("method", r.Method), zap.String("path", r.Path))
	}

	port := cfg.AppPort
	if port == "" {
		port = "8080"
		log.Info("Defaulting to port", zap.String("port", port))
	}
	log.Info("Server listening", zap.String("port", port))
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func InitConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		// The logger is configured from cfg, so this one goes to stderr.
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func ConnectDatabase(cfg *config.Config, log *zap.Logger) *gorm.DB {
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}
	return db
}

func MigrateDatabase(repo *repository.ReportRepositoryImpl, log *zap.Logger) {
	if err := repo.Migrate(); err != nil {
		log.Fatal("Database migration failed", zap.Error(err))
	}
}

// InitContentStore builds the configured backend wrapped with metrics and,
// for MinIO, the revision cache. The returned CachedStore is nil when no
// cache is in use.
func InitContentStore(cfg *config.Config, m *metrics.Metrics, log *zap.Logger) (storage.ContentStore, *storage.CachedStore) {
	if cfg.StorageBackend == config.BackendMemory {
		log.Warn("using in-memory content store, nothing is persisted")
		return storage.NewInstrumentedStore(storage.NewMemoryStore(), config.BackendMemory, m), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	minioClient := InitMinIOClient(ctx, cfg, log)
	backing := storage.NewInstrumentedStore(storage.NewMinioStore(minioClient, cfg.MinioBucket), config.BackendMinio, m)

	tiers := storage.Tiers{
		Memory: caches.NewMemoryCache(cfg.CacheMemoryBytes, cfg.CacheTTL, logger.Named("cache")),
	}
	fsCache, err := caches.NewFileSystemCache(filepath.Join(os.TempDir(), "bim-review-cache"), 4*cfg.CacheMemoryBytes, cfg.CacheTTL, logger.Named("cache"))
	if err != nil {
		log.Warn("file system cache disabled", zap.Error(err))
	} else {
		tiers.FileSystem = fsCache
	}
	if cfg.RedisHost != "" {
		redisClient, err := storage.NewRedisClient(ctx, cfg.RedisHost, cfg.RedisPort)
		if err != nil {
			log.Warn("redis cache disabled", zap.Error(err))
		} else {
			tiers.Redis = caches.NewRedisCache(redisClient, cfg.CacheTTL, logger.Named("cache"))
		}
	}

	cached := storage.NewCachedStore(backing, tiers, m, log)
	return cached, cached
}

func InitMinIOClient(ctx context.Context, cfg *config.Config, log *zap.Logger) *minio.Client {
	minioClient, err := storage.NewMinioClient(ctx, cfg, log)
	if err != nil {
		log.Fatal("MinIO client initialization failed", zap.Error(err))
	}
	return minioClient
}
