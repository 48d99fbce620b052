package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/bootcamp-tracker/config"
	"github.com/cppla/bootcamp-tracker/models"
	"github.com/cppla/bootcamp-tracker/routes"
	"github.com/cppla/bootcamp-tracker/storage"
	"github.com/cppla/bootcamp-tracker/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db, err := config.InitDatabase(cfg, &models.User{}, &models.Submission{})
	if err != nil {
		utils.Sugar.Fatalf("init database: %v", err)
	}

	ctx := context.Background()
	store, err := buildStorage(ctx, cfg)
	if err != nil {
		utils.Sugar.Fatalf("init storage: %v", err)
	}

	cache := utils.NewCache(cfg)
	defer func() { _ = cache.Close() }()

	// Replace default console logger with file-based zap logger
	accessLog, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, utils.RollingOptionsOf(cfg))
	if err != nil {
		utils.Sugar.Warnf("gin access log falls back to application logger: %v", err)
	}

	r := routes.SetupRouter(cfg, routes.Deps{
		DB:        db,
		Store:     store,
		Cache:     cache,
		Sessions:  utils.NewSessionSigner(cfg.SessionSecret, time.Duration(cfg.SessionTTLHours)*time.Hour),
		AccessLog: accessLog,
	})

	utils.Logger.Info("starting server",
		zap.String("port", cfg.AppPort),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("storage", cfg.StorageDriver),
		zap.Bool("redis", cfg.RedisEnabled),
		zap.Bool("sessions", cfg.SessionSecret != ""),
	)
	if err := utils.Serve(ctx, utils.NewServer(":"+cfg.AppPort, r)); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

func buildStorage(ctx context.Context, cfg config.AppConfig) (storage.Store, error) {
	maxBytes := int64(cfg.MaxUploadMB) << 20
	if cfg.StorageDriver == "s3" {
		utils.Sugar.Infof("using s3 bucket %s (region %s)", cfg.S3Bucket, cfg.S3Region)
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			KeyPrefix:     cfg.S3KeyPrefix,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
			MaxBytes:      maxBytes,
		})
	}
	return storage.NewLocalStore(cfg.UploadDir, cfg.StaticPrefix, maxBytes)
}
