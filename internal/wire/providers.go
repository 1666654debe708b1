package wire

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"anonboard/internal/admin"
	"anonboard/internal/cache"
	"anonboard/internal/common"
	"anonboard/internal/config"
	"anonboard/internal/dbmongo"
	"anonboard/internal/media"
	"anonboard/internal/message"
	"anonboard/internal/moderation"
	"anonboard/internal/story"
)

// Application is everything cmd/board needs to serve the API.
type Application struct {
	Config   *config.Config
	Logger   *zap.Logger
	Mongo    *dbmongo.MongoClient
	Messages *message.Handler
	Stories  *story.Handler
	Admin    *admin.Handler
	Media    *media.HTTPServer
	Story    story.Service
}

func ProvideConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	return common.NewLogger(cfg.Server.Environment, cfg.Logging.Level)
}

// ProvideMongo connects and creates the indexes. The logger argument only
// orders construction so the global zap logger is installed first.
func ProvideMongo(cfg *config.Config, logger *zap.Logger) (*dbmongo.MongoClient, func(), error) {
	mc, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := mc.EnsureIndexes(ctx); err != nil {
		_ = mc.Close(context.Background())
		return nil, nil, err
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mc.Close(ctx); err != nil {
			logger.Warn("MongoDB disconnect failed", zap.Error(err))
		}
	}
	return mc, cleanup, nil
}

func ProvideDatabase(mc *dbmongo.MongoClient) *mongo.Database {
	return mc.Database
}

// ProvideCategoryCache returns a nil cache when Redis is not configured or
// cannot be reached; the board then reads categories straight from MongoDB.
func ProvideCategoryCache(cfg *config.Config, logger *zap.Logger) (common.CategoryCache, func()) {
	if cfg.Redis.Addr == "" {
		return nil, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rc, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CategoryTTL)
	if err != nil {
		logger.Warn("Redis unavailable, category cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		return nil, func() {}
	}
	logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	return rc, func() {
		if err := rc.Close(); err != nil {
			logger.Warn("Redis close failed", zap.Error(err))
		}
	}
}

func ProvideMediaStorage(mc *dbmongo.MongoClient) *dbmongo.MediaStorage {
	return dbmongo.NewMediaStorage(mc)
}

// ProvideImageStore picks GridFS or S3 for story images.
func ProvideImageStore(cfg *config.Config, gridfs *dbmongo.MediaStorage) (common.ImageStore, error) {
	if cfg.Media.Backend != "s3" {
		return gridfs, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	m := cfg.Media
	store, err := media.NewS3Store(ctx, m.S3Endpoint, m.S3AccessKey, m.S3SecretKey, m.S3Bucket, m.S3Region, m.S3PublicURL, m.S3UseSSL)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func ProvideClassifier(cfg *config.Config, logger *zap.Logger) *moderation.Classifier {
	m := cfg.Moderation
	return moderation.NewClassifier(moderation.NewOpenAILoader(m.OpenAIKey, m.OpenAIBaseURL, m.ModerationModel), m.ToxicityThreshold, logger)
}

func ProvidePipeline(cfg *config.Config, classifier *moderation.Classifier, store moderation.MessageStore, logger *zap.Logger) *moderation.Pipeline {
	m := cfg.Moderation
	return moderation.NewPipeline(
		moderation.NewValidator(m.MessageMaxLength, m.SafeDomains, nil),
		moderation.NewValidator(m.ReplyMaxLength, m.SafeDomains, nil),
		classifier,
		store,
		logger,
	)
}

func ProvideStoryService(cfg *config.Config, repo story.Repository, images common.ImageStore, logger *zap.Logger) story.Service {
	processor := media.NewProcessor(cfg.Media.MaxWidth, cfg.Media.MaxHeight, cfg.Media.MaxPixels)
	return story.NewService(repo, images, processor, story.Options{
		MaxImageBytes: cfg.Media.MaxUploadBytes,
		TTL:           cfg.Story.TTL,
	}, logger)
}

func ProvideStoryHandler(cfg *config.Config, svc story.Service, validate *common.RequestValidator, logger *zap.Logger) *story.Handler {
	return story.NewHandler(svc, validate, cfg.Media.MaxUploadBytes, logger)
}

func ProvideTokenIssuer(cfg *config.Config) *common.TokenIssuer {
	return common.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
}
