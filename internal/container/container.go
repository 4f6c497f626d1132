package container

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/saulo-duarte/quizmaker/internal/aiquiz"
	"github.com/saulo-duarte/quizmaker/internal/cache"
	"github.com/saulo-duarte/quizmaker/internal/category"
	"github.com/saulo-duarte/quizmaker/internal/config"
	"github.com/saulo-duarte/quizmaker/internal/quiz"
	"github.com/saulo-duarte/quizmaker/internal/router"
)

const cacheKeyPrefix = "quizmaker:"

type Container struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  cache.Cache

	CategoryContainer *category.Container
	QuizContainer     *quiz.QuizContainer
	AIQuizContainer   *aiquiz.AIQuizContainer
}

// New connects the store and the cache and wires every feature package.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	log := config.WithContext(ctx)

	db, err := config.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			_ = config.Close(db)
			return nil, err
		}
	}

	var c cache.Cache
	if cfg.RedisAddr != "" {
		c, err = cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cacheKeyPrefix)
		if err != nil {
			_ = config.Close(db)
			return nil, err
		}
		log.WithField("addr", cfg.RedisAddr).Info("Using redis cache")
	} else {
		c = cache.NewMemory()
		log.Info("Using in-memory cache")
	}

	provider, err := aiquiz.NewProvider(ctx, cfg)
	if err != nil {
		_ = c.Close()
		_ = config.Close(db)
		return nil, err
	}

	categoryContainer := category.NewContainer(db, cfg.StoreTimeout)
	quizContainer := quiz.NewQuizContainer(db, categoryContainer.Resolver, c, cfg.StoreTimeout, cfg.CacheTTL)
	aiQuizContainer := aiquiz.NewAIQuizContainer(provider, cfg.GeneratorTimeout)

	return &Container{
		Config:            cfg,
		DB:                db,
		Cache:             c,
		CategoryContainer: categoryContainer,
		QuizContainer:     quizContainer,
		AIQuizContainer:   aiQuizContainer,
	}, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	models := append(category.Models(), quiz.Models()...)
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (c *Container) Router() router.RouterConfig {
	return router.RouterConfig{
		CategoryHandler:    c.CategoryContainer.Handler,
		QuizHandler:        c.QuizContainer.Handler,
		AIQuizHandler:      c.AIQuizContainer.Handler,
		CORSAllowedOrigins: c.Config.CORSAllowedOrigins,
	}
}

func (c *Container) Close() error {
	return errors.Join(c.Cache.Close(), config.Close(c.DB))
}
