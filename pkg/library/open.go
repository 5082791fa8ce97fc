package library

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/conceptmap/pkg/config"
)

// Open returns the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.LibraryConfig, logger *log.Logger) (Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	logger.Debug("open library", "backend", cfg.Backend)

	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case config.BackendFile, "":
		store, err = NewFileStore(cfg.Dir)
	case config.BackendSQLite:
		store, err = NewSQLiteStore(cfg.SQLitePath)
	case config.BackendRedis:
		store, err = NewRedisStore(ctx, RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	case config.BackendMongo:
		store, err = NewMongoStore(ctx, MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
	default:
		return nil, fmt.Errorf("unknown library backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
