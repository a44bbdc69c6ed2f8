package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"portfolio/app/content"
	"portfolio/app/repositories"
	"portfolio/internal/config"
)

// openSource builds the configured content source. The returned close func
// releases the database handle and the redis client, if any.
func openSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (content.Source, func(), error) {
	var (
		source  content.Source
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Content.Source {
	case config.SourceFiles:
		source = content.NewFileSource(cfg.Content.Dir, logger)
	case config.SourceStore:
		db, err := repositories.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { db.Close() })
		source = content.NewStoreSource(repositories.NewBadgerPostRepository(db), logger)
	case config.SourceRemote:
		source = content.NewRemoteSource(content.RemoteConfig{
			BaseURL:    cfg.Remote.BaseURL,
			ProjectID:  cfg.Remote.ProjectID,
			Dataset:    cfg.Remote.Dataset,
			APIVersion: cfg.Remote.APIVersion,
			Token:      cfg.Remote.Token,
			Query:      cfg.Remote.Query,
			Timeout:    cfg.Remote.Timeout,
		}, nil, logger)
	default:
		return nil, nil, fmt.Errorf("unknown content source %q", cfg.Content.Source)
	}

	if cfg.Cache.RedisURL != "" {
		rdb, err := content.ConnectRedis(ctx, cfg.Cache.RedisURL)
		if err != nil {
			logger.Warn("snapshot cache disabled", zap.Error(err))
		} else {
			closers = append(closers, func() { rdb.Close() })
			source = content.NewCachedSource(source, content.NewRedisCache(rdb), cfg.Cache.TTL, logger)
		}
	}

	logger.Info("content source ready", zap.String("source", source.Name()))
	return source, closeAll, nil
}
