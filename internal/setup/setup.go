package setup

import (
	"context"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/kelseyhightower/envconfig"

	"aoa/internal/cache"
	"aoa/internal/database"
	"aoa/internal/logging"
	"aoa/internal/srvenv"
)

type DatabaseConfigProvider interface {
	DatabaseConfig() *database.Config
}

type CacheConfigProvider interface {
	CacheConfig() *cache.Config
}

// Setup resolves the given config struct from the environment and builds the
// server environment for the providers it implements.
func Setup(ctx context.Context, config interface{}) (*srvenv.SrvEnv, error) {
	logger := logging.FromContext(ctx)
	var serverEnvOpts []srvenv.Option
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}
	logger.Debugf("resolved config: %s", spew.Sdump(config))

	if dbConfigProvider, ok := config.(DatabaseConfigProvider); ok {
		logger.Info("configuring database")
		dbFromEnv, err := database.NewFromEnv(ctx, dbConfigProvider.DatabaseConfig())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %v", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDatabase(dbFromEnv))
	}

	if cacheConfigProvider, ok := config.(CacheConfigProvider); ok {
		cfg := cacheConfigProvider.CacheConfig()
		if cfg.Addr != "" {
			logger.Infof("configuring cache at %s", cfg.Addr)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithCache(cache.New(cfg)))
	}

	return srvenv.New(serverEnvOpts...), nil
}
