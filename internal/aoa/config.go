package aoa

import (
	"aoa/internal/cache"
	"aoa/internal/database"
	"aoa/internal/estimate"
	"aoa/internal/setup"
	"aoa/internal/train"
)

var (
	_ setup.DatabaseConfigProvider = (*Config)(nil)
	_ setup.CacheConfigProvider    = (*Config)(nil)
)

type Config struct {
	SrvAddr  string `envconfig:"AOA_ADDR" default:":8787"`
	MaxConns int    `envconfig:"AOA_MAX_CONNS"`
	Database database.Config
	Cache    cache.Config
	Train    train.Config
	Estimate estimate.Config
}

func (c Config) DatabaseConfig() *database.Config {
	return &c.Database
}

func (c Config) CacheConfig() *cache.Config {
	return &c.Cache
}
