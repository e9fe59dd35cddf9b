package cache

import "time"

type Config struct {
	Addr     string        `envconfig:"AOA_CACHE_ADDR"`
	Password string        `envconfig:"AOA_CACHE_PASSWORD"`
	TTL      time.Duration `envconfig:"AOA_CACHE_TTL" default:"10m"`
}
