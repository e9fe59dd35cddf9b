package estimate

import "time"

type Config struct {
	RequestTimeout time.Duration `envconfig:"AOA_ESTIMATE_REQUEST_TIMEOUT" default:"30s"`
	MaxQueryRows   int           `envconfig:"AOA_ESTIMATE_MAX_QUERY_ROWS" default:"1000000"`
	Workers        int           `envconfig:"AOA_ESTIMATE_WORKERS"`
}
