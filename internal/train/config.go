package train

import "time"

type Config struct {
	RequestTimeout time.Duration `envconfig:"AOA_TRAIN_REQUEST_TIMEOUT" default:"60s"`
	MaxRows        int           `envconfig:"AOA_TRAIN_MAX_ROWS" default:"100000"`
}
