package database

type Config struct {
	FileName string `envconfig:"AOA_DB_FILE" default:"aoa.db"`
}
