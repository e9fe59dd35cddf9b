package database

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"aoa/internal/logging"
)

type DB struct {
	DB *bolt.DB
}

func NewFromEnv(ctx context.Context, config *Config) (*DB, error) {
	logger := logging.FromContext(ctx)
	logger.Infof("opening database %s", config.FileName)

	db, err := bolt.Open(config.FileName, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &DB{DB: db}, nil
}

func (db *DB) Close(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	logger.Infof("closing database")

	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	return nil
}
