package srvenv

import (
	"context"

	"aoa/internal/cache"
	"aoa/internal/database"
	datasetDB "aoa/internal/dataset/database"
)

type Option func(*SrvEnv) *SrvEnv

func New(opts ...Option) *SrvEnv {
	env := &SrvEnv{}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

type SrvEnv struct {
	database *database.DB
	datasets *datasetDB.DB
	cache    *cache.Cache
}

func (s *SrvEnv) Database() *database.DB {
	return s.database
}

func (s *SrvEnv) Datasets() *datasetDB.DB {
	return s.datasets
}

func (s *SrvEnv) Cache() *cache.Cache {
	return s.cache
}

func WithDatabase(db *database.DB) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.database = db
		s.datasets = datasetDB.New(db)
		return s
	}
}

func WithCache(c *cache.Cache) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.cache = c
		return s
	}
}

func (s *SrvEnv) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}

	if err := s.cache.Close(); err != nil {
		return err
	}
	if s.database != nil {
		return s.database.Close(ctx)
	}
	return nil
}
