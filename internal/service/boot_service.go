package service

import (
	"context"

	"homelist/internal/repository"
)

const startupCounter = "startup"

// BootService counts how many times the server has started against this database.
type BootService interface {
	RecordStartup(ctx context.Context) (int64, error)
	StartupCount(ctx context.Context) (int64, error)
}

type bootService struct {
	counters repository.CounterRepository
}

func NewBootService(counters repository.CounterRepository) BootService {
	return &bootService{counters: counters}
}

func (s *bootService) RecordStartup(ctx context.Context) (int64, error) {
	return s.counters.Increment(ctx, startupCounter)
}

func (s *bootService) StartupCount(ctx context.Context) (int64, error) {
	return s.counters.Get(ctx, startupCounter)
}
