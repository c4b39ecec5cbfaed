package repository

import "context"

// CounterRepository stores named monotonically increasing counters.
type CounterRepository interface {
	Init(ctx context.Context) error
	Increment(ctx context.Context, name string) (int64, error)
	Get(ctx context.Context, name string) (int64, error)
}
