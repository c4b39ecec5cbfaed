package gormdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"homelist/internal/repository"
)

type CounterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) repository.CounterRepository {
	return &CounterRepository{db: db}
}

func (r *CounterRepository) Init(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&counterModel{}); err != nil {
		return fmt.Errorf("migrate counters table: %w", err)
	}
	return nil
}

// Increment atomically adds one to the named counter, creating it at 1.
func (r *CounterRepository) Increment(ctx context.Context, name string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := counterModel{Name: name, Value: 1, UpdatedAt: time.Now().UTC()}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{
				"value":      gorm.Expr("counters.value + 1"),
				"updated_at": row.UpdatedAt,
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		var current counterModel
		if err := tx.First(&current, "name = ?", name).Error; err != nil {
			return err
		}
		value = current.Value
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", name, err)
	}
	return value, nil
}

func (r *CounterRepository) Get(ctx context.Context, name string) (int64, error) {
	var m counterModel
	if err := r.db.WithContext(ctx).First(&m, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("load counter %s: %w", name, err)
	}
	return m.Value, nil
}
