package repository

import (
	"context"

	"github.com/kocaeli-bel/imar-backend/internal/app/model"
	"github.com/kocaeli-bel/imar-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository reserves monotonically increasing values per scope.
// Deriving identifiers from live record counts would let two concurrent
// creators observe the same count; an in-place increment closes that race
// (the row lock is held until the transaction commits).
type SequenceRepository interface {
	Next(ctx context.Context, scope string) (int64, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context, scope string) (int64, error) {
	var value int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.NumberSequence{}).
			Where("scope = ?", scope).
			Update("value", gorm.Expr("value + 1"))
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			// First reservation for this scope. A concurrent creator may win
			// the insert, in which case increment the row it created.
			created := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&model.NumberSequence{Scope: scope, Value: 1})
			if created.Error != nil {
				return created.Error
			}
			if created.RowsAffected == 1 {
				value = 1
				return nil
			}

			res = tx.Model(&model.NumberSequence{}).
				Where("scope = ?", scope).
				Update("value", gorm.Expr("value + 1"))
			if res.Error != nil {
				return res.Error
			}
		}

		var seq model.NumberSequence
		if err := tx.Where("scope = ?", scope).First(&seq).Error; err != nil {
			return err
		}
		value = seq.Value
		return nil
	})
	if err != nil {
		logger.Error("Failed to reserve sequence value", err, map[string]interface{}{
			"scope": scope,
		})
		return 0, err
	}

	logger.Debug("Sequence value reserved", map[string]interface{}{
		"scope": scope,
		"value": value,
	})
	return value, nil
}
