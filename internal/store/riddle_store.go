// Package store persists riddles and enforces the single-latest invariant.
package store

import (
	"context"
	"errors"
	"fmt"

	dbutil "github.com/riddleworks/dailyriddle/internal/db"
	"github.com/riddleworks/dailyriddle/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate adds a row lock on dialects that support it. SQLite has
// no FOR UPDATE; its single-writer transactions already serialize the
// read-modify-write.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if dbutil.IsSQLite(tx) {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// RiddleStore provides riddle persistence on top of GORM.
//
// Every write that marks a riddle as latest clears the flag on all other
// rows inside the same transaction, so readers never observe zero or two
// latest riddles once the table is non-empty.
type RiddleStore struct {
	db *gorm.DB
}

// NewRiddleStore constructs a RiddleStore.
func NewRiddleStore(db *gorm.DB) *RiddleStore {
	return &RiddleStore{db: db}
}

// Create inserts a new riddle. When isLatest is set, the latest flag is
// moved to the new row atomically.
func (s *RiddleStore) Create(ctx context.Context, question, answer string, isLatest bool) (*models.Riddle, error) {
	riddle := models.Riddle{
		Question: question,
		Answer:   answer,
		IsLatest: isLatest,
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if isLatest {
			if errClear := tx.Model(&models.Riddle{}).
				Where("is_latest = ?", true).
				Update("is_latest", false).Error; errClear != nil {
				return fmt.Errorf("store: clear latest: %w", errClear)
			}
		}
		if errCreate := tx.Create(&riddle).Error; errCreate != nil {
			return fmt.Errorf("store: create riddle: %w", errCreate)
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return &riddle, nil
}

// GetLatest returns the riddle flagged as latest, or nil when the store
// is empty.
func (s *RiddleStore) GetLatest(ctx context.Context) (*models.Riddle, error) {
	var riddle models.Riddle
	errFind := s.db.WithContext(ctx).
		Where("is_latest = ?", true).
		First(&riddle).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get latest: %w", errFind)
	}
	return &riddle, nil
}

// GetByID returns a riddle by id, or nil when absent.
func (s *RiddleStore) GetByID(ctx context.Context, id uint64) (*models.Riddle, error) {
	var riddle models.Riddle
	errFind := s.db.WithContext(ctx).First(&riddle, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get riddle %d: %w", id, errFind)
	}
	return &riddle, nil
}

// List returns riddles ordered newest first, paginated. Ties on
// created_at break by descending id so pagination stays stable.
func (s *RiddleStore) List(ctx context.Context, limit, offset int) ([]models.Riddle, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	var riddles []models.Riddle
	if errFind := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&riddles).Error; errFind != nil {
		return nil, fmt.Errorf("store: list riddles: %w", errFind)
	}
	return riddles, nil
}

// Count returns the total number of stored riddles.
func (s *RiddleStore) Count(ctx context.Context) (int64, error) {
	var total int64
	if errCount := s.db.WithContext(ctx).
		Model(&models.Riddle{}).
		Count(&total).Error; errCount != nil {
		return 0, fmt.Errorf("store: count riddles: %w", errCount)
	}
	return total, nil
}

// Rate adds one rating to a riddle and recomputes its aggregates in a
// single transaction. Returns nil when the riddle does not exist.
//
// rating is expected in [1,5]; callers validate the range, the store
// aggregates whatever it is given.
func (s *RiddleStore) Rate(ctx context.Context, id uint64, rating int) (*models.Riddle, error) {
	var updated *models.Riddle
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var riddle models.Riddle
		if errFind := lockForUpdate(tx).
			First(&riddle, id).Error; errFind != nil {
			return errFind
		}

		riddle.RatingCount++
		riddle.RatingSum += rating
		average := float64(riddle.RatingSum) / float64(riddle.RatingCount)
		riddle.AverageRating = &average

		if errUpdate := tx.Model(&riddle).Updates(map[string]any{
			"rating_count":   riddle.RatingCount,
			"rating_sum":     riddle.RatingSum,
			"average_rating": riddle.AverageRating,
		}).Error; errUpdate != nil {
			return errUpdate
		}
		updated = &riddle
		return nil
	})
	if errTx != nil {
		if errors.Is(errTx, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: rate riddle %d: %w", id, errTx)
	}
	return updated, nil
}

// Update applies a partial update to a riddle and returns the updated
// row, or nil when absent. Setting is_latest to true moves the flag the
// same way Create does.
func (s *RiddleStore) Update(ctx context.Context, id uint64, updates map[string]any) (*models.Riddle, error) {
	var updated *models.Riddle
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var riddle models.Riddle
		if errFind := lockForUpdate(tx).
			First(&riddle, id).Error; errFind != nil {
			return errFind
		}

		if setLatest, ok := updates["is_latest"].(bool); ok && setLatest {
			if errClear := tx.Model(&models.Riddle{}).
				Where("id <> ? AND is_latest = ?", id, true).
				Update("is_latest", false).Error; errClear != nil {
				return errClear
			}
		}

		if len(updates) > 0 {
			if errUpdate := tx.Model(&riddle).Updates(updates).Error; errUpdate != nil {
				return errUpdate
			}
		}

		if errReload := tx.First(&riddle, id).Error; errReload != nil {
			return errReload
		}
		updated = &riddle
		return nil
	})
	if errTx != nil {
		if errors.Is(errTx, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: update riddle %d: %w", id, errTx)
	}
	return updated, nil
}
