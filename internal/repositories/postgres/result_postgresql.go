package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/celprep/practice-service/internal/models"
	"github.com/celprep/practice-service/internal/repositories"
)

type resultRepository struct {
	db *gorm.DB
}

func newResultRepository(db *gorm.DB) repositories.ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Create(ctx context.Context, result *models.SessionResult) error {
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("failed to create session result: %w", err)
	}
	return nil
}

func (r *resultRepository) GetByID(ctx context.Context, id string) (*models.SessionResult, error) {
	var result models.SessionResult
	err := r.db.WithContext(ctx).First(&result, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session result: %w", err)
	}
	return &result, nil
}

func (r *resultRepository) GetByUser(ctx context.Context, userID string, filters repositories.ResultFilters) ([]*models.SessionResult, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SessionResult{}).
		Where("user_id = ?", userID)

	if filters.Section != nil {
		query = query.Where("section = ?", *filters.Section)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count session results: %w", err)
	}

	query = query.Order("completed_at desc")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var results []*models.SessionResult
	if err := query.Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list session results: %w", err)
	}
	return results, total, nil
}
