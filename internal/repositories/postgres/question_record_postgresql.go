package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/celprep/practice-service/internal/models"
	"github.com/celprep/practice-service/internal/repositories"
)

type questionRecordRepository struct {
	db *gorm.DB
}

func newQuestionRecordRepository(db *gorm.DB) repositories.QuestionRecordRepository {
	return &questionRecordRepository{db: db}
}

func (r *questionRecordRepository) Create(ctx context.Context, record *models.QuestionRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create question record: %w", err)
	}
	return nil
}

func (r *questionRecordRepository) GetByID(ctx context.Context, id uint) (*models.QuestionRecord, error) {
	var record models.QuestionRecord
	err := r.db.WithContext(ctx).First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get question record: %w", err)
	}
	return &record, nil
}

func (r *questionRecordRepository) Update(ctx context.Context, record *models.QuestionRecord) error {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to update question record: %w", err)
	}
	return nil
}

func (r *questionRecordRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.QuestionRecord{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete question record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *questionRecordRepository) List(ctx context.Context, filters repositories.QuestionRecordFilters) ([]*models.QuestionRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.QuestionRecord{})

	if filters.Section != nil {
		query = query.Where("section = ?", *filters.Section)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count question records: %w", err)
	}

	query = query.Order(orderClause(filters.SortBy, filters.SortOrder))
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var records []*models.QuestionRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list question records: %w", err)
	}
	return records, total, nil
}

func orderClause(sortBy, sortOrder string) string {
	switch sortBy {
	case "section", "updated_at", "created_at":
	default:
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	return sortBy + " " + sortOrder
}
