package repositories

import (
	"context"
	"errors"

	"github.com/celprep/practice-service/internal/models"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("record not found")

// IsNotFoundError checks if error represents a "not found" condition
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Repository is the root data-access interface.
type Repository interface {
	User() UserRepository
	QuestionRecord() QuestionRecordRepository
	Result() ResultRepository

	Ping(ctx context.Context) error
	Close() error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type QuestionRecordRepository interface {
	Create(ctx context.Context, record *models.QuestionRecord) error
	GetByID(ctx context.Context, id uint) (*models.QuestionRecord, error)
	Update(ctx context.Context, record *models.QuestionRecord) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters QuestionRecordFilters) ([]*models.QuestionRecord, int64, error)
}

type ResultRepository interface {
	Create(ctx context.Context, result *models.SessionResult) error
	GetByID(ctx context.Context, id string) (*models.SessionResult, error)
	GetByUser(ctx context.Context, userID string, filters ResultFilters) ([]*models.SessionResult, int64, error)
}

// ===== SHARED FILTER STRUCTS =====

type QuestionRecordFilters struct {
	Section   *models.SectionKind `json:"section"`
	CreatedBy *string             `json:"created_by"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
	SortBy    string              `json:"sort_by"`    // "created_at", "section"
	SortOrder string              `json:"sort_order"` // "asc", "desc"
}

type ResultFilters struct {
	Section *models.SectionKind `json:"section"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
}
