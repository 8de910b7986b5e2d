package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/celprep/practice-service/internal/repositories"
)

type gormRepository struct {
	db           *gorm.DB
	userRepo     repositories.UserRepository
	questionRepo repositories.QuestionRecordRepository
	resultRepo   repositories.ResultRepository
}

// NewRepository builds the gorm-backed repository root.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:           db,
		userRepo:     newUserRepository(db),
		questionRepo: newQuestionRecordRepository(db),
		resultRepo:   newResultRepository(db),
	}
}

func (r *gormRepository) User() repositories.UserRepository {
	return r.userRepo
}

func (r *gormRepository) QuestionRecord() repositories.QuestionRecordRepository {
	return r.questionRepo
}

func (r *gormRepository) Result() repositories.ResultRepository {
	return r.resultRepo
}

func (r *gormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *gormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
