package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/celprep/practice-service/internal/cache"
	"github.com/celprep/practice-service/internal/models"
	"github.com/celprep/practice-service/internal/repositories"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockQuestionRecordRepository is a mock implementation of repositories.QuestionRecordRepository
type MockQuestionRecordRepository struct {
	mock.Mock
}

func (m *MockQuestionRecordRepository) Create(ctx context.Context, record *models.QuestionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockQuestionRecordRepository) GetByID(ctx context.Context, id uint) (*models.QuestionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionRecord), args.Error(1)
}

func (m *MockQuestionRecordRepository) Update(ctx context.Context, record *models.QuestionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockQuestionRecordRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRecordRepository) List(ctx context.Context, filters repositories.QuestionRecordFilters) ([]*models.QuestionRecord, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.QuestionRecord), args.Get(1).(int64), args.Error(2)
}

// MockResultRepository is a mock implementation of repositories.ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Create(ctx context.Context, result *models.SessionResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultRepository) GetByID(ctx context.Context, id string) (*models.SessionResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionResult), args.Error(1)
}

func (m *MockResultRepository) GetByUser(ctx context.Context, userID string, filters repositories.ResultFilters) ([]*models.SessionResult, int64, error) {
	args := m.Called(ctx, userID, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.SessionResult), args.Get(1).(int64), args.Error(2)
}

// MockRepository bundles the repository mocks behind the root interface
type MockRepository struct {
	UserRepo     *MockUserRepository
	QuestionRepo *MockQuestionRecordRepository
	ResultRepo   *MockResultRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		UserRepo:     new(MockUserRepository),
		QuestionRepo: new(MockQuestionRecordRepository),
		ResultRepo:   new(MockResultRepository),
	}
}

func (m *MockRepository) User() repositories.UserRepository {
	return m.UserRepo
}

func (m *MockRepository) QuestionRecord() repositories.QuestionRecordRepository {
	return m.QuestionRepo
}

func (m *MockRepository) Result() repositories.ResultRepository {
	return m.ResultRepo
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }

// memoryCache is an in-memory cache.CacheService for tests
type memoryCache struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.values[key] = data
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.values[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.values, key)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	for key := range c.values {
		if strings.HasPrefix(key, prefix) {
			delete(c.values, key)
		}
	}
	c.mu.Unlock()
	return nil
}
