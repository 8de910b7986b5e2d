package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/celprep/practice-service/internal/cache"
	"github.com/celprep/practice-service/internal/models"
	"github.com/celprep/practice-service/internal/repositories"
	"github.com/celprep/practice-service/internal/utils"
)

// currentUserKeyPrefix namespaces the signed-in-user records in Redis.
const currentUserKeyPrefix = "celprep:current_user:"

// ===== REQUEST/RESPONSE STRUCTS =====

type SignUpRequest struct {
	FullName string `json:"full_name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Plan     string `json:"plan" validate:"omitempty,oneof=free standard premium"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignInResult carries the opaque token the client presents on later
// requests plus the signed-in user record.
type SignInResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// currentUserRecord is the flat JSON document cached per token.
type currentUserRecord struct {
	UserID   string          `json:"user_id"`
	Email    string          `json:"email"`
	FullName string          `json:"full_name"`
	Role     models.UserRole `json:"role"`
	SignedIn time.Time       `json:"signed_in"`
}

// ===== SERVICE INTERFACE =====

// AuthService is the mock account flow of the practice simulator. Passwords
// are compared as stored and tokens are unsigned random identifiers; there
// is deliberately no real credential security here.
type AuthService interface {
	SignUp(ctx context.Context, req *SignUpRequest) (*models.User, error)
	SignIn(ctx context.Context, req *SignInRequest) (*SignInResult, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)
	SignOut(ctx context.Context, token string) error
	SignOutAll(ctx context.Context) error
}

type authService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	validator *utils.Validator
	logger    *slog.Logger
	tokenTTL  time.Duration
}

// NewAuthService creates a new auth service with its dependencies
func NewAuthService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	validator *utils.Validator,
	logger *slog.Logger,
	tokenTTL time.Duration,
) AuthService {
	return &authService{
		repo:      repo,
		cache:     cacheService,
		validator: validator,
		logger:    logger,
		tokenTTL:  tokenTTL,
	}
}

func (s *authService) SignUp(ctx context.Context, req *SignUpRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email availability: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	plan := req.Plan
	if plan == "" {
		plan = "free"
	}
	user := &models.User{
		ID:       uuid.New().String(),
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.RoleLearner,
		Plan:     plan,
		IsActive: true,
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User signed up", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (s *authService) SignIn(ctx context.Context, req *SignInRequest) (*SignInResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	// Mock credential check: stored value equality, nothing hashed.
	if user.Password != req.Password {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.repo.User().Update(ctx, user); err != nil {
		s.logger.Warn("Failed to record last login", "user_id", user.ID, "error", err)
	}

	token := uuid.New().String()
	record := currentUserRecord{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		SignedIn: now,
	}
	if err := s.cache.Set(ctx, currentUserKeyPrefix+token, record, s.tokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store signed-in user: %w", err)
	}

	s.logger.Info("User signed in", "user_id", user.ID)
	return &SignInResult{Token: token, User: user}, nil
}

func (s *authService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	var record currentUserRecord
	if err := s.cache.Get(ctx, currentUserKeyPrefix+token, &record); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to read signed-in user: %w", err)
	}

	user, err := s.repo.User().GetByID(ctx, record.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

func (s *authService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.cache.Delete(ctx, currentUserKeyPrefix+token)
}

// SignOutAll invalidates every outstanding token at once. Admin escape hatch
// for rotating the whole signed-in population, e.g. after reseeding the mock
// user table.
func (s *authService) SignOutAll(ctx context.Context) error {
	if err := s.cache.DeletePattern(ctx, currentUserKeyPrefix+"*"); err != nil {
		return fmt.Errorf("failed to invalidate signed-in users: %w", err)
	}
	s.logger.Info("All user sessions invalidated")
	return nil
}
