package services

import (
	"log/slog"
	"time"

	"github.com/celprep/practice-service/internal/cache"
	"github.com/celprep/practice-service/internal/catalog"
	"github.com/celprep/practice-service/internal/events"
	"github.com/celprep/practice-service/internal/repositories"
	"github.com/celprep/practice-service/internal/session"
	"github.com/celprep/practice-service/internal/utils"
)

// ServiceManager bundles the service layer for handler wiring.
type ServiceManager interface {
	Session() SessionService
	Auth() AuthService
	Content() ContentService
}

// ManagerConfig carries the dependencies and tuning knobs of the service
// layer.
type ManagerConfig struct {
	Repository repositories.Repository
	Cache      cache.CacheService
	Publisher  events.EventPublisher
	Catalog    *catalog.Catalog
	Validator  *utils.Validator
	Logger     *slog.Logger

	MicPolicy    session.MicPolicy
	TickInterval time.Duration
	TokenTTL     time.Duration
}

type serviceManager struct {
	sessionService SessionService
	authService    AuthService
	contentService ContentService
}

// NewServiceManager wires the concrete services.
func NewServiceManager(cfg ManagerConfig) ServiceManager {
	return &serviceManager{
		sessionService: NewSessionService(
			cfg.Repository,
			cfg.Catalog,
			cfg.Publisher,
			cfg.Validator,
			cfg.Logger,
			cfg.MicPolicy,
			cfg.TickInterval,
		),
		authService:    NewAuthService(cfg.Repository, cfg.Cache, cfg.Validator, cfg.Logger, cfg.TokenTTL),
		contentService: NewContentService(cfg.Repository, cfg.Validator, cfg.Logger),
	}
}

func (m *serviceManager) Session() SessionService {
	return m.sessionService
}

func (m *serviceManager) Auth() AuthService {
	return m.authService
}

func (m *serviceManager) Content() ContentService {
	return m.contentService
}
