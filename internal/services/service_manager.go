package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shikshya-edu/institute-service/internal/auth"
	"github.com/shikshya-edu/institute-service/internal/cache"
	"github.com/shikshya-edu/institute-service/internal/config"
	"github.com/shikshya-edu/institute-service/internal/events"
	"github.com/shikshya-edu/institute-service/internal/repositories"
	"github.com/shikshya-edu/institute-service/internal/storage"
	"github.com/shikshya-edu/institute-service/internal/validator"
)

// ServiceManagerDeps holds everything the service layer is built from.
type ServiceManagerDeps struct {
	Repo      repositories.Repository
	Cache     *cache.CacheManager
	Tokens    *auth.TokenManager
	Publisher events.EventPublisher
	Storage   storage.Storage
	Config    *config.Config
	Logger    *slog.Logger
	Validator *validator.Validator
}

// serviceManager implements ServiceManager.
type serviceManager struct {
	deps ServiceManagerDeps

	authService         AuthService
	userService         UserService
	subjectService      SubjectService
	contactService      ContactService
	adminService        AdminService
	importExportService ImportExportService
	documentService     DocumentService

	initialized bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager with all dependencies.
func NewServiceManager(deps ServiceManagerDeps) ServiceManager {
	return &serviceManager{deps: deps}
}

// Initialize wires up all services.
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if sm.deps.Repo == nil {
		return fmt.Errorf("repository is required")
	}
	if sm.deps.Tokens == nil {
		return fmt.Errorf("token manager is required")
	}

	d := sm.deps
	sm.authService = NewAuthService(d.Repo, d.Tokens, d.Publisher, d.Logger, d.Validator)
	sm.userService = NewUserService(d.Repo, d.Storage, d.Publisher, d.Config.Upload, d.Logger, d.Validator)
	sm.subjectService = NewSubjectService(d.Repo, d.Cache, d.Publisher, d.Logger, d.Validator)
	sm.contactService = NewContactService(d.Repo, d.Publisher, d.Logger, d.Validator)
	sm.adminService = NewAdminService(d.Repo, d.Cache, d.Publisher, d.Logger, d.Validator)
	sm.importExportService = NewImportExportService(d.Repo, d.Publisher, d.Logger, d.Validator)
	sm.documentService = NewDocumentService(d.Repo, d.Storage, d.Publisher, d.Config.Upload, d.Logger, d.Validator)

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized")

	return nil
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.authService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.userService
}

func (sm *serviceManager) Subject() SubjectService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.subjectService
}

func (sm *serviceManager) Contact() ContactService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.contactService
}

func (sm *serviceManager) Admin() AdminService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.adminService
}

func (sm *serviceManager) ImportExport() ImportExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.importExportService
}

func (sm *serviceManager) Document() DocumentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.documentService
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// HealthCheck verifies the backing connections.
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	return sm.deps.Repo.Ping(ctx)
}

// Shutdown releases held resources.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.deps.Logger.Warn("Failed to close event publisher", "error", err)
		}
	}

	sm.initialized = false
	return nil
}
