package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/tarpaulin-service/internal/events"
	"github.com/SAP-F-2025/tarpaulin-service/internal/identity"
	"github.com/SAP-F-2025/tarpaulin-service/internal/ratelimit"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories"
	"github.com/SAP-F-2025/tarpaulin-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// ImagesEnabled switches the public image store on
	ImagesEnabled bool
}

// Dependencies are the adapters every service is built from
type Dependencies struct {
	Repositories repositories.RepositoryManager
	Exchanger    identity.CredentialExchanger
	Inspector    identity.TokenInspector
	Limiter      ratelimit.Limiter
	Publisher    events.EventPublisher
	Validator    *validator.Validator
	Logger       *slog.Logger
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   Dependencies
	config ServiceManagerConfig
	logger *slog.Logger

	// Service instances
	accessService     AccessService
	authService       AuthService
	userService       UserService
	courseService     CourseService
	enrollmentService EnrollmentService
	imageService      ImageService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps Dependencies, config ServiceManagerConfig) ServiceManager {
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.New(nil, ratelimit.Config{})
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NewMockEventPublisher(deps.Logger)
	}
	return &serviceManager{
		deps:   deps,
		config: config,
		logger: deps.Logger,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if sm.deps.Repositories == nil {
		return fmt.Errorf("repository manager is required")
	}
	if sm.deps.Exchanger == nil || sm.deps.Inspector == nil {
		return fmt.Errorf("identity provider is required")
	}

	repo := sm.deps.Repositories.GetRepository()
	blobs := sm.deps.Repositories.GetBlobRepository()

	sm.accessService = NewAccessService(repo, sm.logger)
	sm.authService = NewAuthService(sm.deps.Exchanger, sm.deps.Inspector, sm.deps.Limiter, sm.deps.Validator, sm.logger)
	sm.userService = NewUserService(repo, blobs, sm.accessService, sm.deps.Publisher, sm.logger)
	sm.courseService = NewCourseService(repo, sm.accessService, sm.deps.Publisher, sm.deps.Validator, sm.logger)
	sm.enrollmentService = NewEnrollmentService(repo, sm.accessService, sm.deps.Publisher, sm.logger)

	if sm.config.ImagesEnabled {
		sm.imageService = NewImageService(blobs, sm.logger)
		sm.logger.Info("Image service initialized")
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Access() AccessService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.accessService
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.authService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.userService
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.courseService
}

func (sm *serviceManager) Enrollment() EnrollmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.enrollmentService
}

func (sm *serviceManager) Image() ImageService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.ImagesEnabled && sm.imageService != nil {
		return sm.imageService
	}

	panic("image service not enabled")
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repositories.HealthCheck(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	// only the redis limiter has something to check
	if checker, ok := sm.deps.Limiter.(interface{ HealthCheck(context.Context) error }); ok {
		if err := checker.HealthCheck(ctx); err != nil {
			return fmt.Errorf("rate limiter health check failed: %w", err)
		}
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.deps.Publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	if sm.deps.Repositories != nil {
		if err := sm.deps.Repositories.Shutdown(ctx); err != nil {
			sm.logger.Error("Failed to shutdown repository manager", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// ===== HELPER FUNCTIONS =====

// publish sends event and only logs a failure; the change it describes is
// already committed
func publish(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}
