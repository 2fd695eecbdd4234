package services

import (
	"log/slog"

	"github.com/nexora-edu/learning-service/internal/authz"
	"github.com/nexora-edu/learning-service/internal/cache"
	"github.com/nexora-edu/learning-service/internal/events"
	"github.com/nexora-edu/learning-service/internal/repositories"
	"github.com/nexora-edu/learning-service/internal/validator"

	"github.com/nexora-edu/learning-service/internal/auth"
)

// ServiceManager bundles all services behind one dependency for the handlers.
type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Task() TaskService
	Quiz() QuizService
	Module() ModuleService
	Game() GameService
	Performance() PerformanceService
}

type serviceManager struct {
	auth        AuthService
	user        UserService
	task        TaskService
	quiz        QuizService
	module      ModuleService
	game        GameService
	performance PerformanceService
}

func NewServiceManager(
	repo repositories.Repository,
	tokens *auth.TokenService,
	cacheSvc cache.CacheService,
	publisher events.Publisher,
	logger *slog.Logger,
	v *validator.Validator,
) ServiceManager {
	checker := authz.NewChecker(nil)
	awarder := NewPointsAwarder(repo, cacheSvc, publisher, logger)

	return &serviceManager{
		auth:        NewAuthService(repo, tokens, logger, v),
		user:        NewUserService(repo, checker, awarder, cacheSvc, publisher, logger, v),
		task:        NewTaskService(repo, checker, awarder, publisher, logger, v),
		quiz:        NewQuizService(repo, checker, awarder, publisher, logger, v),
		module:      NewModuleService(repo, checker, logger, v),
		game:        NewGameService(repo, awarder, logger, v),
		performance: NewPerformanceService(repo, checker, logger),
	}
}

func (m *serviceManager) Auth() AuthService               { return m.auth }
func (m *serviceManager) User() UserService               { return m.user }
func (m *serviceManager) Task() TaskService               { return m.task }
func (m *serviceManager) Quiz() QuizService               { return m.quiz }
func (m *serviceManager) Module() ModuleService           { return m.module }
func (m *serviceManager) Game() GameService               { return m.game }
func (m *serviceManager) Performance() PerformanceService { return m.performance }
