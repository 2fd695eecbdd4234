package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/nexora-edu/learning-service/internal/auth"
	"github.com/nexora-edu/learning-service/internal/services"
	"github.com/nexora-edu/learning-service/internal/storage"
	"github.com/nexora-edu/learning-service/internal/utils"
)

type HandlerManager struct {
	authHandler        *AuthHandler
	userHandler        *UserHandler
	taskHandler        *TaskHandler
	quizHandler        *QuizHandler
	moduleHandler      *ModuleHandler
	gameHandler        *GameHandler
	performanceHandler *PerformanceHandler

	tokens  *auth.TokenService
	uploads *storage.UploadStore
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	tokens *auth.TokenService,
	uploads *storage.UploadStore,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:        NewAuthHandler(serviceManager.Auth(), logger),
		userHandler:        NewUserHandler(serviceManager.User(), logger),
		taskHandler:        NewTaskHandler(serviceManager.Task(), uploads, logger),
		quizHandler:        NewQuizHandler(serviceManager.Quiz(), logger),
		moduleHandler:      NewModuleHandler(serviceManager.Module(), logger),
		gameHandler:        NewGameHandler(serviceManager.Game(), logger),
		performanceHandler: NewPerformanceHandler(serviceManager.Performance(), logger),
		tokens:             tokens,
		uploads:            uploads,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// Uploaded files are served statically; names are uuid-prefixed so paths
	// are unguessable but stable.
	router.Static("/uploads", hm.uploads.Dir())

	v1 := router.Group("/api/v1")

	// Public auth routes
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", hm.authHandler.Register)
		authRoutes.POST("/login", hm.authHandler.Login)
	}

	// Everything else requires a bearer token
	protected := v1.Group("")
	protected.Use(auth.Middleware(hm.tokens))
	{
		protected.GET("/auth/me", hm.authHandler.Me)

		users := protected.Group("/users")
		{
			users.POST("", hm.userHandler.CreateUser)
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/stats", hm.userHandler.GetUserStats)
			users.GET("/leaderboard", hm.userHandler.GetLeaderboard)
			users.GET("/leaderboard/streaks", hm.userHandler.GetStreakLeaderboard)
			users.GET("/:id", hm.userHandler.GetUser)
			users.GET("/:id/points", hm.userHandler.GetPoints)
			users.PUT("/:id/approve", hm.userHandler.ApproveUser)
			users.PUT("/:id/role", hm.userHandler.UpdateUserRole)
			users.PUT("/:id/deactivate", hm.userHandler.DeactivateUser)
			users.PUT("/:id/reactivate", hm.userHandler.ReactivateUser)
			users.POST("/:id/add-points", hm.userHandler.AddPoints)
			users.PUT("/:id/points", hm.userHandler.SetPoints)
		}

		tasks := protected.Group("/tasks")
		{
			tasks.POST("", hm.taskHandler.CreateTask)
			tasks.GET("", hm.taskHandler.ListTasks)
			tasks.GET("/my", hm.taskHandler.MyTasks)
			tasks.GET("/:id", hm.taskHandler.GetTask)
			tasks.PUT("/:id", hm.taskHandler.UpdateTask)
			tasks.DELETE("/:id", hm.taskHandler.DeleteTask)
			tasks.POST("/:id/submit", hm.taskHandler.SubmitTask)
			tasks.PUT("/:id/review", hm.taskHandler.ReviewSubmission)
		}

		quizzes := protected.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/my", hm.quizHandler.MyQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.PUT("/:id", hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)
			quizzes.POST("/:id/attempt", hm.quizHandler.AttemptQuiz)
		}

		modules := protected.Group("/modules")
		{
			modules.POST("", hm.moduleHandler.CreateModule)
			modules.GET("", hm.moduleHandler.ListModules)
			modules.GET("/:id", hm.moduleHandler.GetModule)
			modules.PUT("/:id", hm.moduleHandler.UpdateModule)
			modules.DELETE("/:id", hm.moduleHandler.DeleteModule)
		}

		games := protected.Group("/games")
		{
			games.POST("/start", hm.gameHandler.StartGame)
			games.GET("/daily-tip", hm.gameHandler.DailyTip)
			games.GET("/daily-challenge", hm.gameHandler.DailyChallenge)
			games.POST("/complete-challenge", hm.gameHandler.CompleteChallenge)
		}

		students := protected.Group("/students")
		{
			students.GET("", hm.userHandler.ListStudents)
			students.GET("/performance", hm.performanceHandler.GetPerformance)
			students.GET("/performance/export", hm.performanceHandler.ExportPerformance)
		}
	}
}
