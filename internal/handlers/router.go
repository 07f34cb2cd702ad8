package handlers

import (
	"log/slog"

	"github.com/classpulse/quiz-service/internal/middleware"
	"github.com/classpulse/quiz-service/internal/services"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	quizHandler    *QuizHandler
	attemptHandler *AttemptHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger *slog.Logger) *HandlerManager {
	return &HandlerManager{
		quizHandler: NewQuizHandler(serviceManager.Quiz(), logger),
		attemptHandler: NewAttemptHandler(
			serviceManager.Submission(),
			serviceManager.Proctoring(),
			serviceManager.Analytics(),
			logger,
		),
	}
}

// SetupRoutes wires all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, signingKey []byte) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "quiz-service",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(signingKey))
	{
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("/teacher", hm.quizHandler.GetTeacherQuizzes)
			quizzes.GET("/student", hm.quizHandler.GetStudentQuizzes)
			quizzes.GET("/classroom/:code", hm.quizHandler.GetClassroomQuizzes)

			// Attempt lifecycle
			quizzes.POST("/submit", hm.attemptHandler.SubmitQuiz)
			quizzes.POST("/auto-submit", hm.attemptHandler.AutoSubmitQuiz)
			quizzes.POST("/proctoring-event", hm.attemptHandler.ProctoringEvent)

			quizzes.GET("/:id", hm.quizHandler.GetQuizDetails)
			quizzes.GET("/:id/attempts", hm.attemptHandler.GetQuizAttempts)
			quizzes.GET("/:id/analysis", hm.attemptHandler.GetQuizAnalysis)
			quizzes.GET("/:id/analysis/:student_id", hm.attemptHandler.GetStudentAnalysis)
		}
	}
}
