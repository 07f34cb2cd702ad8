package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/classpulse/quiz-service/internal/services"
	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	BaseHandler
	service services.QuizService
}

func NewQuizHandler(service services.QuizService, logger *slog.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateQuiz handles POST /quizzes (teachers only).
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	quiz, err := h.service.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	h.RespondSuccess(c, http.StatusCreated, "Quiz created successfully", quiz)
}

// GetTeacherQuizzes handles GET /quizzes/teacher.
func (h *QuizHandler) GetTeacherQuizzes(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	quizzes, err := h.service.ListByTeacher(c.Request.Context(), userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	h.RespondSuccess(c, http.StatusOK, "Quizzes fetched successfully", quizzes)
}

// GetStudentQuizzes handles GET /quizzes/student.
func (h *QuizHandler) GetStudentQuizzes(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	quizzes, err := h.service.ListForStudent(c.Request.Context(), userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	h.RespondSuccess(c, http.StatusOK, "Quizzes fetched successfully", quizzes)
}

// GetClassroomQuizzes handles GET /quizzes/classroom/:code.
func (h *QuizHandler) GetClassroomQuizzes(c *gin.Context) {
	quizzes, err := h.service.ListByClassCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	h.RespondSuccess(c, http.StatusOK, "Classroom quizzes fetched successfully", quizzes)
}

// GetQuizDetails handles GET /quizzes/:id.
func (h *QuizHandler) GetQuizDetails(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.service.GetByID(c.Request.Context(), quizID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	h.RespondSuccess(c, http.StatusOK, "Quiz details fetched successfully", view)
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid " + name + " parameter"})
		return 0, false
	}
	return uint(id), true
}
