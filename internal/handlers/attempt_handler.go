package handlers

import (
	"log/slog"
	"net/http"

	"github.com/classpulse/quiz-service/internal/services"
	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	BaseHandler
	submissions services.SubmissionService
	proctoring  services.ProctoringService
	analytics   services.AnalyticsService
}

func NewAttemptHandler(submissions services.SubmissionService, proctoring services.ProctoringService, analytics services.AnalyticsService, logger *slog.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler: NewBaseHandler(logger),
		submissions: submissions,
		proctoring:  proctoring,
		analytics:   analytics,
	}
}

// SubmitQuiz handles POST /quizzes/submit (students only).
func (h *AttemptHandler) SubmitQuiz(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	result, err := h.submissions.Submit(c.Request.Context(), &req, userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	h.RespondSuccess(c, http.StatusOK, "Quiz submitted successfully", result)
}

// AutoSubmitQuiz handles POST /quizzes/auto-submit: the positional payload
// fired by timer expiry or the proctoring threshold.
func (h *AttemptHandler) AutoSubmitQuiz(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.AutoSubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	submission, err := h.submissions.AutoSubmit(c.Request.Context(), &req, userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	h.RespondSuccess(c, http.StatusOK, "Quiz auto-submitted successfully", submission)
}

// ProctoringEvent handles POST /quizzes/proctoring-event. At the tab-switch
// threshold the response carries the forced submission instead of a plain
// acknowledgment.
func (h *AttemptHandler) ProctoringEvent(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.ProctoringEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	result, err := h.proctoring.RecordEvent(c.Request.Context(), &req, userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	message := "Proctoring event recorded"
	if result.Forced {
		message = "Quiz auto-submitted after repeated tab switches"
	}
	h.RespondSuccess(c, http.StatusOK, message, result)
}

// GetQuizAttempts handles GET /quizzes/:id/attempts (quiz owner only).
func (h *AttemptHandler) GetQuizAttempts(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	submissions, err := h.submissions.GetByQuiz(c.Request.Context(), quizID, userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	h.RespondSuccess(c, http.StatusOK, "Quiz attempts fetched successfully", submissions)
}

// GetQuizAnalysis handles GET /quizzes/:id/analysis (quiz owner only).
func (h *AttemptHandler) GetQuizAnalysis(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.analytics.QuizSummary(c.Request.Context(), quizID, userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	h.RespondSuccess(c, http.StatusOK, "Confidence summary generated", summary)
}

// GetStudentAnalysis handles GET /quizzes/:id/analysis/:student_id.
func (h *AttemptHandler) GetStudentAnalysis(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := parseIDParam(c, "student_id")
	if !ok {
		return
	}

	analysis, err := h.analytics.StudentAnalysis(c.Request.Context(), quizID, studentID, userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	h.RespondSuccess(c, http.StatusOK, "Confidence analysis generated", analysis)
}
