package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/classpulse/quiz-service/internal/middleware"
	"github.com/classpulse/quiz-service/internal/scoring"
	"github.com/classpulse/quiz-service/internal/services"
	"github.com/gin-gonic/gin"
	validator "github.com/go-playground/validator/v10"
)

// ErrorResponse is the error body returned to clients.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse is the success envelope returned to clients.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the shared logging and response helpers.
type BaseHandler struct {
	logger *slog.Logger
}

func NewBaseHandler(logger *slog.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// RespondError maps a service error onto its HTTP status and body.
func (h *BaseHandler) RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"
	var details interface{}

	switch {
	case services.IsForbidden(err):
		status = http.StatusForbidden
		message = err.Error()
	case services.IsNotFound(err):
		status = http.StatusNotFound
		message = err.Error()
	case services.IsConflict(err):
		status = http.StatusConflict
		message = err.Error()
	case services.IsInvalidInput(err):
		status = http.StatusBadRequest
		message = err.Error()
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			message = "validation failed"
			details = validationDetails(ve)
		}
		var iace *scoring.InvalidAnswerChoiceError
		if errors.As(err, &iace) {
			message = iace.Error()
		}
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err)
	} else {
		h.logger.Warn("Request rejected",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", status,
			"error", err)
	}

	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// RespondSuccess sends the success envelope.
func (h *BaseHandler) RespondSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, SuccessResponse{Message: message, Data: data})
}

// currentUserID pulls the authenticated caller from the request context; the
// auth middleware guarantees it is present on protected routes.
func (h *BaseHandler) currentUserID(c *gin.Context) (uint, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "not authenticated"})
	}
	return id, ok
}

func validationDetails(ve validator.ValidationErrors) []map[string]string {
	details := make([]map[string]string, 0, len(ve))
	for _, fe := range ve {
		details = append(details, map[string]string{
			"field": fe.Field(),
			"rule":  fe.Tag(),
		})
	}
	return details
}
