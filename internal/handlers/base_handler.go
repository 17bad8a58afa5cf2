package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shikshya-edu/institute-service/internal/services"
	"github.com/shikshya-edu/institute-service/internal/utils"
	"github.com/shikshya-edu/institute-service/internal/validator"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// SuccessResponse wraps operations that have no natural response body.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// BaseHandler carries the pieces every handler shares.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs the start of a handler with request-scoped fields.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c.Request.Context(), h.logger).Info(msg, args...)
}

// LogError logs a handler failure with request-scoped fields.
func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.FromContext(c.Request.Context(), h.logger).Error(msg, args...)
}

// currentUserID returns the authenticated user id or writes a 401.
func (h *BaseHandler) currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return "", false
	}
	return userID.(string), true
}

// bindPageQuery parses the shared page/limit/search query parameters.
func bindPageQuery(c *gin.Context) services.PageQuery {
	var q services.PageQuery
	_ = c.ShouldBindQuery(&q)
	return q.Normalize()
}

// handleServiceError maps service-layer errors onto HTTP responses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]any{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "User not found"})
	case errors.Is(err, services.ErrSubjectNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Subject not found"})
	case errors.Is(err, services.ErrContactNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Contact not found"})
	case errors.Is(err, services.ErrCarouselNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Carousel item not found"})
	case errors.Is(err, services.ErrDocumentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Document not found"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Email is already registered"})
	case errors.Is(err, services.ErrSubjectNameTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Subject name already exists"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid email or password"})
	case errors.Is(err, services.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid or expired token"})
	case errors.Is(err, services.ErrUnknownSubject):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unknown subject in enrollment request",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrInvalidCSV):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid CSV file",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrAlreadyEnrolled):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Already enrolled in this subject"})
	case errors.Is(err, services.ErrNotEnrolled):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Not enrolled in this subject"})
	case errors.Is(err, services.ErrNotPDF):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Only PDF files are accepted"})
	case errors.Is(err, services.ErrNotImage):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Only image files are accepted"})
	case errors.Is(err, services.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Message: "File exceeds the upload size limit"})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
