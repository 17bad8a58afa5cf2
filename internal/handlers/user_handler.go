package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shikshya-edu/institute-service/internal/services"
	"github.com/shikshya-edu/institute-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService    services.UserService
	subjectService services.SubjectService
}

func NewUserHandler(userService services.UserService, subjectService services.SubjectService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler:    NewBaseHandler(logger),
		userService:    userService,
		subjectService: subjectService,
	}
}

// GetProfile returns the authenticated user's profile
// @Summary Get own profile
// @Tags profile
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile edits the authenticated user's profile
// @Summary Update own profile
// @Tags profile
// @Accept json
// @Produce json
// @Param profile body services.ProfileUpdateRequest true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Router /profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating profile", "user_id", userID)

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// CompleteProfile fills in the post-signup profile details
// @Summary Complete profile
// @Description Sets the required profile fields and marks the account verified
// @Tags profile
// @Accept json
// @Produce json
// @Param profile body services.CompleteProfileRequest true "Profile details"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Router /profile/complete [post]
func (h *UserHandler) CompleteProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Completing profile", "user_id", userID)

	user, err := h.userService.CompleteProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// UploadProfilePicture stores a new profile picture
// @Summary Upload profile picture
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /profile/picture [post]
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Image file is required in the 'file' form field",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to open uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	h.LogRequest(c, "Uploading profile picture", "user_id", userID, "filename", fileHeader.Filename)

	user, err := h.userService.UpdateProfilePicture(c.Request.Context(), userID,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), fileHeader.Size, file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// EnrollSubject enrolls the user in a single subject
// @Summary Enroll in subject
// @Tags subjects
// @Accept json
// @Produce json
// @Param enrollment body services.EnrollmentRequest true "Subject id"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /subjects/enroll [post]
func (h *UserHandler) EnrollSubject(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.subjectService.Enroll(c.Request.Context(), userID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Enrolled successfully",
	})
}

// UnenrollSubject removes the user's enrollment in a single subject
// @Summary Unenroll from subject
// @Tags subjects
// @Accept json
// @Produce json
// @Param enrollment body services.EnrollmentRequest true "Subject id"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /subjects/unenroll [post]
func (h *UserHandler) UnenrollSubject(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.subjectService.Unenroll(c.Request.Context(), userID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Unenrolled successfully",
	})
}

// UpdateEnrollments converges the user's enrollments to the submitted set
// @Summary Update enrollments
// @Description Declares the full desired subject set; the server adds and removes enrollments to match it
// @Tags profile
// @Accept json
// @Produce json
// @Param enrollments body services.EnrollmentUpdateRequest true "Desired subject ids"
// @Success 200 {object} services.EnrollmentSyncResult
// @Failure 400 {object} ErrorResponse
// @Router /profile/enrollments [put]
func (h *UserHandler) UpdateEnrollments(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.EnrollmentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Syncing enrollments", "user_id", userID, "subjects", len(req.SubjectIDs))

	result, err := h.userService.SyncEnrollments(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListEnrolledSubjects lists the subjects the user is enrolled in
// @Summary List own subjects
// @Tags profile
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 10, max: 100)"
// @Param search query string false "Search by subject name"
// @Success 200 {object} services.SubjectListResponse
// @Router /profile/subjects [get]
func (h *UserHandler) ListEnrolledSubjects(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.userService.ListEnrolledSubjects(c.Request.Context(), userID, bindPageQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
