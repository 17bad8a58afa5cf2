package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shikshya-edu/institute-service/internal/services"
	"github.com/shikshya-edu/institute-service/internal/utils"
)

// maxImportSize caps how much of an uploaded CSV is read into memory.
const maxImportSize = 10 << 20

type AdminHandler struct {
	BaseHandler
	adminService        services.AdminService
	importExportService services.ImportExportService
}

func NewAdminHandler(
	adminService services.AdminService,
	importExportService services.ImportExportService,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:         NewBaseHandler(logger),
		adminService:        adminService,
		importExportService: importExportService,
	}
}

// ===== USER MANAGEMENT =====

// CreateUser creates a user account with an explicit role
// @Summary Create user
// @Tags admin-users
// @Accept json
// @Produce json
// @Param user body services.UserCreateRequest true "User data"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req services.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Admin creating user", "email", req.Email)

	user, err := h.adminService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetUser returns one user
// @Summary Get user
// @Tags admin-users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{id} [get]
func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.adminService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateUser edits a user account
// @Summary Update user
// @Tags admin-users
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param user body services.UserUpdateRequest true "Fields to change"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req services.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	user, err := h.adminService.UpdateUser(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user and their enrollments
// @Summary Delete user
// @Tags admin-users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Admin deleting user", "user_id", id)

	if err := h.adminService.DeleteUser(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "User deleted successfully",
	})
}

// ListUsers lists users
// @Summary List users
// @Tags admin-users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 10, max: 100)"
// @Param search query string false "Search by name, email or phone"
// @Success 200 {object} services.UserListResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	resp, err := h.adminService.ListUsers(c.Request.Context(), bindPageQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListEnrolledUsers reports users with at least one enrollment
// @Summary List enrolled users
// @Tags admin-users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 10, max: 100)"
// @Param search query string false "Search by name, email or subject"
// @Success 200 {object} services.EnrolledUserListResponse
// @Router /admin/enrolled-users [get]
func (h *AdminHandler) ListEnrolledUsers(c *gin.Context) {
	resp, err := h.adminService.ListEnrolledUsers(c.Request.Context(), bindPageQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ===== CSV IMPORT / EXPORT =====

// ImportUsers upserts users from an uploaded CSV file
// @Summary Import users from CSV
// @Description Upserts users by email. Existing users keep their role and password.
// @Tags admin-users
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} services.ImportResult
// @Failure 400 {object} ErrorResponse
// @Router /admin/users/import [post]
func (h *AdminHandler) ImportUsers(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "CSV file is required in the 'file' form field",
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

	content, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to read uploaded file",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Importing users from CSV", "filename", fileHeader.Filename, "size", fileHeader.Size)

	result, err := h.importExportService.ImportUsersCSV(c.Request.Context(), content)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportUsers streams all users as a CSV attachment
// @Summary Export users as CSV
// @Tags admin-users
// @Produce text/csv
// @Success 200 {file} file
// @Router /admin/users/export [get]
func (h *AdminHandler) ExportUsers(c *gin.Context) {
	h.LogRequest(c, "Exporting users as CSV")

	file, err := h.importExportService.ExportUsersCSV(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.writeExport(c, file)
}

// ExportUsersXLSX streams all users as a spreadsheet attachment
// @Summary Export users as XLSX
// @Tags admin-users
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /admin/users/export.xlsx [get]
func (h *AdminHandler) ExportUsersXLSX(c *gin.Context) {
	h.LogRequest(c, "Exporting users as XLSX")

	file, err := h.importExportService.ExportUsersXLSX(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.writeExport(c, file)
}

func (h *AdminHandler) writeExport(c *gin.Context, file *services.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// ===== SUBJECT MANAGEMENT =====

// CreateSubject adds a catalog subject
// @Summary Create subject
// @Tags admin-subjects
// @Accept json
// @Produce json
// @Param subject body services.SubjectCreateRequest true "Subject data"
// @Success 201 {object} models.Subject
// @Failure 409 {object} ErrorResponse
// @Router /admin/subjects [post]
func (h *AdminHandler) CreateSubject(c *gin.Context) {
	var req services.SubjectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	subject, err := h.adminService.CreateSubject(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

// UpdateSubject edits a catalog subject
// @Summary Update subject
// @Tags admin-subjects
// @Accept json
// @Produce json
// @Param id path string true "Subject id"
// @Param subject body services.SubjectUpdateRequest true "Fields to change"
// @Success 200 {object} models.Subject
// @Failure 404 {object} ErrorResponse
// @Router /admin/subjects/{id} [put]
func (h *AdminHandler) UpdateSubject(c *gin.Context) {
	var req services.SubjectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	subject, err := h.adminService.UpdateSubject(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

// DeleteSubject removes a catalog subject and its enrollments
// @Summary Delete subject
// @Tags admin-subjects
// @Produce json
// @Param id path string true "Subject id"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/subjects/{id} [delete]
func (h *AdminHandler) DeleteSubject(c *gin.Context) {
	if err := h.adminService.DeleteSubject(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Subject deleted successfully",
	})
}

// ===== CONTACT MANAGEMENT =====

// ListContacts lists contact-form submissions
// @Summary List contacts
// @Tags admin-contacts
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 10, max: 100)"
// @Param search query string false "Search by name, email, phone or message"
// @Success 200 {object} services.ContactListResponse
// @Router /admin/contacts [get]
func (h *AdminHandler) ListContacts(c *gin.Context) {
	resp, err := h.adminService.ListContacts(c.Request.Context(), bindPageQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetContact returns one contact submission
// @Summary Get contact
// @Tags admin-contacts
// @Produce json
// @Param id path string true "Contact id"
// @Success 200 {object} models.Contact
// @Failure 404 {object} ErrorResponse
// @Router /admin/contacts/{id} [get]
func (h *AdminHandler) GetContact(c *gin.Context) {
	contact, err := h.adminService.GetContact(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// UpdateContact edits a contact submission
// @Summary Update contact
// @Tags admin-contacts
// @Accept json
// @Produce json
// @Param id path string true "Contact id"
// @Param contact body services.ContactUpdateRequest true "Fields to change"
// @Success 200 {object} models.Contact
// @Failure 404 {object} ErrorResponse
// @Router /admin/contacts/{id} [put]
func (h *AdminHandler) UpdateContact(c *gin.Context) {
	var req services.ContactUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	contact, err := h.adminService.UpdateContact(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// DeleteContact removes a contact submission
// @Summary Delete contact
// @Tags admin-contacts
// @Produce json
// @Param id path string true "Contact id"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/contacts/{id} [delete]
func (h *AdminHandler) DeleteContact(c *gin.Context) {
	if err := h.adminService.DeleteContact(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Contact deleted successfully",
	})
}

// ===== CAROUSEL MANAGEMENT =====

// CreateCarousel adds a slider image
// @Summary Create carousel item
// @Tags admin-carousels
// @Accept json
// @Produce json
// @Param carousel body services.CarouselCreateRequest true "Carousel data"
// @Success 201 {object} models.Carousel
// @Failure 400 {object} ErrorResponse
// @Router /admin/carousels [post]
func (h *AdminHandler) CreateCarousel(c *gin.Context) {
	var req services.CarouselCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	carousel, err := h.adminService.CreateCarousel(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, carousel)
}

// UpdateCarousel swaps a slider image
// @Summary Update carousel item
// @Tags admin-carousels
// @Accept json
// @Produce json
// @Param id path string true "Carousel id"
// @Param carousel body services.CarouselUpdateRequest true "New image URL"
// @Success 200 {object} models.Carousel
// @Failure 404 {object} ErrorResponse
// @Router /admin/carousels/{id} [put]
func (h *AdminHandler) UpdateCarousel(c *gin.Context) {
	var req services.CarouselUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	carousel, err := h.adminService.UpdateCarousel(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, carousel)
}

// DeleteCarousel removes a slider image
// @Summary Delete carousel item
// @Tags admin-carousels
// @Produce json
// @Param id path string true "Carousel id"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/carousels/{id} [delete]
func (h *AdminHandler) DeleteCarousel(c *gin.Context) {
	if err := h.adminService.DeleteCarousel(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Carousel item deleted successfully",
	})
}

// ===== DASHBOARD =====

// GetDashboardStats returns the admin dashboard aggregates
// @Summary Dashboard statistics
// @Tags admin-dashboard
// @Produce json
// @Success 200 {object} services.DashboardStatsResponse
// @Router /admin/dashboard [get]
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
