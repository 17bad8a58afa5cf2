package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shikshya-edu/institute-service/internal/services"
	"github.com/shikshya-edu/institute-service/internal/utils"
)

// PublicHandler serves the unauthenticated catalog endpoints: subjects,
// landing-page carousels and the contact form.
type PublicHandler struct {
	BaseHandler
	subjectService services.SubjectService
	contactService services.ContactService
	adminService   services.AdminService
}

func NewPublicHandler(
	subjectService services.SubjectService,
	contactService services.ContactService,
	adminService services.AdminService,
	logger utils.Logger,
) *PublicHandler {
	return &PublicHandler{
		BaseHandler:    NewBaseHandler(logger),
		subjectService: subjectService,
		contactService: contactService,
		adminService:   adminService,
	}
}

// ListSubjects lists the subject catalog
// @Summary List subjects
// @Tags subjects
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 10, max: 100)"
// @Param search query string false "Search by subject name"
// @Success 200 {object} services.SubjectListResponse
// @Router /subjects [get]
func (h *PublicHandler) ListSubjects(c *gin.Context) {
	resp, err := h.subjectService.List(c.Request.Context(), bindPageQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetSubject returns one catalog subject
// @Summary Get subject
// @Tags subjects
// @Produce json
// @Param id path string true "Subject id"
// @Success 200 {object} models.Subject
// @Failure 404 {object} ErrorResponse
// @Router /subjects/{id} [get]
func (h *PublicHandler) GetSubject(c *gin.Context) {
	subject, err := h.subjectService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

// ListCarousels lists the landing-page slider images
// @Summary List carousel items
// @Tags carousels
// @Produce json
// @Success 200 {object} services.CarouselListResponse
// @Router /carousels [get]
func (h *PublicHandler) ListCarousels(c *gin.Context) {
	resp, err := h.adminService.ListCarousels(c.Request.Context(), bindPageQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SubmitContact stores a contact-form message
// @Summary Submit contact form
// @Tags contacts
// @Accept json
// @Produce json
// @Param contact body services.ContactCreateRequest true "Contact message"
// @Success 201 {object} models.Contact
// @Failure 400 {object} ErrorResponse
// @Router /contacts [post]
func (h *PublicHandler) SubmitContact(c *gin.Context) {
	var req services.ContactCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	contact, err := h.contactService.Submit(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contact)
}
