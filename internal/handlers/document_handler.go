package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/services"
	"github.com/shikshya-edu/institute-service/internal/utils"
)

type DocumentHandler struct {
	BaseHandler
	documentService services.DocumentService
}

func NewDocumentHandler(documentService services.DocumentService, logger utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     NewBaseHandler(logger),
		documentService: documentService,
	}
}

// Upload stores a PDF study resource
// @Summary Upload document
// @Description Accepts a PDF as multipart form data with title and description fields
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF file"
// @Param title formData string true "Document title"
// @Param description formData string false "Document description"
// @Success 201 {object} models.Document
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "PDF file is required in the 'file' form field",
			Details: err.Error(),
		})
		return
	}

	req := services.DocumentUploadRequest{
		Title: c.PostForm("title"),
	}
	if desc := c.PostForm("description"); desc != "" {
		req.Description = &desc
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

	h.LogRequest(c, "Uploading document", "filename", fileHeader.Filename, "size", fileHeader.Size)

	doc, err := h.documentService.Upload(c.Request.Context(), &req,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), fileHeader.Size, file, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// List lists uploaded documents
// @Summary List documents
// @Tags documents
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 10, max: 100)"
// @Param search query string false "Search by title, description or filename"
// @Success 200 {object} services.DocumentListResponse
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	resp, err := h.documentService.List(c.Request.Context(), bindPageQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListMine lists the authenticated user's own uploads
// @Summary List own documents
// @Tags documents
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 10, max: 100)"
// @Param search query string false "Search by title, description or filename"
// @Success 200 {object} services.DocumentListResponse
// @Router /documents/mine [get]
func (h *DocumentHandler) ListMine(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.documentService.ListMine(c.Request.Context(), userID, bindPageQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Get returns one document's metadata
// @Summary Get document
// @Tags documents
// @Produce json
// @Param id path string true "Document id"
// @Success 200 {object} models.Document
// @Failure 404 {object} ErrorResponse
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documentService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Download streams the stored PDF
// @Summary Download document
// @Description Streams the file and bumps the download counter off the request path
// @Tags documents
// @Produce application/pdf
// @Param id path string true "Document id"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	dl, err := h.documentService.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer dl.Reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", dl.Document.Filename))
	c.DataFromReader(http.StatusOK, dl.Document.Size, dl.Document.MimeType, dl.Reader, nil)
}

// Delete removes a document; only the uploader or an admin may do this
// @Summary Delete document
// @Tags documents
// @Produce json
// @Param id path string true "Document id"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	role, _ := c.Get("user_role")
	isAdmin := role == models.RoleAdmin

	if err := h.documentService.Delete(c.Request.Context(), c.Param("id"), userID, isAdmin); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Document deleted successfully",
	})
}
