package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"casework-service/internal/models"
	"casework-service/internal/services"
	"casework-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload accepts a multipart file and stores it for verification.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID := c.GetUint("user_id")

	file, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "File is required", err.Error())
		return
	}

	document, err := h.documentService.Upload(c.Request.Context(), userID, file)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Failed to upload document")
		return
	}

	c.JSON(http.StatusCreated, document)
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID := c.GetUint("user_id")

	documents, err := h.documentService.ListForUser(userID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

// ListPending returns documents awaiting review. Staff only.
func (h *DocumentHandler) ListPending(c *gin.Context) {
	documents, err := h.documentService.ListPending()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Failed to list pending documents")
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

// Verify records the reviewer's decision and notifies the owner. Staff only.
func (h *DocumentHandler) Verify(c *gin.Context) {
	verifierID := c.GetUint("user_id")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid document id")
		return
	}

	var req models.VerifyDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid input data", err.Error())
		return
	}

	if err := h.documentService.Verify(uint(id), verifierID, &req); err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			response.Fail(c, http.StatusNotFound, "Document not found")
			return
		}
		response.Fail(c, http.StatusInternalServerError, "Failed to verify document")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "document updated"})
}
