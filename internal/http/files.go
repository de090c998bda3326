package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fszn/contracts-service/internal/service"
)

func (h *Handler) uploadFile(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	content, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}
	defer content.Close()

	file, err := h.files.Upload(c.Request.Context(), principal, contractID, service.UploadFileInput{
		FileType:         c.PostForm("file_type"),
		Version:          c.PostForm("version"),
		IsPublic:         c.PostForm("is_public") == "true",
		OriginalFilename: fileHeader.Filename,
		ContentType:      fileHeader.Header.Get("Content-Type"),
		Content:          content,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

func (h *Handler) listFiles(c *gin.Context) {
	contractID, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	files, err := h.files.List(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (h *Handler) downloadFile(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, fileID, ok := h.recordIDs(c)
	if !ok {
		return
	}

	file, content, err := h.files.Download(c.Request.Context(), principal, contractID, fileID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer content.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.StoredFilename))
	c.DataFromReader(http.StatusOK, file.FileSize, contentType, content, nil)
}

func (h *Handler) deleteFile(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, fileID, ok := h.recordIDs(c)
	if !ok {
		return
	}
	if err := h.files.Delete(c.Request.Context(), principal, contractID, fileID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
