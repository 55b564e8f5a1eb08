package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/calen/phototagger/internal/service"
)

// AssetHandler handles the upload/caption/edit/export session endpoints.
type AssetHandler struct {
	sessions *service.SessionService
}

// NewAssetHandler creates a new asset handler.
// Parameters:
//   - sessions: session orchestration service.
//
// Returns:
//   - *AssetHandler: initialized handler.
func NewAssetHandler(sessions *service.SessionService) *AssetHandler {
	return &AssetHandler{
		sessions: sessions,
	}
}

// Upload handles POST /api/v1/assets. Accepts a multipart form with a
// "file" field, validates the image, and opens an editing session seeded
// with any embedded metadata.
func (h *AssetHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read file: " + err.Error(),
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read file contents: " + err.Error(),
		})
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), header.Filename, data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, sess)
}

// Get handles GET /api/v1/assets/:id.
func (h *AssetHandler) Get(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Session not found",
		})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// GenerateCaption handles POST /api/v1/assets/:id/caption. Runs the model
// and merges the parsed result into the working set. Error statuses follow
// the taxonomy: 401 credential, 502 upstream, 504 timeout, 500 otherwise.
func (h *AssetHandler) GenerateCaption(c *gin.Context) {
	sess, err := h.sessions.GenerateCaption(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeCaptionError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *AssetHandler) writeCaptionError(c *gin.Context, err error) {
	var upstream *service.UpstreamError

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, service.ErrMissingCredential):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No API key configured on the server"})
	case errors.Is(err, service.ErrInvalidCredential):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Model provider rejected the API key"})
	case errors.Is(err, service.ErrUpstreamTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request to model provider timed out"})
	case errors.As(err, &upstream):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": fmt.Sprintf("upstream error: status %d", upstream.Status),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Caption generation failed: " + err.Error(),
		})
	}
}

// SetCaption handles PUT /api/v1/assets/:id/caption.
func (h *AssetHandler) SetCaption(c *gin.Context) {
	var req struct {
		Caption string `json:"caption"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	sess, err := h.sessions.SetCaption(c.Param("id"), req.Caption)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// AddKeyword handles POST /api/v1/assets/:id/keywords. Duplicate or blank
// keywords are accepted and ignored; the response always carries the full
// working set.
func (h *AssetHandler) AddKeyword(c *gin.Context) {
	var req struct {
		Keyword string `json:"keyword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	sess, err := h.sessions.AddKeyword(c.Param("id"), req.Keyword)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// RemoveKeyword handles DELETE /api/v1/assets/:id/keywords/:index.
func (h *AssetHandler) RemoveKeyword(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Keyword index must be an integer",
		})
		return
	}

	sess, err := h.sessions.RemoveKeyword(c.Param("id"), index)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Export handles GET /api/v1/assets/:id/export. Writes the working metadata
// into the original bytes and streams the result as a download.
func (h *AssetHandler) Export(c *gin.Context) {
	name, data, err := h.sessions.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Export failed: " + err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// Delete handles DELETE /api/v1/assets/:id.
func (h *AssetHandler) Delete(c *gin.Context) {
	h.sessions.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}
