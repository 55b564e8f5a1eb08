package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calen/phototagger/internal/api/middleware"
	"github.com/calen/phototagger/internal/relay"
)

// RelayHandler exposes the verbatim chat-completion passthrough.
type RelayHandler struct {
	forwarder *relay.Forwarder
}

// NewRelayHandler creates a new relay handler.
// Parameters:
//   - forwarder: configured provider forwarder.
//
// Returns:
//   - *RelayHandler: initialized handler.
func NewRelayHandler(forwarder *relay.Forwarder) *RelayHandler {
	return &RelayHandler{
		forwarder: forwarder,
	}
}

// Generate handles POST /api/generate-caption. The body is forwarded to the
// provider unchanged; the only validation is JSON well-formedness. Upstream
// non-2xx becomes 502, transport failure 500, with the timeout case called
// out separately.
func (h *RelayHandler) Generate(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body: " + err.Error(),
		})
		return
	}
	if len(body) == 0 || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Request body must be a JSON chat-completion request",
		})
		return
	}

	result, err := h.forwarder.Forward(c.Request.Context(), body)
	if err != nil {
		log := middleware.GetLogger(c)
		if errors.Is(err, relay.ErrUpstreamTimeout) {
			log.Warn("Relay timed out waiting for provider")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Request to model provider timed out",
			})
			return
		}
		log.WithError(err).Error("Relay failed to reach provider")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to reach model provider",
		})
		return
	}

	if result.Status < 200 || result.Status >= 300 {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": fmt.Sprintf("upstream error: status %d", result.Status),
		})
		return
	}

	c.Data(http.StatusOK, result.ContentType, result.Body)
}
