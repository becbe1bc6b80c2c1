package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/edgemirror/image-cache-server/pkg/e"
)

// renderError is the single place pipeline errors become HTTP. Anything
// that isn't a tagged *e.Error is an internal failure.
func renderError(c *gin.Context, err error) {
	var apiErr *e.Error
	if !errors.As(err, &apiErr) {
		log.Error().Err(err).Msg("Unhandled internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "internal error"})
		return
	}

	payload := gin.H{"status": "error", "message": apiErr.Message}
	for key, value := range apiErr.Context {
		payload[key] = value
	}

	c.JSON(apiErr.HTTPStatus(), payload)
}
