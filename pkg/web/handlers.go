package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/edgemirror/image-cache-server/pkg/cachekey"
	"github.com/edgemirror/image-cache-server/pkg/e"
	"github.com/edgemirror/image-cache-server/pkg/fetch"
	"github.com/edgemirror/image-cache-server/pkg/gateway"
	"github.com/edgemirror/image-cache-server/pkg/validate"
)

type Handlers struct {
	Cache     gateway.Cache
	Fetcher   fetch.Fetcher
	Validator validate.Config

	// BaseURL overrides the scheme and host of returned cached URLs.
	// When empty they are built from the inbound request.
	BaseURL string
	Debug   bool
}

type CacheRequest struct {
	URL string `json:"url"`
}

type CacheResponse struct {
	Status      string `json:"status"`
	CachedURL   string `json:"cached_url"`
	OriginalURL string `json:"original_url"`
	FinalURL    string `json:"final_url"`
	Hash        string `json:"hash"`
	Path        string `json:"path"`
}

// CacheImage is the write path: validate -> fetch with fallback -> derive
// key -> persist -> return the stable URL.
func (h *Handlers) CacheImage(c *gin.Context) {
	var body CacheRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		renderError(c, e.Input("invalid JSON body"))
		return
	}
	if body.URL == "" {
		renderError(c, e.Input("missing url field"))
		return
	}

	if !h.Validator.IsAcceptable(body.URL) {
		renderError(c, e.Validation("URL is not an allowed source image").
			WithContext("original_url", body.URL))
		return
	}

	result, err := h.Fetcher.Fetch(c.Request.Context(), body.URL)
	if err != nil {
		renderError(c, err)
		return
	}

	// The key always hashes the original URL, not the fallback variant that
	// happened to serve the bytes.
	path := cachekey.Derive(body.URL, result.Extension, time.Now())

	if err = h.Cache.Put(path, result.Body, result.ContentType, body.URL); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to store image")
		renderError(c, e.Storage("failed to store image", err))
		return
	}

	log.Debug().Str("path", path).Str("final_url", result.FinalURL).Int("size", len(result.Body)).Msg("Cached image")

	c.JSON(http.StatusOK, CacheResponse{
		Status:      "success",
		CachedURL:   h.cachedURL(c, path),
		OriginalURL: body.URL,
		FinalURL:    result.FinalURL,
		Hash:        cachekey.ShortHash(body.URL),
		Path:        path,
	})
}

func (h *Handlers) cachedURL(c *gin.Context, path string) string {
	if h.BaseURL != "" {
		return strings.TrimSuffix(h.BaseURL, "/") + "/" + path
	}

	cached := url.URL{
		Scheme: c.Request.URL.Scheme,
		Host:   c.Request.Host,
		Path:   "/" + path,
	}
	return cached.String()
}

// ServeObject is the read path, bound as the NoRoute handler so any GET
// other than the registered endpoints is a stored object lookup.
func (h *Handlers) ServeObject(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		c.String(http.StatusNotFound, "Not found")
		return
	}

	key := strings.TrimPrefix(c.Request.URL.Path, "/")
	if key == "" || key == "cache" {
		c.String(http.StatusNotFound, "Not found")
		return
	}

	obj, err := h.Cache.Get(key)
	if errors.Is(err, e.ErrObjectNotFound) {
		c.String(http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("path", key).Msg("Failed to read object")
		renderError(c, e.Storage("failed to read object", err))
		return
	}

	c.Header("Cache-Control", obj.CacheControl)
	c.Data(http.StatusOK, obj.ContentType, obj.Body)
}
