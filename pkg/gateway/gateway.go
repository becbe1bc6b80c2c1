// Package gateway is the storage read/write contract of the cache. A stored
// object is a blob in the storage backend plus a metadata row in the
// database backend, written blob-first so a metadata failure can clean the
// blob up again.
package gateway

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/edgemirror/image-cache-server/pkg/database"
	"github.com/edgemirror/image-cache-server/pkg/e"
	"github.com/edgemirror/image-cache-server/pkg/s"
	"github.com/edgemirror/image-cache-server/pkg/storage"
)

//go:generate mockgen -destination=../../tests/mock_backend/gateway.go -package=mock_backend github.com/edgemirror/image-cache-server/pkg/gateway Cache

const (
	// StoredCacheControl is set on every written object.
	StoredCacheControl = "public, max-age=31536000, immutable"
	// DefaultCacheControl is served when stored metadata lacks one.
	DefaultCacheControl = "public, max-age=31536000"
	// DefaultContentType is served when stored metadata lacks one.
	DefaultContentType = "application/octet-stream"
)

// Cache is the put/get surface the web layer talks to. Get returns
// e.ErrObjectNotFound as the normal absence outcome, distinct from backend
// failures. There is deliberately no existence check before Put, repeat
// writes for the same key overwrite with identical bytes.
type Cache interface {
	Put(key string, data []byte, contentType, sourceURL string) error
	Get(key string) (s.Object, error)
}

type Gateway struct {
	Storage  storage.Backend
	Database database.Backend
}

func New(storageBackend storage.Backend, databaseBackend database.Backend) *Gateway {
	return &Gateway{Storage: storageBackend, Database: databaseBackend}
}

func (g *Gateway) Put(key string, data []byte, contentType, sourceURL string) error {
	if err := g.Storage.Put(key, data, contentType, StoredCacheControl); err != nil {
		return err
	}

	meta := s.ObjectMeta{
		Path:         key,
		ContentType:  contentType,
		CacheControl: StoredCacheControl,
		SourceURL:    sourceURL,
		Size:         int64(len(data)),
		CreatedDate:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := g.Database.PutObject(meta); err != nil {
		// Attempt to clean up the blob as we've failed to index it
		if delErr := g.Storage.Delete(key); delErr != nil {
			log.Warn().Err(delErr).Str("path", key).Msg("Failed to clean up blob after metadata failure")
		}
		return err
	}

	return nil
}

func (g *Gateway) Get(key string) (s.Object, error) {
	meta, err := g.Database.GetObject(key)
	if err != nil {
		return s.Object{}, err
	}

	data, err := g.Storage.Get(key)
	if err != nil {
		// Metadata without a blob means a half-cleaned write, treat as absent
		if errors.Is(err, e.ErrObjectNotFound) {
			return s.Object{}, e.ErrObjectNotFound
		}
		return s.Object{}, err
	}

	contentType := meta.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	cacheControl := meta.CacheControl
	if cacheControl == "" {
		cacheControl = DefaultCacheControl
	}

	return s.Object{Body: data, ContentType: contentType, CacheControl: cacheControl}, nil
}
