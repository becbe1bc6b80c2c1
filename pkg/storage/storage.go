package storage

import (
	"errors"

	s3 "github.com/edgemirror/image-cache-server/pkg/storage/aws-s3"
	"github.com/edgemirror/image-cache-server/pkg/storage/azureblob"
	"github.com/edgemirror/image-cache-server/pkg/storage/disk"
)

//go:generate mockgen -destination=../../tests/mock_backend/storage.go -package=mock_backend github.com/edgemirror/image-cache-server/pkg/storage Backend

// Backend stores image blobs under derived keys. Writes to an existing key
// overwrite, the keys are date/content deterministic so a second write
// carries the same bytes. Get returns e.ErrObjectNotFound for absent keys.
type Backend interface {
	Setup() error
	Type() string
	Put(key string, data []byte, contentType, cacheControl string) error
	Get(key string) ([]byte, error)
	Delete(key string) error
}

func GetStorageBackend(backend, connectionString string) (Backend, error) {
	var b Backend
	var err error

	switch backend {
	case "disk":
		b, err = disk.New(connectionString)
	case "s3":
		b, err = s3.New(connectionString)
	case "azureblob":
		b, err = azureblob.New(connectionString)
	default:
		return nil, errors.New("invalid storage backend")
	}

	if err != nil {
		return nil, err
	}

	if err := b.Setup(); err != nil {
		return nil, err
	}

	return b, nil
}
