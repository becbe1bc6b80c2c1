package database

import (
	"errors"

	"github.com/edgemirror/image-cache-server/pkg/database/postgres"
	"github.com/edgemirror/image-cache-server/pkg/database/sqlite"
	"github.com/edgemirror/image-cache-server/pkg/s"
)

//go:generate mockgen -destination=../../tests/mock_backend/database.go -package=mock_backend github.com/edgemirror/image-cache-server/pkg/database Backend

// Backend is the metadata index kept alongside the blobs, one row per
// stored object. PutObject upserts, repeat writes to the same path
// overwrite. GetObject returns e.ErrObjectNotFound for unknown paths.
type Backend interface {
	Type() string
	PutObject(meta s.ObjectMeta) error
	GetObject(path string) (s.ObjectMeta, error)
}

func GetBackend(backend, connectionString string) (Backend, error) {
	switch backend {
	case "sqlite":
		return sqlite.NewSQLiteBackend(connectionString)
	case "postgres":
		return postgres.NewPostgresBackend(connectionString)
	default:
		return nil, errors.New("invalid database backend")
	}
}
