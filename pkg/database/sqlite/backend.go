package sqlite

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	gomigratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // initialises sqlite3
	"github.com/rs/zerolog/log"

	"github.com/edgemirror/image-cache-server/pkg/e"
	"github.com/edgemirror/image-cache-server/pkg/s"
)

//go:embed migrations/*.sql
var fs embed.FS

type Backend struct {
	db *sql.DB
}

func NewSQLiteBackend(connectionString string) (*Backend, error) {
	db, err := sql.Open("sqlite3", connectionString)
	if err != nil {
		return &Backend{}, err
	}

	backend := Backend{
		db: db,
	}

	if err = backend.Migrate(); err != nil {
		return &Backend{}, err
	}

	return &backend, nil
}

func (b *Backend) Type() string { return "sqlite" }

func (b *Backend) Migrate() error {
	driver, err := gomigratesqlite.WithInstance(b.db, &gomigratesqlite.Config{})
	if err != nil {
		return err
	}

	d, err := iofs.New(fs, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return err
	}

	log.Info().Msg("Starting database migrations")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	log.Info().Msg("Finished database migrations")

	return nil
}

func (b *Backend) PutObject(meta s.ObjectMeta) error {
	_, err := b.db.Exec(UpsertObject, meta.Path, meta.ContentType, meta.CacheControl, meta.SourceURL, meta.Size, meta.CreatedDate)
	if err != nil {
		return err
	}

	log.Debug().Str("path", meta.Path).Msg("Stored object metadata")
	return nil
}

func (b *Backend) GetObject(path string) (s.ObjectMeta, error) {
	meta := s.ObjectMeta{Path: path}

	err := b.db.QueryRow(SelectObject, path).Scan(&meta.ContentType, &meta.CacheControl, &meta.SourceURL, &meta.Size, &meta.CreatedDate)
	if errors.Is(err, sql.ErrNoRows) {
		return s.ObjectMeta{}, e.ErrObjectNotFound
	}
	if err != nil {
		return s.ObjectMeta{}, err
	}

	return meta, nil
}
