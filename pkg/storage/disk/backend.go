package disk

import (
	"errors"
	"os"
	p "path"
	"strings"

	"github.com/edgemirror/image-cache-server/pkg/e"
)

// Backend stores blobs as plain files under BaseDir. Content type and
// cache control live in the metadata database, not on disk.
type Backend struct {
	BaseDir string
}

func New(connectionString string) (*Backend, error) {
	if _, err := os.Stat(connectionString); os.IsNotExist(err) {
		return nil, errors.New("path does not exist")
	}

	backend := Backend{BaseDir: connectionString}
	return &backend, nil
}

func (b *Backend) Setup() error {
	return nil
}

func (b *Backend) Type() string {
	return "disk"
}

func (b *Backend) Put(key string, data []byte, contentType, cacheControl string) error {
	filePath, err := b.resolve(key)
	if err != nil {
		return err
	}

	// Keys look like 20211102/abcd1234.png, ensure the date dir exists
	if err = os.MkdirAll(p.Dir(filePath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(filePath, data, 0o644)
}

func (b *Backend) Get(key string) ([]byte, error) {
	filePath, err := b.resolve(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return nil, e.ErrObjectNotFound
	}
	if err != nil {
		return nil, err
	}

	return data, nil
}

func (b *Backend) Delete(key string) error {
	filePath, err := b.resolve(key)
	if err != nil {
		return err
	}
	return os.Remove(filePath)
}

// resolve joins the key onto the base directory, refusing anything that
// escapes it.
func (b *Backend) resolve(key string) (string, error) {
	filePath := p.Clean(p.Join(b.BaseDir, key))
	if !strings.HasPrefix(filePath, b.BaseDir) {
		return "", e.ErrObjectNotFound
	}
	return filePath, nil
}
