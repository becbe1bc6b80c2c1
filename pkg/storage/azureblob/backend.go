package azureblob

import (
	"context"
	"errors"
	"io/ioutil"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/edgemirror/image-cache-server/pkg/e"
)

type Backend struct {
	Client    azblob.ContainerClient
	container string
}

func ParsePartsFromConnectionString(connStr string) (string, string, string, bool) {
	container := ""
	account := ""
	key := ""

	parts := strings.Split(connStr, ";")
	for _, part := range parts {
		subParts := strings.SplitN(part, "=", 2)
		if len(subParts) < 2 {
			return "", "", "", false
		}

		if subParts[0] == "Container" {
			container = subParts[1]
		} else if subParts[0] == "AccountName" {
			account = subParts[1]
		}
		if subParts[0] == "AccountKey" {
			key = subParts[1]
		}
	}

	if container == "" || account == "" || key == "" {
		return "", "", "", false
	}

	return account, key, container, true
}

func New(connectionString string) (*Backend, error) {
	_, _, container, found := ParsePartsFromConnectionString(connectionString)
	if !found {
		return &Backend{}, errors.New("container missing from connection string")
	}

	client, err := azblob.NewContainerClientFromConnectionString(connectionString, container, &azblob.ClientOptions{})
	if err != nil {
		return &Backend{}, err
	}

	backend := Backend{
		container: container,
		Client:    client,
	}
	return &backend, nil
}

func (b *Backend) Setup() error {
	return nil
}

func (b *Backend) Type() string {
	return "azureblob"
}

func (b *Backend) Put(key string, data []byte, contentType, cacheControl string) error {
	blobClient := b.Client.NewBlockBlobClient(key)

	_, err := azblob.UploadBufferToBlockBlob(context.Background(), data, blobClient, azblob.HighLevelUploadToBlockBlobOption{
		HTTPHeaders: &azblob.BlobHTTPHeaders{
			BlobContentType:  &contentType,
			BlobCacheControl: &cacheControl,
		},
	})

	return err
}

func (b *Backend) Get(key string) ([]byte, error) {
	blobClient := b.Client.NewBlockBlobClient(key)

	resp, err := blobClient.Download(context.Background(), &azblob.DownloadBlobOptions{})
	if err != nil {
		var storageErr *azblob.StorageError
		if errors.As(err, &storageErr) && storageErr.ErrorCode == azblob.StorageErrorCodeBlobNotFound {
			return nil, e.ErrObjectNotFound
		}
		return nil, err
	}

	body := resp.Body(azblob.RetryReaderOptions{})
	defer body.Close()

	return ioutil.ReadAll(body)
}

func (b *Backend) Delete(key string) error {
	blobClient := b.Client.NewBlockBlobClient(key)
	_, err := blobClient.Delete(context.Background(), &azblob.DeleteBlobOptions{})
	return err
}
