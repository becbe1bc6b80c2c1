package main

import (
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"github.com/edgemirror/image-cache-server/pkg/database"
	"github.com/edgemirror/image-cache-server/pkg/fetch"
	"github.com/edgemirror/image-cache-server/pkg/gateway"
	"github.com/edgemirror/image-cache-server/pkg/storage"
	"github.com/edgemirror/image-cache-server/pkg/utils"
	"github.com/edgemirror/image-cache-server/pkg/utils/logging"
	"github.com/edgemirror/image-cache-server/pkg/validate"
	"github.com/edgemirror/image-cache-server/pkg/web"
)

var cli struct {
	// Metadata database backends
	DBSqlite   string `env:"DB_SQLITE" required:"" xor:"db" help:"SQLite filepath e.g. /tmp/db.sqlite"`
	DBPostgres string `env:"DB_POSTGRES" required:"" xor:"db" help:"Postgres URI e.g. postgresql://blah"`

	// Blob storage backends
	StorageDisk   string `env:"STORAGE_DISK" required:"" xor:"storage" help:"Use disk storage for image data e.g. /var/cache/images"`
	StorageS3     string `env:"STORAGE_S3" required:"" xor:"storage" name:"storage-s3" help:"Use S3 storage for image data e.g. s3://bucket"`
	StorageAzBlob string `env:"STORAGE_AZBLOB" required:"" xor:"storage" help:"Use Azure blob storage for image data, connection string with Container="`

	// Misc
	LogLevel             string        `env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error"`
	ListenAddress        string        `env:"LISTEN_ADDR" default:"0.0.0.0:8080" help:"Listen address e.g. 0.0.0.0:8080"`
	MetricsListenAddress string        `env:"METRICS_LISTEN_ADDR" default:"0.0.0.0:9102" help:"Listen address for prometheus metrics e.g. 0.0.0.0:9102"`
	BaseURL              string        `env:"BASE_URL" help:"Public base URL for cached image links, defaults to the request host"`
	FetchTimeout         time.Duration `env:"FETCH_TIMEOUT" default:"30s" help:"Timeout for each fetch attempt against the source CDN"`
	KeepParams           string        `env:"KEEP_PARAMS" default:"format,quality" help:"Comma separated query params retained on the first fetch attempt"`
	Debug                bool          `env:"DEBUG" help:"Enable debug mode"`
}

func main() {
	kong.Parse(&cli)

	logging.SetupLogging(cli.LogLevel)

	var databaseBackendName, dbConnectionString string
	if cli.DBSqlite != "" {
		databaseBackendName = "sqlite"
		dbConnectionString = cli.DBSqlite
	}
	if cli.DBPostgres != "" {
		databaseBackendName = "postgres"
		dbConnectionString = cli.DBPostgres
	}

	var storageBackendName, storageConnectionString string
	if cli.StorageDisk != "" {
		storageBackendName = "disk"
		storageConnectionString = cli.StorageDisk
	}
	if cli.StorageS3 != "" {
		storageBackendName = "s3"
		storageConnectionString = cli.StorageS3
	}
	if cli.StorageAzBlob != "" {
		storageBackendName = "azureblob"
		storageConnectionString = cli.StorageAzBlob
	}

	dbBackend, err := database.GetBackend(databaseBackendName, dbConnectionString)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initiate database backend")
	}

	storageBackend, err := storage.GetStorageBackend(storageBackendName, storageConnectionString)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initiate storage backend")
	}

	fetchConfig := fetch.DefaultConfig()
	fetchConfig.Timeout = cli.FetchTimeout
	if cli.KeepParams != "" {
		fetchConfig.KeepParams = utils.CleanStringSlice(strings.Split(cli.KeepParams, ","))
	}

	handlers := web.Handlers{
		Cache:     gateway.New(storageBackend, dbBackend),
		Fetcher:   fetch.New(fetchConfig),
		Validator: validate.Default(),
		BaseURL:   cli.BaseURL,
		Debug:     cli.Debug,
	}

	router := web.GetRouter(cli.MetricsListenAddress, handlers, true)

	log.Info().Msgf("Listening on %s", cli.ListenAddress)
	if err = router.Run(cli.ListenAddress); err != nil {
		log.Fatal().Err(err).Msg("Failed HTTP server loop")
	}
}
