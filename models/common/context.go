package common

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/minio/minio-go/v7"
	"github.com/op/go-logging"
	"github.com/storagestats/gcs-stats/network"
	"github.com/storagestats/gcs-stats/util/logger"
	"google.golang.org/api/option"
)

// Context holds the config, logger and service clients every app
// needs. Create one per process and share it.
type Context struct {
	Config         *Config
	Logger         *logging.Logger
	NSQClient      *network.NSQClient
	RedisClient    *network.RedisClient
	S3Client       *minio.Client
	BigQueryClient *bigquery.Client
}

// NewContext builds a Context from the config named in the
// environment. It panics on failure.
func NewContext() *Context {
	_context, err := NewContextWithConfig(context.Background(), NewConfig())
	if err != nil {
		panic(fmt.Sprintf("Could not initialize context: %v", err))
	}
	return _context
}

// NewContextWithConfig builds a Context from config. The outcome
// journal is optional: RedisClient is nil when REDIS_URL is not set.
func NewContextWithConfig(ctx context.Context, config *Config) (*Context, error) {
	_logger, _ := logger.InitLogger(config.LogDir, config.LogLevel)
	s3Client, err := getS3Client(config, _logger)
	if err != nil {
		return nil, fmt.Errorf("Could not initialize S3 client: %v", err)
	}
	bqClient, err := getBigQueryClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("Could not initialize BigQuery client: %v", err)
	}
	return &Context{
		Config:         config,
		Logger:         _logger,
		NSQClient:      network.NewNSQClient(config.NsqURL),
		RedisClient:    getRedisClient(config),
		S3Client:       s3Client,
		BigQueryClient: bqClient,
	}, nil
}

func getRedisClient(config *Config) *network.RedisClient {
	if config.RedisURL == "" {
		return nil
	}
	return network.NewRedisClient(
		config.RedisURL,
		config.RedisPassword,
		config.RedisDefaultDB,
		config.OutcomeTTL)
}

func getS3Client(config *Config, _logger *logging.Logger) (*minio.Client, error) {
	client, err := network.NewMinioClient(
		config.S3Host,
		config.S3KeyID,
		config.S3SecretKey,
		config.S3Region,
		config.S3UseSSL)
	if err != nil {
		return nil, err
	}
	if config.S3Trace {
		client.TraceOn(logger.NewMinioTracer(_logger))
	}
	return client, nil
}

// An explicit endpoint means we're talking to an emulator, which
// doesn't authenticate.
func getBigQueryClient(ctx context.Context, config *Config) (*bigquery.Client, error) {
	opts := make([]option.ClientOption, 0)
	if config.BigQueryEndpoint != "" {
		opts = append(opts, option.WithEndpoint(config.BigQueryEndpoint), option.WithoutAuthentication())
	} else if config.BigQueryCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.BigQueryCredentialsFile))
	}
	project := config.BigQueryProject
	if project == "" {
		project = bigquery.DetectProjectID
	}
	return bigquery.NewClient(ctx, project, opts...)
}

// Inserter returns the streaming inserter for the configured table.
func (c *Context) Inserter() *bigquery.Inserter {
	return network.TableInserter(c.BigQueryClient, c.Config.Dataset, c.Config.Table)
}

// Close releases the service clients.
func (c *Context) Close() {
	if c.BigQueryClient != nil {
		if err := c.BigQueryClient.Close(); err != nil {
			c.Logger.Warningf("Closing BigQuery client: %v", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warningf("Closing Redis client: %v", err)
		}
	}
}
