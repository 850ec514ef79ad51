package common_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/op/go-logging"
	"github.com/storagestats/gcs-stats/constants"
	"github.com/storagestats/gcs-stats/models/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEnvFile = `DATASET=storage_stats
TABLE=daily_bucket_bytes
LOGS_BUCKET=acme-storage-logs
PROCESSED_BUCKET=acme-storage-logs-processed
ERRORS_BUCKET=acme-storage-logs-errors
USAGE_LOGS_BUCKET=acme-usage-logs
BIGQUERY_PROJECT=acme-billing
LOG_LEVEL=DEBUG
S3_HOST=localhost:9899
S3_KEY=key
S3_SECRET=secret
S3_USE_SSL=false
REDIS_URL=localhost:6379
REDIS_PASSWORD=hunter2
REDIS_DEFAULT_DB=2
NSQ_URL=http://localhost:4151
NSQ_LOOKUPD=localhost:4161
OUTCOME_TTL=24h
`

func writeEnvFile(t *testing.T, name, contents string) string {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ".env."+name), []byte(contents), 0644)
	require.Nil(t, err)
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeEnvFile(t, "test", testEnvFile)
	config, err := common.LoadConfig(dir, "test")
	require.Nil(t, err)
	require.NotNil(t, config)

	assert.Equal(t, "test", config.ConfigName)
	assert.Equal(t, "storage_stats", config.Dataset)
	assert.Equal(t, "daily_bucket_bytes", config.Table)
	assert.Equal(t, "acme-storage-logs", config.LogsBucket)
	assert.Equal(t, "acme-storage-logs-processed", config.ProcessedBucket)
	assert.Equal(t, "acme-storage-logs-errors", config.ErrorsBucket)
	assert.Equal(t, "acme-usage-logs", config.UsageLogsBucket)
	assert.Equal(t, "acme-billing", config.BigQueryProject)
	assert.Equal(t, logging.DEBUG, config.LogLevel)
	assert.Equal(t, "localhost:9899", config.S3Host)
	assert.False(t, config.S3UseSSL)
	assert.Equal(t, 2, config.RedisDefaultDB)
	assert.Equal(t, 24*time.Hour, config.OutcomeTTL)

	// Defaults
	assert.Equal(t, constants.DefaultNSQTopic, config.NsqTopic)
	assert.Equal(t, constants.DefaultNSQChannel, config.NsqChannel)
	assert.Equal(t, "auto", config.S3Region)

	buckets := config.Buckets()
	assert.Equal(t, config.LogsBucket, buckets.Logs)
	assert.Equal(t, config.UsageLogsBucket, buckets.UsageLogs)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeEnvFile(t, "test", testEnvFile)
	t.Setenv("GCS_STATS_TABLE", "override_table")
	config, err := common.LoadConfig(dir, "test")
	require.Nil(t, err)
	assert.Equal(t, "override_table", config.Table)
}

func TestLoadConfigFromEnvOnly(t *testing.T) {
	t.Setenv("GCS_STATS_DATASET", "ds")
	t.Setenv("GCS_STATS_TABLE", "tbl")
	t.Setenv("GCS_STATS_LOGS_BUCKET", "in")
	t.Setenv("GCS_STATS_PROCESSED_BUCKET", "done")
	t.Setenv("GCS_STATS_ERRORS_BUCKET", "bad")
	t.Setenv("GCS_STATS_USAGE_LOGS_BUCKET", "usage")
	config, err := common.LoadConfig("", "")
	require.Nil(t, err)
	assert.Equal(t, "ds", config.Dataset)
	assert.Equal(t, "usage", config.UsageLogsBucket)
	assert.Equal(t, "storage.googleapis.com", config.S3Host)
	assert.True(t, config.S3UseSSL)
}

func TestLoadConfigMissingSettings(t *testing.T) {
	dir := writeEnvFile(t, "partial", "DATASET=storage_stats\nLOGS_BUCKET=logs\n")
	_, err := common.LoadConfig(dir, "partial")
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "TABLE")

	dir = writeEnvFile(t, "nobuckets", "DATASET=ds\nTABLE=tbl\n")
	_, err = common.LoadConfig(dir, "nobuckets")
	assert.NotNil(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := common.LoadConfig(t.TempDir(), "nope")
	assert.NotNil(t, err)

	_, err = common.LoadConfig(t.TempDir(), "")
	assert.NotNil(t, err)
}

func TestConfigToJSONMasksSecrets(t *testing.T) {
	dir := writeEnvFile(t, "test", testEnvFile)
	config, err := common.LoadConfig(dir, "test")
	require.Nil(t, err)
	data := config.ToJSON()
	assert.NotContains(t, data, "hunter2")
	assert.NotContains(t, data, `"secret"`)
	assert.Contains(t, data, "acme-storage-logs")
	// The original is untouched.
	assert.Equal(t, "hunter2", config.RedisPassword)
}
