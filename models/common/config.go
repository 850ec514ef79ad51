package common

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/op/go-logging"
	"github.com/spf13/viper"
	"github.com/storagestats/gcs-stats/constants"
	"github.com/storagestats/gcs-stats/util"
	"github.com/storagestats/gcs-stats/util/logger"
)

// EnvPrefix is prepended to every setting name when it is read from
// the environment. DATASET in a .env file is GCS_STATS_DATASET in the
// environment.
const EnvPrefix = "GCS_STATS"

type Config struct {
	BigQueryCredentialsFile string
	BigQueryEndpoint        string
	BigQueryProject         string
	ConfigName              string
	Dataset                 string
	ErrorsBucket            string
	LogDir                  string
	LogLevel                logging.Level
	LogsBucket              string
	NsqChannel              string
	NsqLookupd              string
	NsqTopic                string
	NsqURL                  string
	OutcomeTTL              time.Duration
	ProcessedBucket         string
	RedisDefaultDB          int
	RedisPassword           string
	RedisURL                string
	S3Host                  string
	S3KeyID                 string
	S3Region                string
	S3SecretKey             string
	S3Trace                 bool
	S3UseSSL                bool
	Table                   string
	UsageLogsBucket         string
}

// NewConfig returns a config based on env vars GCS_STATS_CONFIG_DIR
// and GCS_STATS_CONFIG. It panics if the config is incomplete, since
// none of our apps can do anything useful without one.
func NewConfig() *Config {
	config, err := LoadConfig(os.Getenv(constants.EnvConfigDir), os.Getenv(constants.EnvConfigName))
	if err != nil {
		panic(fmt.Errorf("Fatal error config file: %s \n", err))
	}
	return config
}

// LoadConfig reads .env.<configName> from configDir, then lets
// GCS_STATS_* environment variables override what it found. If
// configDir is empty, settings come from the environment alone.
func LoadConfig(configDir, configName string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if configDir != "" {
		if configName == "" {
			return nil, fmt.Errorf("config dir %s given without a config name", configDir)
		}
		dir, err := util.ExpandTilde(configDir)
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName(".env." + configName)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	config := &Config{
		BigQueryCredentialsFile: v.GetString("BIGQUERY_CREDENTIALS_FILE"),
		BigQueryEndpoint:        v.GetString("BIGQUERY_ENDPOINT"),
		BigQueryProject:         v.GetString("BIGQUERY_PROJECT"),
		ConfigName:              configName,
		Dataset:                 v.GetString("DATASET"),
		ErrorsBucket:            v.GetString("ERRORS_BUCKET"),
		LogDir:                  v.GetString("LOG_DIR"),
		LogLevel:                logger.ParseLevel(v.GetString("LOG_LEVEL")),
		LogsBucket:              v.GetString("LOGS_BUCKET"),
		NsqChannel:              v.GetString("NSQ_CHANNEL"),
		NsqLookupd:              v.GetString("NSQ_LOOKUPD"),
		NsqTopic:                v.GetString("NSQ_TOPIC"),
		NsqURL:                  v.GetString("NSQ_URL"),
		OutcomeTTL:              v.GetDuration("OUTCOME_TTL"),
		ProcessedBucket:         v.GetString("PROCESSED_BUCKET"),
		RedisDefaultDB:          v.GetInt("REDIS_DEFAULT_DB"),
		RedisPassword:           v.GetString("REDIS_PASSWORD"),
		RedisURL:                v.GetString("REDIS_URL"),
		S3Host:                  v.GetString("S3_HOST"),
		S3KeyID:                 v.GetString("S3_KEY"),
		S3Region:                v.GetString("S3_REGION"),
		S3SecretKey:             v.GetString("S3_SECRET"),
		S3Trace:                 v.GetBool("S3_TRACE"),
		S3UseSSL:                v.GetBool("S3_USE_SSL"),
		Table:                   v.GetString("TABLE"),
		UsageLogsBucket:         v.GetString("USAGE_LOGS_BUCKET"),
	}
	if err := config.expandPaths(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("NSQ_CHANNEL", constants.DefaultNSQChannel)
	v.SetDefault("NSQ_TOPIC", constants.DefaultNSQTopic)
	v.SetDefault("OUTCOME_TTL", "720h")
	v.SetDefault("S3_HOST", "storage.googleapis.com")
	v.SetDefault("S3_REGION", "auto")
	v.SetDefault("S3_USE_SSL", true)
}

// Expand ~ to home dir in path settings.
func (c *Config) expandPaths() error {
	dir, err := util.ExpandTilde(c.LogDir)
	if err != nil {
		return err
	}
	c.LogDir = dir
	credentials, err := util.ExpandTilde(c.BigQueryCredentialsFile)
	if err != nil {
		return err
	}
	c.BigQueryCredentialsFile = credentials
	return nil
}

// Validate makes sure every setting the pipeline can't run without
// is present.
func (c *Config) Validate() error {
	required := map[string]string{
		"DATASET": c.Dataset,
		"TABLE":   c.Table,
	}
	missing := make([]string, 0)
	for name, value := range required {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required setting(s): %s", strings.Join(missing, ", "))
	}
	return c.Buckets().Validate()
}

// Buckets returns the four bucket names.
func (c *Config) Buckets() Buckets {
	return Buckets{
		Logs:      c.LogsBucket,
		Processed: c.ProcessedBucket,
		Errors:    c.ErrorsBucket,
		UsageLogs: c.UsageLogsBucket,
	}
}

// ToJSON returns the config as JSON, with secrets masked, for
// logging at startup.
func (c *Config) ToJSON() string {
	masked := *c
	if masked.S3SecretKey != "" {
		masked.S3SecretKey = "********"
	}
	if masked.RedisPassword != "" {
		masked.RedisPassword = "********"
	}
	data, _ := json.Marshal(masked)
	return string(data)
}
