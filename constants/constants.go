package constants

const (
	ClassStorageLog   = "storage_log"
	ClassUsageLog     = "usage_log"
	ClassUnrecognized = "unrecognized"

	// Terminal locations. Every invocation leaves the source file in
	// exactly one of these.
	LocationProcessed    = "processed"
	LocationErrors       = "errors"
	LocationUsageArchive = "usage_archive"
	LocationDeleted      = "deleted_duplicate"

	// BucketRole names identify the four logical buckets in config
	// and log output.
	BucketRoleLogs      = "logs"
	BucketRoleProcessed = "processed"
	BucketRoleErrors    = "errors"
	BucketRoleUsage     = "usage_logs"

	NotificationObjectID = "objectId"

	DefaultNSQTopic   = "gcs_storage_log_notifications"
	DefaultNSQChannel = "gcs_stats_worker_chan"

	// HoursPerDay converts storage byte-hours into average daily bytes.
	HoursPerDay = 24

	EnvConfigDir  = "GCS_STATS_CONFIG_DIR"
	EnvConfigName = "GCS_STATS_CONFIG"
)

// Locations lists all valid terminal locations.
var Locations = []string{
	LocationProcessed,
	LocationErrors,
	LocationUsageArchive,
	LocationDeleted,
}
