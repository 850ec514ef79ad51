package testutil

import (
	"github.com/storagestats/gcs-stats/models/common"
)

const (
	LogsBucket      = "test-storage-logs"
	ProcessedBucket = "test-storage-logs-processed"
	ErrorsBucket    = "test-storage-logs-errors"
	UsageBucket     = "test-usage-logs"

	PrefixedLogID = "PROJECT_myproj_BUCKET_mybucket_storage_2023_05_01_00_00_00_abc123_v0"
	DefaultLogID  = "mybucket_storage_2023_05_01_00_00_00_abc123_v0"
	UsageLogID    = "somebucket_usage_2023_05_01_00_00_00_xyz_v0"
	NotALogID     = "not-a-log-file.txt"
)

// StorageLogContent is a well-formed storage log with 2400 byte-hours.
var StorageLogContent = []byte("\"bucket\",\"storage_byte_hours\"\n\"mybucket\",\"2400\"\n")

// TestBuckets returns a full set of distinct bucket names.
func TestBuckets() common.Buckets {
	return common.Buckets{
		Logs:      LogsBucket,
		Processed: ProcessedBucket,
		Errors:    ErrorsBucket,
		UsageLogs: UsageBucket,
	}
}
