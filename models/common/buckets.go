package common

import (
	"fmt"

	"github.com/storagestats/gcs-stats/constants"
)

// Buckets names the four logical buckets the pipeline works with.
// Files arrive in Logs and leave for one of the other three.
type Buckets struct {
	Logs      string
	Processed string
	Errors    string
	UsageLogs string
}

// ForLocation returns the bucket that holds files in the specified
// terminal location. LocationDeleted has no bucket.
func (b Buckets) ForLocation(location string) (string, error) {
	switch location {
	case constants.LocationProcessed:
		return b.Processed, nil
	case constants.LocationErrors:
		return b.Errors, nil
	case constants.LocationUsageArchive:
		return b.UsageLogs, nil
	}
	return "", fmt.Errorf("no bucket for location %q", location)
}

// Validate returns an error if any bucket is unnamed or if the logs
// bucket doubles as a destination. Moving a file onto itself would
// copy it and then delete the only copy.
func (b Buckets) Validate() error {
	named := map[string]string{
		constants.BucketRoleLogs:      b.Logs,
		constants.BucketRoleProcessed: b.Processed,
		constants.BucketRoleErrors:    b.Errors,
		constants.BucketRoleUsage:     b.UsageLogs,
	}
	for role, name := range named {
		if name == "" {
			return fmt.Errorf("%s bucket is not configured", role)
		}
	}
	for _, dest := range []string{b.Processed, b.Errors, b.UsageLogs} {
		if dest == b.Logs {
			return fmt.Errorf("destination bucket %s is the same as the logs bucket", dest)
		}
	}
	return nil
}
