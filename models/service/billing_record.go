package service

import (
	"time"

	"cloud.google.com/go/civil"
)

// BillingRecord is the single data point extracted from one daily
// storage log. It's written to the warehouse at most once per Filename.
type BillingRecord struct {
	// ProjectID is empty when the log name carried no PROJECT_ prefix.
	ProjectID        string
	Bucket           string
	StorageByteHours int64
	// Bytes is StorageByteHours / 24, rounded half up.
	Bytes      int64
	Date       civil.Date
	IngestTime time.Time
	Filename   string
}

// HasProject returns true if the record carries an explicit project id.
func (r *BillingRecord) HasProject() bool {
	return r.ProjectID != ""
}
