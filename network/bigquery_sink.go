package network

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/storagestats/gcs-stats/models/service"
)

// RowInserter is the part of *bigquery.Inserter we use. Defined so we
// can mock it in tests.
type RowInserter interface {
	Put(ctx context.Context, src interface{}) error
}

// BillingRow is one row of the warehouse table. Column names are part
// of the table's fixed schema.
type BillingRow struct {
	ProjectID        bigquery.NullString `bigquery:"project_id"`
	Bucket           string              `bigquery:"bucket"`
	StorageByteHours int64               `bigquery:"storage_byte_hours"`
	Bytes            int64               `bigquery:"bytes"`
	Date             civil.Date          `bigquery:"date"`
	UpdateTime       time.Time           `bigquery:"update_time"`
	Filename         string              `bigquery:"filename"`
}

// NewBillingRow converts a BillingRecord to a warehouse row. A record
// without a project id gets a NULL project_id.
func NewBillingRow(record *service.BillingRecord) *BillingRow {
	return &BillingRow{
		ProjectID:        bigquery.NullString{StringVal: record.ProjectID, Valid: record.HasProject()},
		Bucket:           record.Bucket,
		StorageByteHours: record.StorageByteHours,
		Bytes:            record.Bytes,
		Date:             record.Date,
		UpdateTime:       record.IngestTime,
		Filename:         record.Filename,
	}
}

// Save implements bigquery.ValueSaver. The empty insert id tells the
// client library to generate one.
func (r *BillingRow) Save() (map[string]bigquery.Value, string, error) {
	var projectID bigquery.Value
	if r.ProjectID.Valid {
		projectID = r.ProjectID.StringVal
	}
	return map[string]bigquery.Value{
		"project_id":         projectID,
		"bucket":             r.Bucket,
		"storage_byte_hours": r.StorageByteHours,
		"bytes":              r.Bytes,
		"date":               r.Date,
		"update_time":        r.UpdateTime,
		"filename":           r.Filename,
	}, "", nil
}

// BigQuerySink appends billing rows to a single warehouse table. It
// never updates or upserts. Keeping duplicates out is the caller's job.
type BigQuerySink struct {
	inserter RowInserter
}

func NewBigQuerySink(inserter RowInserter) *BigQuerySink {
	return &BigQuerySink{inserter: inserter}
}

// TableInserter returns the streaming inserter for dataset.table.
func TableInserter(client *bigquery.Client, dataset, table string) *bigquery.Inserter {
	return client.Dataset(dataset).Table(table).Inserter()
}

// Insert appends one row for record.
func (s *BigQuerySink) Insert(ctx context.Context, record *service.BillingRecord) error {
	err := s.inserter.Put(ctx, NewBillingRow(record))
	if err == nil {
		return nil
	}
	var multiErr bigquery.PutMultiError
	if errors.As(err, &multiErr) && len(multiErr) > 0 {
		return fmt.Errorf("row for %s rejected: %s", record.Filename, multiErr[0].Error())
	}
	return fmt.Errorf("insert row for %s: %w", record.Filename, err)
}
