package ingest

import (
	"context"

	"github.com/storagestats/gcs-stats/models/service"
)

// ObjectStore is what the pipeline needs from the object store.
// network.MinioStore satisfies it.
type ObjectStore interface {
	Exists(ctx context.Context, bucket, objectID string) (bool, error)
	Download(ctx context.Context, bucket, objectID string) ([]byte, error)
	Move(ctx context.Context, srcBucket, objectID, dstBucket string) error
	Delete(ctx context.Context, bucket, objectID string) error
}

// Sink appends one billing record to the warehouse.
// network.BigQuerySink satisfies it.
type Sink interface {
	Insert(ctx context.Context, record *service.BillingRecord) error
}

// Journal keeps outcomes for operators. network.RedisClient
// satisfies it.
type Journal interface {
	OutcomeSave(outcome *service.Outcome) error
}
