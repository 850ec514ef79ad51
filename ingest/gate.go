package ingest

import (
	"context"

	"github.com/storagestats/gcs-stats/models/service"
)

// Gate decides whether a log file was already ingested. A copy of the
// file in the processed bucket is the marker. The check is not atomic
// with the move that creates the marker, so two concurrent runs for
// the same file can both get through.
type Gate struct {
	store           ObjectStore
	processedBucket string
}

func NewGate(store ObjectStore, processedBucket string) *Gate {
	return &Gate{
		store:           store,
		processedBucket: processedBucket,
	}
}

// AlreadyProcessed returns true if objectID is in the processed bucket.
func (g *Gate) AlreadyProcessed(ctx context.Context, objectID string) (bool, error) {
	exists, err := g.store.Exists(ctx, g.processedBucket, objectID)
	if err != nil {
		return false, service.NewError(service.ErrExistenceCheckFailed, objectID,
			"could not check processed bucket "+g.processedBucket, err)
	}
	return exists, nil
}
