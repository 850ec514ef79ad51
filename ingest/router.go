package ingest

import (
	"context"

	"github.com/storagestats/gcs-stats/models/common"
	"github.com/storagestats/gcs-stats/models/service"
)

// Router takes files out of the logs bucket. Every file leaves by
// exactly one of Relocate or Discard.
type Router struct {
	store   ObjectStore
	buckets common.Buckets
}

func NewRouter(store ObjectStore, buckets common.Buckets) *Router {
	return &Router{
		store:   store,
		buckets: buckets,
	}
}

// Relocate moves objectID from the logs bucket to the bucket for
// location, which must be one of constants.LocationProcessed,
// LocationErrors or LocationUsageArchive.
func (r *Router) Relocate(ctx context.Context, objectID, location string) error {
	dst, err := r.buckets.ForLocation(location)
	if err != nil {
		return service.NewError(service.ErrRelocationFailed, objectID, "bad destination", err)
	}
	err = r.store.Move(ctx, r.buckets.Logs, objectID, dst)
	if err != nil {
		return service.NewError(service.ErrRelocationFailed, objectID, "move to "+location+" failed", err)
	}
	return nil
}

// Discard deletes objectID from the logs bucket. Use this only for
// files that already have a processed copy.
func (r *Router) Discard(ctx context.Context, objectID string) error {
	err := r.store.Delete(ctx, r.buckets.Logs, objectID)
	if err != nil {
		return service.NewError(service.ErrRelocationFailed, objectID, "could not delete duplicate", err)
	}
	return nil
}
