package ingest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/storagestats/gcs-stats/ingest"
	"github.com/storagestats/gcs-stats/models/service"
	"github.com/storagestats/gcs-stats/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateAlreadyProcessed(t *testing.T) {
	store := testutil.NewFakeStore()
	gate := ingest.NewGate(store, testutil.ProcessedBucket)

	processed, err := gate.AlreadyProcessed(context.Background(), testutil.PrefixedLogID)
	require.Nil(t, err)
	assert.False(t, processed)

	// A copy in some other bucket doesn't count.
	store.Put(testutil.ErrorsBucket, testutil.PrefixedLogID, nil)
	processed, err = gate.AlreadyProcessed(context.Background(), testutil.PrefixedLogID)
	require.Nil(t, err)
	assert.False(t, processed)

	store.Put(testutil.ProcessedBucket, testutil.PrefixedLogID, nil)
	processed, err = gate.AlreadyProcessed(context.Background(), testutil.PrefixedLogID)
	require.Nil(t, err)
	assert.True(t, processed)
}

func TestGateCheckFails(t *testing.T) {
	store := testutil.NewFakeStore()
	store.ExistsErr = errors.New("forbidden")
	gate := ingest.NewGate(store, testutil.ProcessedBucket)

	processed, err := gate.AlreadyProcessed(context.Background(), "x_v0")
	require.NotNil(t, err)
	assert.False(t, processed)
	assert.True(t, errors.Is(err, service.ErrExistenceCheckFailed))
	assert.Contains(t, err.Error(), "forbidden")
}
