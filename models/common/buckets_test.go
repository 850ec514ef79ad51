package common_test

import (
	"testing"

	"github.com/storagestats/gcs-stats/constants"
	"github.com/storagestats/gcs-stats/models/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBuckets = common.Buckets{
	Logs:      "logs",
	Processed: "logs-processed",
	Errors:    "logs-errors",
	UsageLogs: "usage-logs",
}

func TestBucketsForLocation(t *testing.T) {
	bucket, err := testBuckets.ForLocation(constants.LocationProcessed)
	require.Nil(t, err)
	assert.Equal(t, "logs-processed", bucket)

	bucket, err = testBuckets.ForLocation(constants.LocationErrors)
	require.Nil(t, err)
	assert.Equal(t, "logs-errors", bucket)

	bucket, err = testBuckets.ForLocation(constants.LocationUsageArchive)
	require.Nil(t, err)
	assert.Equal(t, "usage-logs", bucket)

	_, err = testBuckets.ForLocation(constants.LocationDeleted)
	assert.NotNil(t, err)
	_, err = testBuckets.ForLocation("nowhere")
	assert.NotNil(t, err)
}

func TestBucketsValidate(t *testing.T) {
	assert.Nil(t, testBuckets.Validate())

	missing := testBuckets
	missing.Errors = ""
	assert.NotNil(t, missing.Validate())

	loop := testBuckets
	loop.Processed = loop.Logs
	assert.NotNil(t, loop.Validate())
}
