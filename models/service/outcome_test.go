package service_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/storagestats/gcs-stats/constants"
	"github.com/storagestats/gcs-stats/models/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutcome(t *testing.T) {
	o := service.NewOutcome("bucket_storage_2023_05_01_00_00_00_abc_v0")
	require.NotNil(t, o)
	assert.Len(t, o.InvocationID, 36)
	assert.NotEqual(t, o.InvocationID, service.NewOutcome("x").InvocationID)
	assert.Equal(t, "bucket_storage_2023_05_01_00_00_00_abc_v0", o.ObjectID)
	assert.NotEmpty(t, o.Host)
	assert.NotZero(t, o.Pid)
	assert.Empty(t, o.Errors)
}

func TestOutcomeTiming(t *testing.T) {
	o := service.NewOutcome("x")
	assert.Equal(t, time.Duration(0), o.RunTime())
	assert.False(t, o.Finished())
	o.Start()
	time.Sleep(5 * time.Millisecond)
	o.Finish()
	assert.True(t, o.Finished())
	assert.True(t, o.RunTime() >= 5*time.Millisecond)
}

func TestOutcomeSucceeded(t *testing.T) {
	o := service.NewOutcome("x")
	o.Start()
	o.Location = constants.LocationProcessed
	assert.False(t, o.Succeeded())
	o.Finish()
	assert.True(t, o.Succeeded())

	o.AddError(service.NewProcessingError("x", fmt.Errorf("oops"), false))
	assert.False(t, o.Succeeded())
	assert.True(t, o.HasErrors())
	assert.False(t, o.HasFatalErrors())

	o.AddError(service.NewProcessingError("x", fmt.Errorf("move failed"), true))
	assert.True(t, o.HasFatalErrors())
	assert.Equal(t, "oops | move failed", o.ErrorMessage())
}

func TestOutcomeJSON(t *testing.T) {
	o := service.NewOutcome("x")
	o.Classification = constants.ClassStorageLog
	o.State = constants.StateTerminal
	o.Location = constants.LocationErrors
	o.AddError(service.NewProcessingError("x", fmt.Errorf("bad row"), false))
	o.Start()
	o.Finish()

	data, err := o.ToJSON()
	require.Nil(t, err)
	restored, err := service.OutcomeFromJSON(data)
	require.Nil(t, err)
	assert.Equal(t, o.InvocationID, restored.InvocationID)
	assert.Equal(t, o.Location, restored.Location)
	assert.Equal(t, "bad row", restored.ErrorMessage())

	// The mutex must be initialized after deserialization.
	restored.AddError(service.NewProcessingError("x", fmt.Errorf("again"), false))
	assert.Len(t, restored.Errors, 2)

	_, err = service.OutcomeFromJSON("{not json")
	assert.NotNil(t, err)
}
