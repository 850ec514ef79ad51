package workers_test

import (
	"testing"
	"time"

	"github.com/storagestats/gcs-stats/workers"
	"github.com/stretchr/testify/assert"
)

func TestTaskFinish(t *testing.T) {
	delegate := newRecordingDelegate()
	task := workers.NewTask(newMessage(t, "x_v0", delegate), "x_v0")
	assert.False(t, task.StartCalled())

	task.NSQStart(10 * time.Millisecond)
	assert.True(t, task.StartCalled())
	assert.True(t, task.NSQMessage.IsAutoResponseDisabled())

	time.Sleep(50 * time.Millisecond)
	task.NSQFinish()
	delegate.wait(t)
	assert.Eventually(t, task.TickerStopped, time.Second, 5*time.Millisecond)

	finished, requeued := delegate.counts()
	assert.Equal(t, 1, finished)
	assert.Equal(t, 0, requeued)
	delegate.mutex.Lock()
	assert.True(t, delegate.touched > 0)
	delegate.mutex.Unlock()
}

func TestTaskRequeue(t *testing.T) {
	delegate := newRecordingDelegate()
	task := workers.NewTask(newMessage(t, "x_v0", delegate), "x_v0")
	task.NSQStart(time.Minute)
	task.NSQRequeue(time.Second)
	delegate.wait(t)
	assert.Eventually(t, task.TickerStopped, time.Second, 5*time.Millisecond)

	finished, requeued := delegate.counts()
	assert.Equal(t, 0, finished)
	assert.Equal(t, 1, requeued)

	// A second answer is ignored.
	task.NSQFinish()
	finished, _ = delegate.counts()
	assert.Equal(t, 0, finished)
}
