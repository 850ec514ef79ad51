package workers_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/storagestats/gcs-stats/constants"
	"github.com/storagestats/gcs-stats/ingest"
	"github.com/storagestats/gcs-stats/models/service"
	"github.com/storagestats/gcs-stats/util/logger"
	"github.com/storagestats/gcs-stats/util/testutil"
	"github.com/storagestats/gcs-stats/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDelegate stands in for the nsqd connection.
type recordingDelegate struct {
	mutex    sync.Mutex
	finished int
	requeued int
	touched  int
	done     chan struct{}
}

func newRecordingDelegate() *recordingDelegate {
	return &recordingDelegate{done: make(chan struct{}, 10)}
}

func (d *recordingDelegate) OnFinish(m *nsq.Message) {
	d.mutex.Lock()
	d.finished++
	d.mutex.Unlock()
	d.done <- struct{}{}
}

func (d *recordingDelegate) OnRequeue(m *nsq.Message, delay time.Duration, backoff bool) {
	d.mutex.Lock()
	d.requeued++
	d.mutex.Unlock()
	d.done <- struct{}{}
}

func (d *recordingDelegate) OnTouch(m *nsq.Message) {
	d.mutex.Lock()
	d.touched++
	d.mutex.Unlock()
}

func (d *recordingDelegate) counts() (int, int) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.finished, d.requeued
}

func (d *recordingDelegate) wait(t *testing.T) {
	select {
	case <-d.done:
	case <-time.After(5 * time.Second):
		t.Fatal("message was never answered")
	}
}

func newMessage(t *testing.T, objectID string, delegate nsq.MessageDelegate) *nsq.Message {
	body, err := service.NewNotification(objectID).ToJSON()
	require.Nil(t, err)
	var id nsq.MessageID
	copy(id[:], "0123456789abcdef")
	message := nsq.NewMessage(id, body)
	message.Delegate = delegate
	return message
}

func testSettings() *workers.Settings {
	return &workers.Settings{
		ChannelBufferSize: 5,
		MaxAttempts:       3,
		NSQChannel:        constants.DefaultNSQChannel,
		NSQTopic:          constants.DefaultNSQTopic,
		NumberOfWorkers:   2,
		RequeueTimeout:    time.Second,
		TouchInterval:     time.Minute,
	}
}

func newTestWorker(store *testutil.FakeStore, sink *testutil.FakeSink) *workers.LogFileWorker {
	log := logger.Discard("test_worker")
	processor := ingest.NewProcessor(store, sink, nil, testutil.TestBuckets(), log)
	return workers.NewLogFileWorker(testSettings(), processor, log)
}

func TestHandleMessageSuccess(t *testing.T) {
	store := testutil.NewFakeStore()
	sink := &testutil.FakeSink{}
	store.Put(testutil.LogsBucket, testutil.PrefixedLogID, testutil.StorageLogContent)
	worker := newTestWorker(store, sink)
	defer worker.Stop()

	delegate := newRecordingDelegate()
	message := newMessage(t, testutil.PrefixedLogID, delegate)
	require.Nil(t, worker.HandleMessage(message))
	delegate.wait(t)

	finished, requeued := delegate.counts()
	assert.Equal(t, 1, finished)
	assert.Equal(t, 0, requeued)
	assert.Equal(t, 1, sink.Calls())
	assert.True(t, store.Has(testutil.ProcessedBucket, testutil.PrefixedLogID))
	assert.True(t, message.IsAutoResponseDisabled())
}

func TestHandleMessageRequeuesUncompensatedFailure(t *testing.T) {
	store := testutil.NewFakeStore()
	store.MoveErrs[testutil.UsageBucket] = assert.AnError
	store.Put(testutil.LogsBucket, testutil.UsageLogID, []byte("usage"))
	worker := newTestWorker(store, &testutil.FakeSink{})
	defer worker.Stop()

	delegate := newRecordingDelegate()
	require.Nil(t, worker.HandleMessage(newMessage(t, testutil.UsageLogID, delegate)))
	delegate.wait(t)

	finished, requeued := delegate.counts()
	assert.Equal(t, 0, finished)
	assert.Equal(t, 1, requeued)
	assert.True(t, store.Has(testutil.LogsBucket, testutil.UsageLogID))
}

func TestHandleMessageFinishesCompensatedFailure(t *testing.T) {
	store := testutil.NewFakeStore()
	store.Put(testutil.LogsBucket, testutil.NotALogID, []byte("junk"))
	worker := newTestWorker(store, &testutil.FakeSink{})
	defer worker.Stop()

	delegate := newRecordingDelegate()
	require.Nil(t, worker.HandleMessage(newMessage(t, testutil.NotALogID, delegate)))
	delegate.wait(t)

	finished, requeued := delegate.counts()
	assert.Equal(t, 1, finished)
	assert.Equal(t, 0, requeued)
	assert.True(t, store.Has(testutil.ErrorsBucket, testutil.NotALogID))
}

func TestHandleMessageBadBody(t *testing.T) {
	worker := newTestWorker(testutil.NewFakeStore(), &testutil.FakeSink{})
	defer worker.Stop()

	var id nsq.MessageID
	for _, body := range []string{"", "not json", `{"attributes":{}}`} {
		message := nsq.NewMessage(id, []byte(body))
		message.Delegate = newRecordingDelegate()
		assert.Nil(t, worker.HandleMessage(message), body)

		// go-nsq finishes it for us when we return nil.
		assert.False(t, message.IsAutoResponseDisabled(), body)
	}
	assert.Equal(t, 0, worker.ItemsInProcess.Len())
}

// blockingRunner holds every run until release is closed.
type blockingRunner struct {
	started chan string
	release chan struct{}
}

func (r *blockingRunner) Run(ctx context.Context, objectID string) (*service.Outcome, error) {
	r.started <- objectID
	<-r.release
	return service.NewOutcome(objectID), nil
}

func TestHandleMessageSkipsObjectInFlight(t *testing.T) {
	runner := &blockingRunner{started: make(chan string, 2), release: make(chan struct{})}
	worker := workers.NewLogFileWorker(testSettings(), runner, logger.Discard("test_worker"))

	first := newRecordingDelegate()
	require.Nil(t, worker.HandleMessage(newMessage(t, testutil.PrefixedLogID, first)))
	<-runner.started
	assert.True(t, worker.ItemsInProcess.Contains(testutil.PrefixedLogID))

	// Redelivery while the first is still running.
	second := nsq.NewMessage(nsq.MessageID{}, []byte(`{"attributes":{"objectId":"`+testutil.PrefixedLogID+`"}}`))
	second.Delegate = newRecordingDelegate()
	require.Nil(t, worker.HandleMessage(second))
	assert.False(t, second.IsAutoResponseDisabled())

	close(runner.release)
	first.wait(t)
	worker.Stop()
	assert.Equal(t, 0, worker.ItemsInProcess.Len())
	assert.Empty(t, runner.started)
}

func TestStopIsIdempotent(t *testing.T) {
	worker := newTestWorker(testutil.NewFakeStore(), &testutil.FakeSink{})
	worker.Stop()
	worker.Stop()
}

func TestLogFailedMessage(t *testing.T) {
	worker := newTestWorker(testutil.NewFakeStore(), &testutil.FakeSink{})
	defer worker.Stop()
	message := newMessage(t, testutil.PrefixedLogID, newRecordingDelegate())
	message.Attempts = 4
	worker.LogFailedMessage(message)
}
