package workers

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/storagestats/gcs-stats/models/service"
)

// Task is one notification on its way through the worker.
type Task struct {
	// NSQMessage is the message that announced the file.
	NSQMessage *nsq.Message

	// ObjectID is the file in the logs bucket.
	ObjectID string

	// Outcome is set after the pipeline runs.
	Outcome *service.Outcome

	nsqStopChannel chan struct{}
	stopOnce       sync.Once
	nsqStartCalled atomic.Bool
	tickerStopped  atomic.Bool
}

func NewTask(message *nsq.Message, objectID string) *Task {
	return &Task{
		NSQMessage:     message,
		ObjectID:       objectID,
		nsqStopChannel: make(chan struct{}),
	}
}

// NSQStart takes over responding to the message and touches it every
// interval until NSQFinish or NSQRequeue is called, so nsqd doesn't
// redeliver it while a slow copy is in progress.
func (task *Task) NSQStart(interval time.Duration) {
	task.NSQMessage.DisableAutoResponse()
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				task.NSQMessage.Touch()
			case <-task.nsqStopChannel:
				task.tickerStopped.Store(true)
				return
			}
		}
	}()
	task.nsqStartCalled.Store(true)
}

func (task *Task) stopTouching() {
	task.stopOnce.Do(func() { close(task.nsqStopChannel) })
}

// NSQRequeue stops the touches and asks nsqd to redeliver the message
// after delay.
func (task *Task) NSQRequeue(delay time.Duration) {
	task.stopTouching()
	task.NSQMessage.Requeue(delay)
}

// NSQFinish stops the touches and tells nsqd we're done.
func (task *Task) NSQFinish() {
	task.stopTouching()
	task.NSQMessage.Finish()
}

// StartCalled returns true if NSQStart() has been called on this task.
func (task *Task) StartCalled() bool {
	return task.nsqStartCalled.Load()
}

// TickerStopped returns true once the touch goroutine has exited.
func (task *Task) TickerStopped() bool {
	return task.tickerStopped.Load()
}
