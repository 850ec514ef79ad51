package workers

import (
	"context"
	"sync"

	"github.com/nsqio/go-nsq"
	"github.com/op/go-logging"
	"github.com/storagestats/gcs-stats/ingest"
	"github.com/storagestats/gcs-stats/models/common"
	"github.com/storagestats/gcs-stats/models/service"
)

// Runner runs the pipeline for one object. *ingest.Processor
// satisfies it.
type Runner interface {
	Run(ctx context.Context, objectID string) (*service.Outcome, error)
}

// LogFileWorker reads storage notifications from NSQ and runs each
// announced file through the pipeline.
type LogFileWorker struct {
	// ItemsInProcess holds the object ids this process is working on.
	// NSQ does not dedupe messages, so the worker must.
	ItemsInProcess *service.InFlightSet

	Logger *logging.Logger

	// NSQConsumer is nil until RegisterAsNsqConsumer is called.
	NSQConsumer *nsq.Consumer

	// ProcessChannel holds tasks waiting for a free go routine.
	ProcessChannel chan *Task

	Processor Runner
	Settings  *Settings

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewLogFileWorker returns a worker with its processing go routines
// already running. Call RegisterAsNsqConsumer to start receiving
// messages.
func NewLogFileWorker(settings *Settings, processor Runner, logger *logging.Logger) *LogFileWorker {
	ctx, cancel := context.WithCancel(context.Background())
	worker := &LogFileWorker{
		ItemsInProcess: service.NewInFlightSet(),
		Logger:         logger,
		ProcessChannel: make(chan *Task, settings.ChannelBufferSize),
		Processor:      processor,
		Settings:       settings,
		ctx:            ctx,
		cancel:         cancel,
	}
	for i := 0; i < settings.NumberOfWorkers; i++ {
		worker.wg.Add(1)
		go worker.processItems()
	}
	return worker
}

// NewLogFileWorkerFromContext returns a worker that runs the pipeline
// against the context's services.
func NewLogFileWorkerFromContext(_context *common.Context, settings *Settings) *LogFileWorker {
	return NewLogFileWorker(settings, ingest.NewProcessorFromContext(_context), _context.Logger)
}

// RegisterAsNsqConsumer subscribes to Settings.NSQTopic and
// Settings.NSQChannel through nsqlookupd. Messages start arriving as
// soon as this returns.
func (w *LogFileWorker) RegisterAsNsqConsumer(lookupdAddress string) error {
	config := nsq.NewConfig()
	config.Set("heartbeat_interval", "10s")
	config.Set("max_in_flight", w.Settings.ChannelBufferSize)
	config.Set("max_attempts", w.Settings.MaxAttempts)
	consumer, err := nsq.NewConsumer(w.Settings.NSQTopic, w.Settings.NSQChannel, config)
	if err != nil {
		return err
	}
	consumer.SetLogger(newNsqLogger(w.Logger), nsq.LogLevelWarning)
	consumer.AddHandler(w)
	if err := consumer.ConnectToNSQLookupd(lookupdAddress); err != nil {
		return err
	}
	w.NSQConsumer = consumer
	w.Logger.Infof("Registered as NSQ consumer on %s/%s", w.Settings.NSQTopic, w.Settings.NSQChannel)
	return nil
}

// HandleMessage queues the file named in message for processing. It
// always returns nil. Tasks answer nsqd themselves once the pipeline
// is done, and messages we can't use are finished right away.
func (w *LogFileWorker) HandleMessage(message *nsq.Message) error {
	notification, err := service.NotificationFromJSON(message.Body)
	if err != nil {
		w.Logger.Errorf("Discarding message %s: %v (body: %s)",
			string(message.ID[:]), err, string(message.Body))
		return nil
	}
	objectID := notification.ObjectID()
	if !w.ItemsInProcess.Claim(objectID) {
		w.Logger.Infof("Skipping %s because this worker is already processing it", objectID)
		return nil
	}
	task := NewTask(message, objectID)
	task.NSQStart(w.Settings.TouchInterval)
	w.ProcessChannel <- task
	return nil
}

// LogFailedMessage is called by go-nsq when a message has exceeded
// Settings.MaxAttempts. The message is finished after this, and the
// file stays in the logs bucket for an operator.
func (w *LogFileWorker) LogFailedMessage(message *nsq.Message) {
	w.Logger.Errorf("Giving up on message after %d attempts: %s",
		message.Attempts, string(message.Body))
}

func (w *LogFileWorker) processItems() {
	defer w.wg.Done()
	for task := range w.ProcessChannel {
		w.processItem(task)
	}
}

func (w *LogFileWorker) processItem(task *Task) {
	defer w.ItemsInProcess.Release(task.ObjectID)
	outcome, err := w.Processor.Run(w.ctx, task.ObjectID)
	task.Outcome = outcome
	if err != nil {
		w.Logger.Warningf("Requeueing %s in %s: %v", task.ObjectID, w.Settings.RequeueTimeout, err)
		task.NSQRequeue(w.Settings.RequeueTimeout)
		return
	}
	task.NSQFinish()
}

// Stop disconnects from nsqd, lets tasks already queued finish, and
// returns when all processing go routines have exited.
func (w *LogFileWorker) Stop() {
	w.stopOnce.Do(func() {
		if w.NSQConsumer != nil {
			w.Logger.Warning("Disconnecting from nsqd")
			w.NSQConsumer.ChangeMaxInFlight(0)
			w.NSQConsumer.Stop()
			<-w.NSQConsumer.StopChan
		}
		close(w.ProcessChannel)
		w.wg.Wait()
		w.cancel()
		w.Logger.Warning("Worker stopped")
	})
}
