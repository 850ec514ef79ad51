package workers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/storagestats/gcs-stats/models/common"
)

// Settings contains settings for a log file worker.
type Settings struct {
	// ChannelBufferSize is the size of the ProcessChannel buffer. It is
	// also the NSQ max_in_flight setting, since every message in
	// flight is either buffered or being processed.
	ChannelBufferSize int

	// MaxAttempts is the number of times nsqd will deliver a message
	// before the worker gives up on it. The file stays in the logs
	// bucket. Zero means no limit.
	MaxAttempts uint16

	// NSQChannel is the NSQ channel the worker subscribes to.
	NSQChannel string

	// NSQTopic is the NSQ topic the worker subscribes to.
	NSQTopic string

	// NumberOfWorkers is the number of go routines running the
	// pipeline. The work is almost all network I/O.
	NumberOfWorkers int

	// RequeueTimeout is how long nsqd waits before redelivering a
	// message whose file could not be brought to a terminal location.
	RequeueTimeout time.Duration

	// TouchInterval is how often we tell nsqd we're still working
	// on a message.
	TouchInterval time.Duration
}

// DefaultSettings returns settings for the topic and channel in config.
func DefaultSettings(config *common.Config) *Settings {
	return &Settings{
		ChannelBufferSize: 20,
		MaxAttempts:       5,
		NSQChannel:        config.NsqChannel,
		NSQTopic:          config.NsqTopic,
		NumberOfWorkers:   4,
		RequeueTimeout:    1 * time.Minute,
		TouchInterval:     1 * time.Minute,
	}
}

// Validate returns an error if the worker can't run with these
// settings.
func (settings *Settings) Validate() error {
	if settings.NSQTopic == "" || settings.NSQChannel == "" {
		return fmt.Errorf("NSQ topic and channel are required")
	}
	if settings.NumberOfWorkers < 1 {
		return fmt.Errorf("NumberOfWorkers must be at least 1")
	}
	if settings.ChannelBufferSize < 1 {
		return fmt.Errorf("ChannelBufferSize must be at least 1")
	}
	if settings.TouchInterval <= 0 {
		return fmt.Errorf("TouchInterval must be positive")
	}
	return nil
}

func (settings *Settings) ToJSON() string {
	data, _ := json.Marshal(settings)
	return string(data)
}
