package service

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcome describes what one invocation did with one object. It is
// logged at the end of every invocation and saved to the outcome
// journal so operators can see why a file ended up where it did.
type Outcome struct {
	// InvocationID uniquely identifies this attempt. Redelivered
	// notifications for the same object get new invocation ids.
	InvocationID string `json:"invocation_id"`

	// ObjectID is the name of the file in the logs bucket.
	ObjectID string `json:"object_id"`

	// Classification is one of the constants.Class* values.
	Classification string `json:"classification"`

	// State is the last pipeline state reached. See constants.State*.
	State string `json:"state"`

	// Location is the terminal location of the file. It's empty if the
	// invocation failed before the file reached a terminal location.
	Location string `json:"location"`

	// Inserted is true if a row was written to the warehouse.
	Inserted bool `json:"inserted"`

	Host       string    `json:"host"`
	Pid        int       `json:"pid"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Errors lists what went wrong. Access is locked internally.
	Errors []*ProcessingError `json:"errors"`

	mutex *sync.RWMutex
}

// NewOutcome returns a new Outcome with a fresh invocation id.
func NewOutcome(objectID string) *Outcome {
	hostname, _ := os.Hostname()
	return &Outcome{
		InvocationID: uuid.NewString(),
		ObjectID:     objectID,
		Host:         hostname,
		Pid:          os.Getpid(),
		Errors:       make([]*ProcessingError, 0),
		mutex:        &sync.RWMutex{},
	}
}

func (o *Outcome) Start() {
	o.StartedAt = time.Now().UTC()
}

func (o *Outcome) Finish() {
	o.FinishedAt = time.Now().UTC()
}

func (o *Outcome) Finished() bool {
	return !o.FinishedAt.IsZero()
}

func (o *Outcome) RunTime() time.Duration {
	if o.StartedAt.IsZero() {
		return time.Duration(0)
	}
	endTime := o.FinishedAt
	if endTime.IsZero() {
		endTime = time.Now()
	}
	return endTime.Sub(o.StartedAt)
}

// Succeeded returns true if the file reached a terminal location
// without any errors along the way.
func (o *Outcome) Succeeded() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.Finished() && o.Location != "" && len(o.Errors) == 0
}

func (o *Outcome) AddError(err *ProcessingError) {
	o.mutex.Lock()
	o.Errors = append(o.Errors, err)
	o.mutex.Unlock()
}

func (o *Outcome) HasErrors() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Errors) > 0
}

// HasFatalErrors returns true if any error left the file outside a
// terminal location.
func (o *Outcome) HasFatalErrors() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	for _, err := range o.Errors {
		if err.IsFatal {
			return true
		}
	}
	return false
}

// ErrorMessage returns all error messages as a single pipe-delimited
// string.
func (o *Outcome) ErrorMessage() string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	messages := make([]string, len(o.Errors))
	for i, err := range o.Errors {
		messages[i] = err.Message
	}
	return strings.Join(messages, " | ")
}

// OutcomeFromJSON deserializes an Outcome and initializes its
// internal mutex. Don't unmarshal outcomes any other way.
func OutcomeFromJSON(jsonData string) (*Outcome, error) {
	o := &Outcome{}
	err := json.Unmarshal([]byte(jsonData), o)
	if err != nil {
		return nil, err
	}
	o.mutex = &sync.RWMutex{}
	return o, nil
}

func (o *Outcome) ToJSON() (string, error) {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	data, err := json.Marshal(o)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
