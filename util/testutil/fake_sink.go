package testutil

import (
	"context"
	"sync"

	"github.com/storagestats/gcs-stats/models/service"
)

// FakeSink records what would have gone to the warehouse.
type FakeSink struct {
	Err     error
	Records []*service.BillingRecord
	calls   int
	mutex   sync.Mutex
}

func (s *FakeSink) Insert(ctx context.Context, record *service.BillingRecord) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.calls++
	if s.Err != nil {
		return s.Err
	}
	s.Records = append(s.Records, record)
	return nil
}

// Calls returns the number of insert attempts, including failed ones.
func (s *FakeSink) Calls() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.calls
}

// FakeJournal keeps outcomes in memory, keyed by object id.
type FakeJournal struct {
	Err      error
	Outcomes map[string]*service.Outcome
	mutex    sync.Mutex
}

func NewFakeJournal() *FakeJournal {
	return &FakeJournal{Outcomes: make(map[string]*service.Outcome)}
}

func (j *FakeJournal) OutcomeSave(outcome *service.Outcome) error {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	if j.Err != nil {
		return j.Err
	}
	j.Outcomes[outcome.ObjectID] = outcome
	return nil
}

func (j *FakeJournal) Get(objectID string) *service.Outcome {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return j.Outcomes[objectID]
}
