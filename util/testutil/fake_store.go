package testutil

import (
	"context"
	"fmt"
	"sync"
)

// FakeStore is an in-memory ObjectStore. Objects are keyed by bucket,
// then object id. Set the *Err fields to make the matching operation
// fail. MoveErrs fails moves into specific destination buckets.
type FakeStore struct {
	ExistsErr   error
	DownloadErr error
	DeleteErr   error
	MoveErrs    map[string]error

	objects map[string]map[string][]byte
	calls   map[string]int
	mutex   sync.Mutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		MoveErrs: make(map[string]error),
		objects:  make(map[string]map[string][]byte),
		calls:    make(map[string]int),
	}
}

// Put adds an object to bucket.
func (s *FakeStore) Put(bucket, objectID string, content []byte) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.put(bucket, objectID, content)
}

func (s *FakeStore) put(bucket, objectID string, content []byte) {
	if s.objects[bucket] == nil {
		s.objects[bucket] = make(map[string][]byte)
	}
	s.objects[bucket][objectID] = content
}

// Has returns true if objectID is in bucket.
func (s *FakeStore) Has(bucket, objectID string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, ok := s.objects[bucket][objectID]
	return ok
}

// Count returns the number of objects in bucket.
func (s *FakeStore) Count(bucket string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.objects[bucket])
}

// Calls returns the number of times op ("exists", "download", "move"
// or "delete") was called, whether or not it succeeded.
func (s *FakeStore) Calls(op string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.calls[op]
}

func (s *FakeStore) Exists(ctx context.Context, bucket, objectID string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.calls["exists"]++
	if s.ExistsErr != nil {
		return false, s.ExistsErr
	}
	_, ok := s.objects[bucket][objectID]
	return ok, nil
}

func (s *FakeStore) Download(ctx context.Context, bucket, objectID string) ([]byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.calls["download"]++
	if s.DownloadErr != nil {
		return nil, s.DownloadErr
	}
	content, ok := s.objects[bucket][objectID]
	if !ok {
		return nil, fmt.Errorf("%s/%s does not exist", bucket, objectID)
	}
	return content, nil
}

func (s *FakeStore) Move(ctx context.Context, srcBucket, objectID, dstBucket string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.calls["move"]++
	if err := s.MoveErrs[dstBucket]; err != nil {
		return err
	}
	content, ok := s.objects[srcBucket][objectID]
	if !ok {
		return fmt.Errorf("%s/%s does not exist", srcBucket, objectID)
	}
	s.put(dstBucket, objectID, content)
	delete(s.objects[srcBucket], objectID)
	return nil
}

func (s *FakeStore) Delete(ctx context.Context, bucket, objectID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.calls["delete"]++
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.objects[bucket], objectID)
	return nil
}
