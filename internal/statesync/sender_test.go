package statesync

import (
	"errors"
	"sync"

	"github.com/MKhiriev/go-pair-link/models"
)

var errSendFailed = errors.New("send failed")

type sentDiff struct {
	key     string
	changes models.Changes
}

// fakeSender records every diff and fails while failing is set. A send
// armed with holdNext blocks until released and then fails.
type fakeSender struct {
	mu      sync.Mutex
	failing bool
	sent    []sentDiff
	calls   int

	entered chan struct{}
	release chan struct{}
}

func (s *fakeSender) SendSync(key string, changes models.Changes) error {
	s.mu.Lock()
	s.calls++
	if s.release != nil {
		entered, release := s.entered, s.release
		s.entered, s.release = nil, nil
		s.mu.Unlock()

		close(entered)
		<-release
		return errSendFailed
	}
	defer s.mu.Unlock()

	if s.failing {
		return errSendFailed
	}
	s.sent = append(s.sent, sentDiff{key: key, changes: changes.Clone()})
	return nil
}

func (s *fakeSender) setFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// holdNext makes the next SendSync block. entered is closed once the send
// is blocked; closing release lets it fail.
func (s *fakeSender) holdNext() (entered <-chan struct{}, release chan<- struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entered = make(chan struct{})
	s.release = make(chan struct{})
	return s.entered, s.release
}

func (s *fakeSender) sentDiffs() []sentDiff {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentDiff(nil), s.sent...)
}

func (s *fakeSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
