package session

import (
	"context"
	"sync"
	"time"

	"interviewgw/internal/model"
)

type entry struct {
	iv      *Interview
	expires time.Time
}

// MemoryStore keeps interviews in process. Entries expire ttl after their
// last write.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, iv *Interview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, id)
		}
	}
	s.entries[iv.ID] = &entry{iv: iv.clone(), expires: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	// Return a copy to avoid race conditions
	return e.iv.clone(), nil
}

func (s *MemoryStore) AppendQuestion(_ context.Context, id string, turn Turn) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookup(id)
	if err != nil {
		return "", err
	}
	qid := e.iv.appendTurn(turn)
	e.expires = s.now().Add(s.ttl)
	return qid, nil
}

func (s *MemoryStore) RecordAnswer(_ context.Context, id, questionID, answer string, fb *model.AnswerFeedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	now := s.now()
	if err := e.iv.recordAnswer(questionID, answer, fb, now); err != nil {
		return err
	}
	e.expires = now.Add(s.ttl)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// lookup must be called with mu held.
func (s *MemoryStore) lookup(id string) (*entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(e.expires) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	return e, nil
}
