package usecase

import (
	"context"
	"errors"
	"sync"

	"alertaUtec/internal/modules/incidents/domain"
	"alertaUtec/internal/modules/incidents/infrastructure"
	realtime "alertaUtec/internal/modules/realtime/domain"
)

// spyStore wraps the memory store and counts mutations.
type spyStore struct {
	*infrastructure.MemoryStore
	mu      sync.Mutex
	writes  int
	failGet error
	failPut error
	failUpd error
}

func newSpyStore() *spyStore {
	return &spyStore{MemoryStore: infrastructure.NewMemoryStore()}
}

func (s *spyStore) Get(ctx context.Context, id string) (*domain.Incident, error) {
	if s.failGet != nil {
		return nil, s.failGet
	}
	return s.MemoryStore.Get(ctx, id)
}

func (s *spyStore) Put(ctx context.Context, inc *domain.Incident) error {
	if s.failPut != nil {
		return s.failPut
	}
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return s.MemoryStore.Put(ctx, inc)
}

func (s *spyStore) Update(ctx context.Context, id string, u domain.IncidentUpdate) (*domain.Incident, error) {
	if s.failUpd != nil {
		return nil, s.failUpd
	}
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return s.MemoryStore.Update(ctx, id, u)
}

func (s *spyStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

type spyBroadcaster struct {
	mu     sync.Mutex
	events []realtime.BroadcastEvent
	result realtime.BroadcastResult
}

func (b *spyBroadcaster) Broadcast(_ context.Context, ev realtime.BroadcastEvent) realtime.BroadcastResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	res := b.result
	res.Kind = ev.Kind()
	return res
}

type spyNotifier struct {
	calls []domain.Incident
	err   error
}

func (n *spyNotifier) IncidentCreated(_ context.Context, inc domain.Incident) error {
	n.calls = append(n.calls, inc)
	return n.err
}

var errStoreDown = errors.New("store down")
