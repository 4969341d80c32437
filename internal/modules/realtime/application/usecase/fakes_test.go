package usecase

import (
	"context"
	"sort"
	"sync"

	"alertaUtec/internal/modules/realtime/domain"
)

type memRegistry struct {
	mu      sync.Mutex
	conns   map[string]domain.Connection
	listErr error
	delErr  error
	deletes []string
}

func newMemRegistry(ids ...string) *memRegistry {
	r := &memRegistry{conns: make(map[string]domain.Connection)}
	for _, id := range ids {
		r.conns[id] = domain.Connection{ConnectionID: id}
	}
	return r
}

func (r *memRegistry) Register(_ context.Context, conn domain.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ConnectionID] = conn
	return nil
}

func (r *memRegistry) Unregister(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes = append(r.deletes, id)
	if r.delErr != nil {
		return r.delErr
	}
	delete(r.conns, id)
	return nil
}

func (r *memRegistry) ListAll(context.Context) ([]domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.Connection, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out, nil
}

func (r *memRegistry) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.conns))
	for id := range r.conns {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

type scriptedChannel struct {
	mu       sync.Mutex
	results  map[string]error
	panics   map[string]bool
	attempts map[string]int
	payloads map[string][]byte
}

func newScriptedChannel(results map[string]error) *scriptedChannel {
	return &scriptedChannel{
		results:  results,
		panics:   map[string]bool{},
		attempts: map[string]int{},
		payloads: map[string][]byte{},
	}
}

func (c *scriptedChannel) Send(_ context.Context, conn domain.Connection, payload []byte) error {
	c.mu.Lock()
	c.attempts[conn.ConnectionID]++
	c.payloads[conn.ConnectionID] = payload
	err := c.results[conn.ConnectionID]
	panics := c.panics[conn.ConnectionID]
	c.mu.Unlock()
	if panics {
		panic("boom")
	}
	return err
}

func (c *scriptedChannel) attemptsFor(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts[id]
}
