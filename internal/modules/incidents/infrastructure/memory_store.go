package infrastructure

import (
	"context"
	"sync"

	"alertaUtec/internal/modules/incidents/application/port"
	"alertaUtec/internal/modules/incidents/domain"
)

// MemoryStore keeps incidents in process. It serves single-instance deployments without
// DATABASE_URL and tests; every record is copied in and out.
type MemoryStore struct {
	mu        sync.RWMutex
	incidents map[string]domain.Incident
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{incidents: make(map[string]domain.Incident)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inc, ok := s.incidents[id]
	if !ok {
		return nil, domain.ErrIncidentNotFound
	}
	out := inc.Clone()
	return &out, nil
}

func (s *MemoryStore) Put(_ context.Context, incident *domain.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incidents[incident.IncidenteID] = incident.Clone()
	return nil
}

func (s *MemoryStore) Update(_ context.Context, id string, update domain.IncidentUpdate) (*domain.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc, ok := s.incidents[id]
	if !ok {
		return nil, domain.ErrIncidentNotFound
	}
	inc = inc.Clone()
	inc.Estado = update.Estado
	inc.Historial = append(inc.Historial, update.Append)
	s.incidents[id] = inc

	out := inc.Clone()
	return &out, nil
}

func (s *MemoryStore) Scan(_ context.Context) ([]domain.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Incident, 0, len(s.incidents))
	for _, inc := range s.incidents {
		out = append(out, inc.Clone())
	}
	return out, nil
}

var _ port.IncidentStore = (*MemoryStore)(nil)
