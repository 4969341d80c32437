package port

import (
	"context"

	"alertaUtec/internal/modules/incidents/domain"
)

// IncidentStore persists incidents. Update must apply estado and the appended history
// entry as one atomic single-row write.
type IncidentStore interface {
	// Get returns domain.ErrIncidentNotFound when id is absent.
	Get(ctx context.Context, id string) (*domain.Incident, error)
	Put(ctx context.Context, incident *domain.Incident) error
	Update(ctx context.Context, id string, update domain.IncidentUpdate) (*domain.Incident, error)
	Scan(ctx context.Context) ([]domain.Incident, error)
}
