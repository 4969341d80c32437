package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"

	"alertaUtec/internal/modules/incidents/application/port"
	"alertaUtec/internal/modules/incidents/domain"
	"alertaUtec/internal/shared/apperrors"
)

type GetIncidentUseCase struct {
	store port.IncidentStore
}

func NewGetIncidentUseCase(store port.IncidentStore) *GetIncidentUseCase {
	return &GetIncidentUseCase{store: store}
}

func (uc *GetIncidentUseCase) Execute(ctx context.Context, id string) (*domain.Incident, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Validation("ID de incidente requerido", domain.ErrMissingInput)
	}
	incident, err := uc.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrIncidentNotFound) {
			return nil, apperrors.NotFound(msgNotFound, err)
		}
		return nil, apperrors.Internal("Error al obtener el incidente", err)
	}
	return incident, nil
}

// ListIncidentsUseCase returns summaries, newest first.
type ListIncidentsUseCase struct {
	store port.IncidentStore
}

func NewListIncidentsUseCase(store port.IncidentStore) *ListIncidentsUseCase {
	return &ListIncidentsUseCase{store: store}
}

func (uc *ListIncidentsUseCase) Execute(ctx context.Context) ([]domain.Summary, error) {
	all, err := uc.store.Scan(ctx)
	if err != nil {
		return nil, apperrors.Internal("Error al listar incidentes", err)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].FechaCreacion.After(all[j].FechaCreacion)
	})
	out := make([]domain.Summary, len(all))
	for i, inc := range all {
		out[i] = inc.Summary()
	}
	return out, nil
}
