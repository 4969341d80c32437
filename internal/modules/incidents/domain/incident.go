package domain

import (
	"errors"
	"time"
)

var (
	ErrIncidentNotFound  = errors.New("incident not found")
	ErrInvalidEstado     = errors.New("invalid estado")
	ErrInvalidTransition = errors.New("estado transition not allowed")
	ErrMissingInput      = errors.New("missing required input")
	ErrInvalidCatalog    = errors.New("value not in catalog")
)

// HistoryEntry is one append-only record in Incident.Historial.
type HistoryEntry struct {
	Accion string    `json:"accion"`
	Fecha  time.Time `json:"fecha"`
}

// NewHistoryEntry records a transition to estado.
func NewHistoryEntry(estado Estado, now time.Time) HistoryEntry {
	return HistoryEntry{Accion: "estado cambiado a " + string(estado), Fecha: now.UTC()}
}

type Incident struct {
	IncidenteID     string         `json:"incidenteId"`
	Tipo            Tipo           `json:"tipo"`
	Descripcion     string         `json:"descripcion"`
	Ubicacion       string         `json:"ubicacion"`
	Urgencia        Urgencia       `json:"urgencia"`
	Estado          Estado         `json:"estado"`
	EmailReportante string         `json:"emailReportante,omitempty"`
	FechaCreacion   time.Time      `json:"fechaCreacion"`
	Historial       []HistoryEntry `json:"historial"`
}

// Summary is the projection returned by listings.
type Summary struct {
	IncidenteID   string    `json:"incidenteId"`
	Tipo          Tipo      `json:"tipo"`
	Estado        Estado    `json:"estado"`
	Ubicacion     string    `json:"ubicacion"`
	Urgencia      Urgencia  `json:"urgencia"`
	Descripcion   string    `json:"descripcion"`
	FechaCreacion time.Time `json:"fechaCreacion"`
}

func (i Incident) Summary() Summary {
	return Summary{
		IncidenteID:   i.IncidenteID,
		Tipo:          i.Tipo,
		Estado:        i.Estado,
		Ubicacion:     i.Ubicacion,
		Urgencia:      i.Urgencia,
		Descripcion:   i.Descripcion,
		FechaCreacion: i.FechaCreacion,
	}
}

// Clone returns a copy that shares no slice storage with i.
func (i Incident) Clone() Incident {
	out := i
	out.Historial = append([]HistoryEntry(nil), i.Historial...)
	if out.Historial == nil {
		out.Historial = []HistoryEntry{}
	}
	return out
}

// IncidentUpdate is the single-row write applied by a status change: the new estado
// plus the entry appended to historial.
type IncidentUpdate struct {
	Estado Estado
	Append HistoryEntry
}
