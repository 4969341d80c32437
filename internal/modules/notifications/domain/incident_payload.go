package domain

import (
	"time"

	incidents "alertaUtec/internal/modules/incidents/domain"
	"alertaUtec/internal/shared/normalization"
)

// IncidentFromPayload rebuilds the incident carried in a message body. It accepts
// {"incidente": {...}}, {"data": {"incidente": {...}}} or the bare record.
func IncidentFromPayload(payload any) (incidents.Incident, bool) {
	container := normalization.MapFromPayload(payload)
	if len(container) == 0 {
		return incidents.Incident{}, false
	}
	raw := container
	if nested := normalization.AsMap(container["incidente"]); nested != nil {
		raw = nested
	}

	id := normalization.AsString(raw["incidenteId"])
	if id == "" {
		return incidents.Incident{}, false
	}
	inc := incidents.Incident{
		IncidenteID:     id,
		Tipo:            incidents.Tipo(normalization.AsString(raw["tipo"])),
		Descripcion:     normalization.AsString(raw["descripcion"]),
		Ubicacion:       normalization.AsString(raw["ubicacion"]),
		Urgencia:        incidents.Urgencia(normalization.AsString(raw["urgencia"])),
		Estado:          incidents.Estado(normalization.AsString(raw["estado"])),
		EmailReportante: normalization.AsString(raw["emailReportante"]),
		FechaCreacion:   normalization.AsTime(raw["fechaCreacion"]),
	}
	if inc.FechaCreacion.IsZero() {
		inc.FechaCreacion = time.Now().UTC()
	}
	return inc, true
}
