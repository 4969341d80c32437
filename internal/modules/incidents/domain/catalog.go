package domain

import (
	"slices"
	"strings"
)

type Tipo string

const (
	TipoEmergenciaMedica Tipo = "emergencia_medica"
	TipoSeguridad        Tipo = "seguridad"
	TipoInfraestructura  Tipo = "infraestructura"
	TipoOtro             Tipo = "otro"
)

type Urgencia string

const (
	UrgenciaBaja    Urgencia = "baja"
	UrgenciaMedia   Urgencia = "media"
	UrgenciaAlta    Urgencia = "alta"
	UrgenciaCritica Urgencia = "critica"
)

var (
	tipos     = []Tipo{TipoEmergenciaMedica, TipoSeguridad, TipoInfraestructura, TipoOtro}
	urgencias = []Urgencia{UrgenciaBaja, UrgenciaMedia, UrgenciaAlta, UrgenciaCritica}
)

func ParseTipo(raw string) (Tipo, bool) {
	t := Tipo(strings.TrimSpace(raw))
	return t, slices.Contains(tipos, t)
}

func ParseUrgencia(raw string) (Urgencia, bool) {
	u := Urgencia(strings.TrimSpace(raw))
	return u, slices.Contains(urgencias, u)
}

// IsHigh reports whether the security team must be alerted.
func (u Urgencia) IsHigh() bool {
	return u == UrgenciaAlta || u == UrgenciaCritica
}

// Display labels. Presentation only; nothing in the state machine reads them.
var (
	tipoLabels = map[Tipo]string{
		TipoEmergenciaMedica: "Emergencia médica",
		TipoSeguridad:        "Seguridad",
		TipoInfraestructura:  "Infraestructura",
		TipoOtro:             "Otro",
	}
	urgenciaLabels = map[Urgencia]string{
		UrgenciaBaja:    "Baja",
		UrgenciaMedia:   "Media",
		UrgenciaAlta:    "Alta",
		UrgenciaCritica: "Crítica",
	}
	estadoLabels = map[Estado]string{
		EstadoPendiente:  "Pendiente",
		EstadoEnAtencion: "En atención",
		EstadoResuelto:   "Resuelto",
		EstadoCancelado:  "Cancelado",
	}
)

func TipoLabel(t Tipo) string         { return labelOr(tipoLabels, t) }
func UrgenciaLabel(u Urgencia) string { return labelOr(urgenciaLabels, u) }
func EstadoLabel(e Estado) string     { return labelOr(estadoLabels, e) }

func labelOr[K ~string](labels map[K]string, key K) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return string(key)
}
