package domain

import (
	"slices"
	"strings"
)

// Estado is the closed set of incident states.
type Estado string

const (
	EstadoPendiente  Estado = "pendiente"
	EstadoEnAtencion Estado = "en_atencion"
	EstadoResuelto   Estado = "resuelto"
	EstadoCancelado  Estado = "cancelado"
)

var validEstados = []Estado{EstadoPendiente, EstadoEnAtencion, EstadoResuelto, EstadoCancelado}

// ValidEstados returns the enumeration in its canonical order.
func ValidEstados() []Estado {
	return slices.Clone(validEstados)
}

// ValidEstadoNames is ValidEstados as plain strings, for messages.
func ValidEstadoNames() []string {
	out := make([]string, len(validEstados))
	for i, e := range validEstados {
		out[i] = string(e)
	}
	return out
}

// ParseEstado accepts the exact lowercase names, ignoring surrounding whitespace.
func ParseEstado(raw string) (Estado, bool) {
	e := Estado(strings.TrimSpace(raw))
	return e, e.Valid()
}

func (e Estado) Valid() bool {
	return slices.Contains(validEstados, e)
}

func (e Estado) IsTerminal() bool {
	return e == EstadoResuelto || e == EstadoCancelado
}

// CanTransitionTo follows pendiente -> en_atencion -> resuelto, with cancelado reachable
// from any non-terminal state.
func (e Estado) CanTransitionTo(next Estado) bool {
	if !next.Valid() || e.IsTerminal() {
		return false
	}
	switch next {
	case EstadoCancelado:
		return true
	case EstadoEnAtencion:
		return e == EstadoPendiente
	case EstadoResuelto:
		return e == EstadoEnAtencion
	default:
		return false
	}
}
