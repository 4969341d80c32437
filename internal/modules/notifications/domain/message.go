package domain

import "time"

const (
	EntityIncidentes = "incidentes"
	ActionCreated    = "created"
)

// Message is the envelope carried on the incident topics.
type Message struct {
	Topic      string            `json:"topic"`
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       any               `json:"data"`
	Timestamp  time.Time         `json:"timestamp"`
}
