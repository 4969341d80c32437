package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
)

// EventKind names what happened. The set is open; clients ignore kinds they do not know.
type EventKind string

const (
	KindIncidentCreated EventKind = "incident_created"
	KindStatusChanged   EventKind = "status_changed"
	// KindConnected is the greeting sent to a freshly attached socket; it is never broadcast.
	KindConnected EventKind = "connected"
)

const (
	fieldKind        = "kind"
	fieldIncidenteID = "incidenteId"
)

var ErrInvalidEvent = errors.New("invalid broadcast event")

// BroadcastEvent is serialised once and fanned out unchanged to every recipient.
// Its fields are unexported so no sender can mutate it mid-broadcast.
type BroadcastEvent struct {
	kind        EventKind
	incidenteID string
	fields      map[string]any
	payload     []byte
}

// NewBroadcastEvent builds the wire form {"kind", "incidenteId", ...fields}. Entries in
// fields named kind or incidenteId are ignored.
func NewBroadcastEvent(kind EventKind, incidenteID string, fields map[string]any) (BroadcastEvent, error) {
	kind = EventKind(strings.TrimSpace(string(kind)))
	if kind == "" {
		return BroadcastEvent{}, fmt.Errorf("%w: missing kind", ErrInvalidEvent)
	}
	body := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		if k == fieldKind || k == fieldIncidenteID {
			continue
		}
		body[k] = v
	}
	copied := maps.Clone(body)
	body[fieldKind] = kind
	body[fieldIncidenteID] = incidenteID

	payload, err := json.Marshal(body)
	if err != nil {
		return BroadcastEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return BroadcastEvent{kind: kind, incidenteID: incidenteID, fields: copied, payload: payload}, nil
}

// ParseBroadcastEvent accepts a client-supplied JSON object and keeps the bytes verbatim.
func ParseBroadcastEvent(raw []byte) (BroadcastEvent, error) {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return BroadcastEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	kind, _ := body[fieldKind].(string)
	if strings.TrimSpace(kind) == "" {
		// the original notify route used "type"
		kind, _ = body["type"].(string)
	}
	if strings.TrimSpace(kind) == "" {
		return BroadcastEvent{}, fmt.Errorf("%w: missing kind", ErrInvalidEvent)
	}
	incidenteID, _ := body[fieldIncidenteID].(string)
	delete(body, fieldKind)
	delete(body, fieldIncidenteID)

	payload := make([]byte, len(raw))
	copy(payload, raw)
	return BroadcastEvent{kind: EventKind(kind), incidenteID: incidenteID, fields: body, payload: payload}, nil
}

func (e BroadcastEvent) Kind() EventKind     { return e.kind }
func (e BroadcastEvent) IncidenteID() string { return e.incidenteID }

// Fields returns a copy of the event-specific fields.
func (e BroadcastEvent) Fields() map[string]any { return maps.Clone(e.fields) }

// Payload returns the serialised event. Callers must treat it as read-only.
func (e BroadcastEvent) Payload() []byte { return e.payload }

// IsZero reports whether the event was never constructed.
func (e BroadcastEvent) IsZero() bool { return len(e.payload) == 0 }
