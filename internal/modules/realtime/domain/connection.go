package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrMissingConnectionID = errors.New("connection id is required")

// Connection is one live push-capable client channel as stored in the registry.
type Connection struct {
	ConnectionID string    `json:"connectionId"`
	ConnectedAt  time.Time `json:"connectedAt"`
	// NodeID names the gateway instance holding the socket.
	NodeID string `json:"nodeId,omitempty"`
	// Endpoint is the management base URL of that instance.
	Endpoint string `json:"endpoint,omitempty"`
}

// NormalizeConnectionID trims the identifier handed over by the transport.
func NormalizeConnectionID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrMissingConnectionID
	}
	return id, nil
}
