package domain

import "errors"

var (
	// ErrGone means the peer will never receive another push on this connection id.
	ErrGone = errors.New("connection gone")
	// ErrTransient covers every other delivery failure; the connection may still be alive.
	ErrTransient = errors.New("transient delivery failure")
)

// Outcome is the classification of a single delivery attempt.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeGone      Outcome = "gone"
	OutcomeTransient Outcome = "transient"
)

// ClassifyDelivery maps a send error onto an Outcome. Only an explicit ErrGone is terminal.
func ClassifyDelivery(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeDelivered
	case errors.Is(err, ErrGone):
		return OutcomeGone
	default:
		return OutcomeTransient
	}
}

// BroadcastResult reports one fan-out. It is informational: a broadcast never fails its
// caller, so Err only records why the registry could not be listed.
type BroadcastResult struct {
	Kind            EventKind `json:"kind"`
	SentTo          int       `json:"sentTo"`
	Delivered       int       `json:"delivered"`
	Gone            int       `json:"gone"`
	Transient       int       `json:"transient"`
	CleanupFailures int       `json:"cleanupFailures,omitempty"`
	Err             error     `json:"-"`
}
