// Package transport drives the conversation with the name server that spawned
// the process. It converts protocol lines to domain queries, hands them to
// the service layer and writes the tagged reply lines back, so the resolver
// only ever sees domain objects.
package transport

import (
	"errors"

	"github.com/haukened/nodar/internal/dns/services/resolver"
)

// ErrAlreadyServing is returned when Serve is called on a transport that is
// already running.
var ErrAlreadyServing = errors.New("pipe transport already serving")

// State is the position of a session in the protocol state machine.
type State int

const (
	// StateAwaitingHandshake is the initial state: only HELO is accepted.
	StateAwaitingHandshake State = iota
	// StateServing answers one query line at a time.
	StateServing
	// StateTerminated is reached on end of input, cancellation or a write error.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateAwaitingHandshake:
		return "awaiting_handshake"
	case StateServing:
		return "serving"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

var _ resolver.PipeTransport = (*PipeTransport)(nil)
