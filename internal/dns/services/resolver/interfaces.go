package resolver

import (
	"context"

	"github.com/haukened/nodar/internal/dns/domain"
)

// NamingClient asks the naming service which measurement server should
// handle a client.
type NamingClient interface {
	Lookup(ctx context.Context, remoteIP string) (domain.Target, error)
}

// PeerHostSource returns the ordered peer host list used for NS answers.
// On failure it returns an empty list together with the error.
type PeerHostSource interface {
	Load() ([]string, error)
}

type QueryHandler interface {
	// HandleQuery answers one decoded protocol line. It never fails as a
	// whole; each sub-resolution failure is carried in the Response.
	HandleQuery(ctx context.Context, query domain.Query) domain.Response
}

// PipeTransport defines the contract between the resolver and the process
// speaking the host's line protocol.
type PipeTransport interface {
	// Serve performs the handshake and then answers lines via handler until
	// the input ends or ctx is cancelled.
	Serve(ctx context.Context, handler QueryHandler) error
}
