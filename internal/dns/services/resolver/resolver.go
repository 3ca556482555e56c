// Package resolver turns decoded pipe protocol queries into answer records
// for the mlab-ns delegated zone. Address answers come from the naming
// service; NS answers come from the peer host list; SOA is fixed.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/haukened/nodar/internal/dns/common/clock"
	"github.com/haukened/nodar/internal/dns/common/log"
	"github.com/haukened/nodar/internal/dns/common/rrtext"
	"github.com/haukened/nodar/internal/dns/domain"
)

var (
	// ErrMissingRemoteIP is returned when a question carries no client address.
	ErrMissingRemoteIP = errors.New("query has no remote address")
	// ErrHostsUnavailable wraps a failure to read the peer host list.
	ErrHostsUnavailable = errors.New("peer host list unavailable")
)

// addressLookups is how many A answers an A or ANY question produces. Each
// one is a separate naming service round trip and may return a different server.
const addressLookups = 2

type Resolver struct {
	// zone decides which names are answered.
	zone domain.Zone
	// format renders records in pipe text form.
	format *rrtext.Formatter
	// naming selects the server for A answers.
	naming NamingClient
	// hosts supplies NS targets.
	hosts PeerHostSource
	// clock times naming service round trips.
	clock clock.Clock
	// logger records diagnostics; it never writes to the protocol stream.
	logger log.Logger
}

type ResolverOptions struct {
	Zone   domain.Zone
	Naming NamingClient
	Hosts  PeerHostSource
	Clock  clock.Clock
	Logger log.Logger
}

func NewResolver(opts ResolverOptions) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Resolver{
		zone:   opts.Zone,
		format: rrtext.NewFormatter(opts.Zone),
		naming: opts.Naming,
		hosts:  opts.Hosts,
		clock:  clk,
		logger: logger,
	}
}

// HandleQuery answers query. Only question lines whose name is the alias
// host or the zone apex produce answers; everything else gets an empty
// Response. Answers are ordered SOA, then A, then NS.
func (r *Resolver) HandleQuery(ctx context.Context, query domain.Query) domain.Response {
	var resp domain.Response
	if !query.IsQuestion() {
		r.logger.Debug(map[string]any{"kind": string(query.Kind), "id": query.ID}, "ignoring non-question line")
		return resp
	}
	if !r.zone.Accepts(query.Name) {
		r.logger.Debug(map[string]any{"name": query.Name, "type": query.Type.String()}, "name outside zone")
		return resp
	}

	if query.Type.WantsSOA() {
		resp.Add(r.answer(r.SOARecord(query)))
	}

	if query.Type.WantsA() {
		// The deployed backend has always asked twice, so clients may see two
		// different servers. Collapse to one lookup once mlab-ns is confirmed
		// to be deterministic per client.
		for i := 0; i < addressLookups; i++ {
			resp.Add(r.answer(r.ResolveA(ctx, query)))
		}
	}

	if query.Type.WantsNS() {
		records, err := r.NSRecords(query)
		if err != nil {
			resp.Add(domain.FailedAnswer(err))
		}
		for _, rr := range records {
			resp.Add(domain.RecordAnswer(rr))
		}
	}

	return resp
}

// SOARecord renders the fixed start of authority for the zone.
func (r *Resolver) SOARecord(query domain.Query) (domain.Record, error) {
	return r.format.SOARecord(query)
}

// ResolveA asks the naming service for a server near the querying client
// and renders it as an A record.
func (r *Resolver) ResolveA(ctx context.Context, query domain.Query) (domain.Record, error) {
	if query.RemoteIP == "" {
		return domain.Record{}, ErrMissingRemoteIP
	}

	start := r.clock.Now()
	target, err := r.naming.Lookup(ctx, query.RemoteIP)
	elapsed := clock.Elapsed(r.clock, start)
	if err != nil {
		r.logger.Warn(map[string]any{
			"remote_ip":  query.RemoteIP,
			"elapsed_ms": elapsed.Milliseconds(),
			"error":      err.Error(),
		}, "naming service lookup failed")
		return domain.Record{}, err
	}

	r.logger.Debug(map[string]any{
		"remote_ip":  query.RemoteIP,
		"ip":         target.IP,
		"fqdn":       target.FQDN,
		"site":       target.Site,
		"elapsed_ms": elapsed.Milliseconds(),
	}, "naming service selected server")
	return r.format.ARecord(query, target.IP)
}

// NSRecords renders one NS record per peer host, in list order. When the
// list cannot be read the error is returned with no records.
func (r *Resolver) NSRecords(query domain.Query) ([]domain.Record, error) {
	hosts, err := r.hosts.Load()
	if err != nil {
		r.logger.Error(map[string]any{"error": err.Error()}, "failed to load peer hosts")
		return nil, fmt.Errorf("%w: %w", ErrHostsUnavailable, err)
	}

	records := make([]domain.Record, 0, len(hosts))
	for _, host := range hosts {
		rr, err := r.format.NSRecord(query, r.zone.PeerHostname(host))
		if err != nil {
			return records, err
		}
		records = append(records, rr)
	}
	return records, nil
}

// answer folds a (record, error) pair into a domain.Answer.
func (r *Resolver) answer(rr domain.Record, err error) domain.Answer {
	if err != nil {
		return domain.FailedAnswer(err)
	}
	return domain.RecordAnswer(rr)
}

var _ QueryHandler = (*Resolver)(nil)
