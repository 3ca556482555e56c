package rrtext

import "github.com/haukened/nodar/internal/dns/domain"

const (
	// soaNoTransfer is written in the id position: the zone is never transferred.
	soaNoTransfer = "-1"
	// soaBody is the static mname, rname and serial/refresh/retry/expire/minimum tuple.
	// It is not derived from any state.
	soaBody = "localhost. support.measurementlab.net. 2013092700 1800 3600 604800 3600"
)

// SOA renders the zone's SOA record. Only the class and TTL come from q.
//
//	donar.measurement-lab.org.	IN	SOA	300	-1	localhost. support.measurementlab.net. 2013092700 1800 3600 604800 3600
func (f *Formatter) SOA(q domain.Query) string {
	return line(f.zone.Origin(), q.Class, string(domain.RRTypeSOA), ttl(q.TTL), soaNoTransfer, soaBody)
}

// SOARecord renders the SOA record and wraps it as a domain.Record.
func (f *Formatter) SOARecord(q domain.Query) (domain.Record, error) {
	return domain.NewRecord(domain.RRTypeSOA, f.SOA(q))
}
