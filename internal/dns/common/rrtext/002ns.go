package rrtext

import "github.com/haukened/nodar/internal/dns/domain"

// NS renders an NS record for the zone apex pointing at host.
// Unlike SOA, the owner is written without a trailing dot.
//
//	donar.measurement-lab.org	IN	NS	300	7	utility.mlab.host1.example.org
func (f *Formatter) NS(q domain.Query, host string) string {
	return line(f.zone.Name, q.Class, string(domain.RRTypeNS), ttl(q.TTL), q.ID, host)
}

// NSRecord renders an NS record and wraps it as a domain.Record.
func (f *Formatter) NSRecord(q domain.Query, host string) (domain.Record, error) {
	return domain.NewRecord(domain.RRTypeNS, f.NS(q, host))
}
