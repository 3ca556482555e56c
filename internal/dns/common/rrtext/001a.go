package rrtext

import "github.com/haukened/nodar/internal/dns/domain"

// A renders an A record for q pointing at ip. The query name and id are echoed.
//
//	ndt.iupui.donar.measurement-lab.org	IN	A	300	42	192.168.1.2
func (f *Formatter) A(q domain.Query, ip string) string {
	return line(q.Name, q.Class, string(domain.RRTypeA), ttl(q.TTL), q.ID, ip)
}

// ARecord renders an A record and wraps it as a domain.Record.
func (f *Formatter) ARecord(q domain.Query, ip string) (domain.Record, error) {
	return domain.NewRecord(domain.RRTypeA, f.A(q, ip))
}
