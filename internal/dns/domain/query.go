package domain

// QueryKind is the first field of every line the host sends.
type QueryKind string

// KindQuestion marks a line carrying a DNS question. Every other kind
// (AXFR, PING, CMD, ...) is acknowledged with END and nothing else.
const KindQuestion QueryKind = "Q"

// Query is one decoded pipe protocol line.
//
// A question line populates every field. A two field control line populates
// only Kind and ID; the remaining fields are empty. TTL is always set.
type Query struct {
	Kind     QueryKind
	Name     string
	Class    string
	Type     RRType
	ID       string
	RemoteIP string
	TTL      uint32
}

// NewQuestion builds a fully populated Query from the six fields of a question line.
func NewQuestion(kind QueryKind, name, class string, rrtype RRType, id, remoteIP string, ttl uint32) Query {
	return Query{
		Kind:     kind,
		Name:     name,
		Class:    class,
		Type:     rrtype,
		ID:       id,
		RemoteIP: remoteIP,
		TTL:      ttl,
	}
}

// NewControl builds a minimally populated Query from a two field line.
func NewControl(kind QueryKind, id string, ttl uint32) Query {
	return Query{
		Kind: kind,
		ID:   id,
		TTL:  ttl,
	}
}

// IsQuestion reports whether the query asks a DNS question.
func (q Query) IsQuestion() bool {
	return q.Kind == KindQuestion
}
