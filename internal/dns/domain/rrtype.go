package domain

import "github.com/miekg/dns"

// RRType is the record type token exactly as the host sent it (e.g. "A", "SOA").
// Unknown tokens are kept verbatim so they can be echoed and logged.
type RRType string

// Record type tokens nodar answers for.
const (
	RRTypeA   RRType = "A"
	RRTypeNS  RRType = "NS"
	RRTypeSOA RRType = "SOA"
	RRTypeANY RRType = "ANY"
)

// Code returns the IANA type code for the token, or 0 if it is unknown.
func (t RRType) Code() uint16 {
	return dns.StringToType[string(t)]
}

// IsKnown reports whether the token names a registered DNS record type.
func (t RRType) IsKnown() bool {
	return t.Code() != 0
}

// WantsA reports whether a question of this type is answered with A records.
func (t RRType) WantsA() bool {
	return t == RRTypeA || t == RRTypeANY
}

// WantsNS reports whether a question of this type is answered with NS records.
func (t RRType) WantsNS() bool {
	return t == RRTypeNS || t == RRTypeANY
}

// WantsSOA reports whether a question of this type is answered with the SOA record.
// ANY does not include SOA.
func (t RRType) WantsSOA() bool {
	return t == RRTypeSOA
}

func (t RRType) String() string {
	return string(t)
}
