// Package rrtext renders answer records in the text form the PowerDNS pipe
// protocol expects after the DATA tag. Every function is pure: identical
// inputs always produce byte-identical lines.
package rrtext

import (
	"strconv"
	"strings"

	"github.com/haukened/nodar/internal/dns/domain"
)

// fieldSep separates record fields on the wire.
const fieldSep = "\t"

// Formatter renders records for a single zone.
type Formatter struct {
	zone domain.Zone
}

// NewFormatter returns a Formatter bound to zone.
func NewFormatter(zone domain.Zone) *Formatter {
	return &Formatter{zone: zone}
}

// Zone returns the zone the formatter renders for.
func (f *Formatter) Zone() domain.Zone {
	return f.zone
}

// line joins fields with tabs and terminates the result with a newline.
func line(fields ...string) string {
	return strings.Join(fields, fieldSep) + "\n"
}

// ttl renders a TTL field.
func ttl(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
