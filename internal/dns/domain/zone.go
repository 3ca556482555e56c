package domain

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// Zone holds the process-wide constants of the single zone nodar serves.
// It is built once at startup and passed by value; nothing mutates it.
type Zone struct {
	// Name is the zone apex without a trailing dot, e.g. "donar.measurement-lab.org".
	Name string
	// Alias is the host label(s) under the apex answered with A records, e.g. "ndt.iupui".
	Alias string
	// TTL is applied to every record.
	TTL uint32
	// NSPrefix is prepended to each peer host to form an NS target, e.g. "utility.mlab.".
	NSPrefix string
}

// NewZone constructs a Zone and validates its fields.
func NewZone(name, alias string, ttl uint32, nsPrefix string) (Zone, error) {
	z := Zone{
		Name:     strings.TrimSuffix(strings.TrimSpace(name), "."),
		Alias:    strings.Trim(strings.TrimSpace(alias), "."),
		TTL:      ttl,
		NSPrefix: nsPrefix,
	}
	if err := z.Validate(); err != nil {
		return Zone{}, err
	}
	return z, nil
}

// Validate checks whether the Zone fields are usable.
func (z Zone) Validate() error {
	if z.Name == "" {
		return fmt.Errorf("zone name must not be empty")
	}
	if _, ok := dns.IsDomainName(z.Name); !ok {
		return fmt.Errorf("invalid zone name: %q", z.Name)
	}
	if z.Alias == "" {
		return fmt.Errorf("zone alias must not be empty")
	}
	if _, ok := dns.IsDomainName(z.AliasName()); !ok {
		return fmt.Errorf("invalid alias name: %q", z.AliasName())
	}
	if z.TTL == 0 {
		return fmt.Errorf("zone TTL must be positive")
	}
	return nil
}

// Origin returns the fully qualified apex, e.g. "donar.measurement-lab.org.".
func (z Zone) Origin() string {
	return dns.Fqdn(z.Name)
}

// AliasName returns the alias host under the apex, e.g. "ndt.iupui.donar.measurement-lab.org".
func (z Zone) AliasName() string {
	return z.Alias + "." + z.Name
}

// AcceptedNames lists the query names nodar answers for, alias first.
func (z Zone) AcceptedNames() []string {
	return []string{z.AliasName(), z.Name}
}

// Accepts reports whether name is one of the accepted names. Comparison is
// case-insensitive and ignores a trailing dot.
func (z Zone) Accepts(name string) bool {
	if name == "" {
		return false
	}
	want := dns.CanonicalName(name)
	for _, n := range z.AcceptedNames() {
		if dns.CanonicalName(n) == want {
			return true
		}
	}
	return false
}

// PeerHostname turns a host list entry into an NS target.
func (z Zone) PeerHostname(entry string) string {
	return z.NSPrefix + entry
}
