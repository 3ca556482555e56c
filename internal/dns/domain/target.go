package domain

// Target is the measurement server the naming service selected for a client.
type Target struct {
	IP   string
	FQDN string
	Site string
}
