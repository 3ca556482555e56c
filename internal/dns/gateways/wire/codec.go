package wire

import "github.com/haukened/nodar/internal/dns/domain"

// PipeCodec converts between PowerDNS pipe protocol lines and domain objects.
type PipeCodec interface {
	// Inbound
	// These methods classify lines read from PowerDNS.
	DecodeHello(line string) (Hello, bool)
	DecodeQuery(line string) (domain.Query, error)

	// Outbound
	// These methods produce complete, newline terminated protocol lines.
	EncodeOK(banner string) string
	EncodeFail() string
	EncodeData(rr domain.Record) string
	EncodeLog(msg string) string
	EncodeEnd() string
}

// Hello is the decoded handshake line.
type Hello struct {
	// ABIVersion is the protocol version PowerDNS announced, empty if none was sent.
	ABIVersion string
}
