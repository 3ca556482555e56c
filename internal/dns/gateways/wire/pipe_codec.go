// Package wire provides decoding and encoding of the PowerDNS pipe backend
// protocol: tab separated, newline terminated text lines, each reply line
// starting with a tag (OK, FAIL, DATA, LOG, END).
package wire

import (
	"errors"
	"fmt"
	"strings"

	"github.com/haukened/nodar/internal/dns/common/log"
	"github.com/haukened/nodar/internal/dns/domain"
)

// Protocol tags and separators.
const (
	fieldSep = "\t"
	lineEnd  = "\n"

	tagHello = "HELO"
	tagOK    = "OK"
	tagFail  = "FAIL"
	tagData  = "DATA"
	tagLog   = "LOG"
	tagEnd   = "END"
)

// Field counts of the two accepted line shapes.
const (
	questionFields = 6
	controlFields  = 2
)

// ErrMalformedQuery is returned for lines that are neither a question nor a control line.
var ErrMalformedQuery = errors.New("FAILED to parse query")

// pipeCodec implements PipeCodec for ABI version 1 of the pipe protocol.
type pipeCodec struct {
	ttl    uint32
	logger log.Logger
}

// NewPipeCodec returns a PipeCodec that stamps every decoded query with ttl.
func NewPipeCodec(ttl uint32, logger log.Logger) *pipeCodec {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &pipeCodec{
		ttl:    ttl,
		logger: logger,
	}
}

// DecodeHello reports whether line is a handshake. PowerDNS sends
// "HELO\t<abi>"; any line containing HELO is accepted.
func (c *pipeCodec) DecodeHello(line string) (Hello, bool) {
	if !strings.Contains(line, tagHello) {
		return Hello{}, false
	}
	var h Hello
	fields := strings.Split(strings.TrimSpace(line), fieldSep)
	if len(fields) > 1 && fields[0] == tagHello {
		h.ABIVersion = strings.TrimSpace(fields[1])
	}
	return h, true
}

// DecodeQuery splits a trimmed line into a Query. Six fields form a question,
// two fields a control line; anything else is ErrMalformedQuery quoting the line.
func (c *pipeCodec) DecodeQuery(line string) (domain.Query, error) {
	fields := strings.Split(line, fieldSep)

	switch len(fields) {
	case questionFields:
		q := domain.NewQuestion(
			domain.QueryKind(fields[0]),
			fields[1],
			fields[2],
			domain.RRType(fields[3]),
			fields[4],
			fields[5],
			c.ttl,
		)
		c.logger.Debug(map[string]any{
			"kind":  fields[0],
			"qname": q.Name,
			"qtype": q.Type.String(),
			"id":    q.ID,
		}, "decoded question")
		return q, nil

	case controlFields:
		return domain.NewControl(domain.QueryKind(fields[0]), fields[1], c.ttl), nil

	default:
		c.logger.Debug(map[string]any{
			"fields": len(fields),
			"line":   line,
		}, "malformed query line")
		return domain.Query{}, fmt.Errorf("%w: %s", ErrMalformedQuery, line)
	}
}

// EncodeOK returns the handshake acknowledgement.
func (c *pipeCodec) EncodeOK(banner string) string {
	return tagOK + fieldSep + banner + lineEnd
}

// EncodeFail returns the handshake rejection.
func (c *pipeCodec) EncodeFail() string {
	return tagFail + lineEnd
}

// EncodeData prefixes a rendered record with the DATA tag. The record text
// already carries its own line terminator.
func (c *pipeCodec) EncodeData(rr domain.Record) string {
	text := rr.Text
	if !strings.HasSuffix(text, lineEnd) {
		text += lineEnd
	}
	return tagData + fieldSep + text
}

// EncodeLog returns a LOG line. Tabs and line breaks inside msg become spaces
// so the message always occupies exactly one line.
func (c *pipeCodec) EncodeLog(msg string) string {
	msg = strings.TrimRight(msg, "\r\n")
	msg = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(msg)
	return tagLog + fieldSep + msg + lineEnd
}

// EncodeEnd returns the end of response marker.
func (c *pipeCodec) EncodeEnd() string {
	return tagEnd + lineEnd
}

var _ PipeCodec = (*pipeCodec)(nil)
