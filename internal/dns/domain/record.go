package domain

import (
	"errors"
	"strings"
)

// ErrEmptyRecord is returned when a Record is built without text.
var ErrEmptyRecord = errors.New("record text must not be empty")

// Record is a rendered answer line ready to follow the DATA tag.
type Record struct {
	Type RRType
	Text string
}

// NewRecord constructs a Record and validates it.
func NewRecord(rrtype RRType, text string) (Record, error) {
	rr := Record{Type: rrtype, Text: text}
	if err := rr.Validate(); err != nil {
		return Record{}, err
	}
	return rr, nil
}

// Validate checks that the record carries text.
func (rr Record) Validate() error {
	if strings.TrimSpace(rr.Text) == "" {
		return ErrEmptyRecord
	}
	return nil
}

// Summary returns the record on a single line with tabs flattened to spaces
// and the line terminator removed, suitable for trace logging.
func (rr Record) Summary() string {
	s := strings.TrimRight(rr.Text, "\n")
	return strings.ReplaceAll(s, "\t", " ")
}
