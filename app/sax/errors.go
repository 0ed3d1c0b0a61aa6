package sax

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	UnknownEntity             ErrorKind = "unknown-entity"
	InvalidCharacterReference ErrorKind = "invalid-character-reference"
	TagMismatch               ErrorKind = "tag-mismatch"
	UnterminatedTag           ErrorKind = "unterminated-tag"
	MalformedMarkup           ErrorKind = "malformed-markup"
	UnclosedElement           ErrorKind = "unclosed-element"
	EncodingMismatch          ErrorKind = "encoding-mismatch"
	UnboundPrefix             ErrorKind = "unbound-prefix"
)

// ErrFatal is matched by every ParseError that stopped the parse.
var ErrFatal = errors.New("fatal xml error")

type ParseError struct {
	Kind   ErrorKind
	Offset int
	Line   int
	Fatal  bool
	Detail string
}

func (e *ParseError) Error() string {
	severity := "warning"
	if e.Fatal {
		severity = "error"
	}
	if e.Detail == "" {
		return fmt.Sprintf("xml %s: %s at line %d (offset %d)", severity, e.Kind, e.Line, e.Offset)
	}
	return fmt.Sprintf("xml %s: %s at line %d (offset %d): %s", severity, e.Kind, e.Line, e.Offset, e.Detail)
}

func (e *ParseError) Is(target error) bool {
	if target == ErrFatal {
		return e.Fatal
	}
	t, ok := target.(*ParseError)
	return ok && t.Kind == e.Kind
}
