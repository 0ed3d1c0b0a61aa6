package feed

import (
	"errors"
	"fmt"

	"github.com/lysyi3m/rsxml/app/sax"
)

type ErrorKind string

const (
	NotAFeed          ErrorKind = "not-a-feed"
	UnsupportedFlavor ErrorKind = "unsupported-flavor"
)

var (
	ErrNotAFeed          = errors.New("document is not a feed")
	ErrUnsupportedFlavor = errors.New("unsupported feed flavor")
)

// Error is a fatal extraction failure. No feed accompanies it.
type Error struct {
	Kind   ErrorKind
	Root   sax.Name
	Offset int
	Err    error
}

func (e *Error) Error() string {
	msg := ErrNotAFeed.Error()
	if e.Kind == UnsupportedFlavor {
		msg = ErrUnsupportedFlavor.Error()
	}
	if e.Root.Local != "" {
		msg = fmt.Sprintf("%s: root element %s", msg, e.Root)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotAFeed:
		return e.Kind == NotAFeed
	case ErrUnsupportedFlavor:
		return e.Kind == UnsupportedFlavor
	}
	return false
}

func (e *Error) Unwrap() error {
	return e.Err
}

type WarningKind string

const (
	WarnTruncatedDocument WarningKind = "truncated-document"
	WarnUnparseableDate   WarningKind = "unparseable-date"
	WarnIgnoredElement    WarningKind = "ignored-element"

	WarnUnknownEntity             = WarningKind(sax.UnknownEntity)
	WarnInvalidCharacterReference = WarningKind(sax.InvalidCharacterReference)
	WarnTagMismatch               = WarningKind(sax.TagMismatch)
	WarnUnterminatedTag           = WarningKind(sax.UnterminatedTag)
	WarnMalformedMarkup           = WarningKind(sax.MalformedMarkup)
	WarnUnclosedElement           = WarningKind(sax.UnclosedElement)
	WarnEncodingMismatch          = WarningKind(sax.EncodingMismatch)
	WarnUnboundPrefix             = WarningKind(sax.UnboundPrefix)
)

// Warning is a recoverable problem met while extracting a feed. ByteOffset
// indexes the document as passed in, before any transcoding.
type Warning struct {
	Kind       WarningKind `json:"kind"`
	ByteOffset int         `json:"byte_offset"`
	Detail     string      `json:"detail,omitempty"`
}

func (w Warning) String() string {
	if w.Detail == "" {
		return fmt.Sprintf("%s at offset %d", w.Kind, w.ByteOffset)
	}
	return fmt.Sprintf("%s at offset %d: %s", w.Kind, w.ByteOffset, w.Detail)
}
