package sax

import (
	"bytes"
	"fmt"
	"strings"
)

type openElement struct {
	qname  string
	name   Name
	nsMark int
}

type parser struct {
	data []byte
	pos  int
	opts Options
	h    Handler

	stack []openElement
	ns    *nsStack

	text      strings.Builder
	textStart int

	line    int
	lineOff int

	warnedUTF8     bool
	warnedPrefixes map[string]bool

	fatal   *ParseError
	stopErr error
}

// Parse runs a single forward pass over data and pushes every event to h.
// Recoverable problems are delivered as Error events and parsing goes on. A
// fatal problem is delivered the same way, followed by EndOfDocument, and is
// also returned. A non-nil error from the handler stops the pass and is
// returned as is.
func Parse(data []byte, h Handler) error {
	return ParseWithOptions(data, h, Options{})
}

func ParseWithOptions(data []byte, h Handler, opts Options) error {
	p := &parser{
		data:      data,
		opts:      opts,
		h:         h,
		ns:        newNSStack(),
		textStart: -1,
		line:      1,
	}
	p.run()

	if p.stopErr != nil {
		return p.stopErr
	}
	if p.fatal != nil {
		return p.fatal
	}
	return nil
}

func (p *parser) run() {
	if p.checkByteOrder() {
		for p.pos < len(p.data) && p.ok() {
			if p.data[p.pos] == '<' {
				p.markup()
			} else {
				p.charData()
			}
		}
	}
	p.finish()
}

func (p *parser) ok() bool {
	return p.stopErr == nil && p.fatal == nil
}

func (p *parser) finish() {
	if p.stopErr != nil {
		return
	}
	if p.fatal == nil {
		p.flushText()
		if len(p.stack) > 0 {
			top := p.stack[len(p.stack)-1]
			p.warn(UnclosedElement, len(p.data),
				fmt.Sprintf("%d element(s) still open at end of input, innermost <%s>", len(p.stack), top.qname))
		}
	}
	p.emit(Event{Kind: EndOfDocument, Offset: len(p.data), Depth: len(p.stack)})
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF32BE = []byte{0x00, 0x00, 0xFE, 0xFF}
	bomUTF32LE = []byte{0xFF, 0xFE, 0x00, 0x00}
)

func (p *parser) checkByteOrder() bool {
	d := p.data
	switch {
	case bytes.HasPrefix(d, bomUTF8):
		p.pos = len(bomUTF8)
	case bytes.HasPrefix(d, bomUTF32BE), bytes.HasPrefix(d, bomUTF32LE):
		p.fail(EncodingMismatch, 0, "UTF-32 byte order mark, input must be transcoded to UTF-8")
		return false
	case bytes.HasPrefix(d, bomUTF16BE), bytes.HasPrefix(d, bomUTF16LE):
		p.fail(EncodingMismatch, 0, "UTF-16 byte order mark, input must be transcoded to UTF-8")
		return false
	case len(d) >= 2 && (d[0] == 0 || d[1] == 0):
		p.fail(EncodingMismatch, 0, "NUL bytes at start of input, looks like UTF-16 or UTF-32")
		return false
	}
	return true
}

func (p *parser) emit(ev Event) {
	if p.stopErr != nil {
		return
	}
	if err := p.h.HandleEvent(ev); err != nil {
		p.stopErr = err
	}
}

func (p *parser) warn(kind ErrorKind, off int, detail string) {
	p.flushText()
	err := &ParseError{Kind: kind, Offset: off, Line: p.lineOf(off), Detail: detail}
	p.emit(Event{Kind: Error, Err: err, Offset: off, Depth: len(p.stack)})
}

func (p *parser) fail(kind ErrorKind, off int, detail string) {
	p.flushText()
	err := &ParseError{Kind: kind, Offset: off, Line: p.lineOf(off), Fatal: true, Detail: detail}
	p.fatal = err
	p.emit(Event{Kind: Error, Err: err, Offset: off, Depth: len(p.stack)})
}

func (p *parser) invalidUTF8(off int) {
	if p.warnedUTF8 {
		return
	}
	p.warnedUTF8 = true
	p.warn(EncodingMismatch, off, "invalid UTF-8 replaced with U+FFFD")
}

// lineOf counts newlines relative to the last offset it was asked about,
// moving backwards only over the gap between the two offsets.
func (p *parser) lineOf(off int) int {
	if off > len(p.data) {
		off = len(p.data)
	}
	if off < p.lineOff {
		p.line -= bytes.Count(p.data[off:p.lineOff], []byte{'\n'})
	} else {
		p.line += bytes.Count(p.data[p.lineOff:off], []byte{'\n'})
	}
	p.lineOff = off
	return p.line
}

func (p *parser) writeText(off int, s string) {
	if p.textStart < 0 {
		p.textStart = off
	}
	p.text.WriteString(s)
}

func (p *parser) writeTextBytes(off int, b []byte) {
	if p.textStart < 0 {
		p.textStart = off
	}
	p.text.Write(b)
}

func (p *parser) flushText() {
	if p.textStart < 0 {
		return
	}
	ev := Event{Kind: Characters, Text: p.text.String(), Offset: p.textStart, Depth: len(p.stack)}
	p.text.Reset()
	p.textStart = -1
	p.emit(ev)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.data) && isSpace(p.data[p.pos]) {
		p.pos++
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == ':' || c >= 0x80
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c >= '0' && c <= '9' || c == '-' || c == '.'
}
