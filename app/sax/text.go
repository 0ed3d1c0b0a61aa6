package sax

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Longest HTML entity name is 31 bytes; anything longer is not a reference.
const maxReferenceLen = 34

var predefinedEntities = map[string]string{
	"lt":   "<",
	"gt":   ">",
	"amp":  "&",
	"apos": "'",
	"quot": `"`,
}

func (p *parser) charData() {
	for p.pos < len(p.data) && p.ok() {
		c := p.data[p.pos]
		switch {
		case c == '<':
			return
		case c == '&':
			off := p.pos
			s, kind, detail := p.reference(len(p.data))
			if kind != "" {
				p.warn(kind, off, detail)
			}
			p.writeText(off, s)
		case c == '\r':
			p.writeText(p.pos, "\n")
			p.pos++
			if p.pos < len(p.data) && p.data[p.pos] == '\n' {
				p.pos++
			}
		case c >= utf8.RuneSelf:
			r, size := utf8.DecodeRune(p.data[p.pos:])
			if r == utf8.RuneError && size <= 1 {
				p.invalidUTF8(p.pos)
				p.writeText(p.pos, string(utf8.RuneError))
				p.pos++
				continue
			}
			p.writeTextBytes(p.pos, p.data[p.pos:p.pos+size])
			p.pos += size
		default:
			end := p.pos + 1
			for end < len(p.data) {
				c := p.data[end]
				if c == '<' || c == '&' || c == '\r' || c >= utf8.RuneSelf {
					break
				}
				end++
			}
			p.writeTextBytes(p.pos, p.data[p.pos:end])
			p.pos = end
		}
	}
}

// reference decodes the entity or character reference starting at p.pos and
// moves past it. When the reference cannot be resolved the literal source
// text is returned together with the error kind to report.
func (p *parser) reference(limit int) (string, ErrorKind, string) {
	start := p.pos
	end := start + 1
	for end < limit && end-start <= maxReferenceLen {
		c := p.data[end]
		if c == ';' || c == '<' || c == '&' || c == '"' || c == '\'' || isSpace(c) {
			break
		}
		end++
	}

	if end >= limit || p.data[end] != ';' {
		p.pos = start + 1
		if p.opts.HTML {
			return "&", "", ""
		}
		return "&", UnknownEntity, "'&' does not start a reference"
	}

	raw := string(p.data[start : end+1])
	name := raw[1 : len(raw)-1]
	p.pos = end + 1

	if name == "" {
		return raw, UnknownEntity, "empty entity reference"
	}
	if name[0] == '#' {
		r, ok := parseCharRef(name[1:])
		if !ok {
			return raw, InvalidCharacterReference, raw
		}
		return string(r), "", ""
	}
	if s, ok := predefinedEntities[name]; ok {
		return s, "", ""
	}
	if p.opts.HTML {
		if s := html.UnescapeString(raw); s != raw {
			return s, "", ""
		}
	}
	return raw, UnknownEntity, raw
}

func parseCharRef(s string) (rune, bool) {
	base := 10
	if s != "" && (s[0] == 'x' || s[0] == 'X') {
		base = 16
		s = s[1:]
	}
	if s == "" || len(s) > 8 {
		return 0, false
	}
	n, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, false
	}
	r := rune(n)
	if !isXMLChar(r) {
		return 0, false
	}
	return r, true
}

func isXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// rawString converts a literal section (comment, CDATA, PI) to an owned
// string with newlines normalised and invalid UTF-8 replaced.
func (p *parser) rawString(off int, b []byte) string {
	s := string(b)
	if strings.IndexByte(s, '\r') >= 0 {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
	}
	if !utf8.ValidString(s) {
		p.invalidUTF8(off)
		s = strings.ToValidUTF8(s, string(utf8.RuneError))
	}
	return s
}
