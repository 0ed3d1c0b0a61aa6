package sax

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// IsVoidElement reports whether the lowercase HTML element name never has
// content or an end tag.
func IsVoidElement(name string) bool {
	return voidElements[name]
}

// Elements whose content is text up to the matching end tag. The value
// reports whether entities are decoded inside.
var textElements = map[string]bool{
	"script":   false,
	"style":    false,
	"title":    true,
	"textarea": true,
}

func (p *parser) openHTML(start int, name string, raw []rawAttr, selfClosing bool) {
	attrs := make([]Attr, 0, len(raw))
	for _, a := range raw {
		attrs = append(attrs, Attr{Name: Name{Local: a.qname}, Value: a.value})
	}

	el := Name{Local: name}
	p.stack = append(p.stack, openElement{qname: name, name: el, nsMark: p.ns.mark()})
	p.emit(Event{Kind: StartElement, Name: el, Attrs: attrs, Offset: start, Depth: len(p.stack)})

	if selfClosing || voidElements[name] {
		p.closeTop(start)
		return
	}
	if escapable, ok := textElements[name]; ok {
		p.elementText(name, escapable)
	}
}

func (p *parser) elementText(name string, escapable bool) {
	start := p.pos
	end := indexEndTag(p.data[start:], name)
	if end < 0 {
		end = len(p.data) - start
	}
	p.pos = start + end
	if end == 0 {
		return
	}

	s := p.rawString(start, p.data[start:start+end])
	if escapable {
		s = html.UnescapeString(s)
	}
	p.writeText(start, s)
	p.flushText()
}

// closeHTML closes the innermost open element with the given name and every
// element opened after it. End tags with no open match are dropped.
func (p *parser) closeHTML(off int, name string) {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].qname == name {
			for len(p.stack) > i {
				p.closeTop(off)
			}
			return
		}
	}
}

func indexEndTag(b []byte, name string) int {
	for i := 0; i < len(b); {
		j := bytes.Index(b[i:], []byte("</"))
		if j < 0 {
			return -1
		}
		j += i
		rest := b[j+2:]
		if len(rest) >= len(name) && strings.EqualFold(string(rest[:len(name)]), name) {
			if len(rest) == len(name) || !isNameChar(rest[len(name)]) {
				return j
			}
		}
		i = j + 2
	}
	return -1
}
