package sax

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	commentOpen  = []byte("<!--")
	commentClose = []byte("-->")
	cdataOpen    = []byte("<![CDATA[")
	cdataClose   = []byte("]]>")
	piClose      = []byte("?>")
)

type rawAttr struct {
	qname string
	value string
	off   int
}

func (p *parser) markup() {
	p.flushText()
	start := p.pos
	rest := p.data[p.pos:]

	switch {
	case bytes.HasPrefix(rest, commentOpen):
		p.comment(start)
	case bytes.HasPrefix(rest, cdataOpen):
		p.cdata(start)
	case bytes.HasPrefix(rest, []byte("<!")):
		p.declaration(start)
	case bytes.HasPrefix(rest, []byte("<?")):
		p.procInst(start)
	case bytes.HasPrefix(rest, []byte("</")):
		p.endTag(start)
	case len(rest) > 1 && isNameStart(rest[1]):
		p.startTag(start)
	default:
		if !p.opts.HTML {
			p.warn(MalformedMarkup, start, "'<' not followed by a name")
		}
		p.writeText(start, "<")
		p.pos++
	}
}

func (p *parser) comment(start int) {
	body := start + len(commentOpen)
	end := bytes.Index(p.data[body:], commentClose)
	if end < 0 {
		p.pos = len(p.data)
		p.fail(UnterminatedTag, start, "comment not closed")
		return
	}
	p.pos = body + end + len(commentClose)
	text := p.rawString(start, p.data[body:body+end])
	p.emit(Event{Kind: Comment, Text: text, Offset: start, Depth: len(p.stack)})
}

func (p *parser) cdata(start int) {
	body := start + len(cdataOpen)
	end := bytes.Index(p.data[body:], cdataClose)
	if end < 0 {
		p.pos = len(p.data)
		p.fail(UnterminatedTag, start, "CDATA section not closed")
		return
	}
	p.pos = body + end + len(cdataClose)
	text := p.rawString(start, p.data[body:body+end])
	p.emit(Event{Kind: CDATA, Text: text, Offset: start, Depth: len(p.stack)})
}

// declaration skips <!DOCTYPE ...> and other markup declarations, including
// an internal subset in brackets.
func (p *parser) declaration(start int) {
	var quote byte
	depth := 0
	for i := start + 2; i < len(p.data); i++ {
		c := p.data[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			if depth > 0 {
				depth--
			}
		case c == '>' && depth == 0:
			p.pos = i + 1
			return
		}
	}
	p.pos = len(p.data)
	p.fail(UnterminatedTag, start, "markup declaration not closed")
}

func (p *parser) procInst(start int) {
	body := start + 2
	end := bytes.Index(p.data[body:], piClose)
	if end < 0 {
		p.pos = len(p.data)
		p.fail(UnterminatedTag, start, "processing instruction not closed")
		return
	}
	p.pos = body + end + len(piClose)

	content := p.rawString(start, p.data[body:body+end])
	target, data := content, ""
	if i := strings.IndexFunc(content, unicode.IsSpace); i >= 0 {
		target, data = content[:i], strings.TrimSpace(content[i:])
	}
	if target == "" {
		p.warn(MalformedMarkup, start, "processing instruction without target")
		return
	}
	if strings.EqualFold(target, "xml") {
		p.checkDeclaredEncoding(start, data)
	}
	p.emit(Event{Kind: ProcessingInstruction, Target: target, Text: data, Offset: start, Depth: len(p.stack)})
}

func (p *parser) checkDeclaredEncoding(off int, decl string) {
	if p.opts.Transcoded || p.opts.HTML {
		return
	}
	enc := strings.ToLower(pseudoAttr(decl, "encoding"))
	switch enc {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return
	}
	p.warn(EncodingMismatch, off, fmt.Sprintf("declared encoding %q but input is read as UTF-8", enc))
	p.warnedUTF8 = true
}

func (p *parser) startTag(start int) {
	p.pos++
	qname := p.readName()

	var attrs []rawAttr
	selfClosing := false

loop:
	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			p.fail(UnterminatedTag, start, "start tag <"+qname+"> not closed")
			return
		}

		c := p.data[p.pos]
		switch {
		case c == '>':
			p.pos++
			break loop
		case c == '/' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '>':
			p.pos += 2
			selfClosing = true
			break loop
		case c == '<':
			if !p.opts.HTML {
				p.warn(MalformedMarkup, p.pos, "start tag <"+qname+"> not closed before next tag")
			}
			break loop
		case !isNameStart(c):
			if !p.opts.HTML {
				p.warn(MalformedMarkup, p.pos, fmt.Sprintf("unexpected %q in start tag <%s>", c, qname))
			}
			p.pos++
			continue
		}

		off := p.pos
		name := p.readName()
		if p.opts.HTML {
			name = strings.ToLower(name)
		}
		p.skipSpace()

		value := ""
		if p.pos < len(p.data) && p.data[p.pos] == '=' {
			p.pos++
			p.skipSpace()
			v, ok := p.attrValue(start, name)
			if !ok {
				return
			}
			value = v
		} else if !p.opts.HTML {
			p.warn(MalformedMarkup, off, "attribute "+name+" has no value")
		}

		if hasAttr(attrs, name) {
			if !p.opts.HTML {
				p.warn(MalformedMarkup, off, "duplicate attribute "+name)
			}
			continue
		}
		attrs = append(attrs, rawAttr{qname: name, value: value, off: off})
	}

	if p.opts.HTML {
		p.openHTML(start, strings.ToLower(qname), attrs, selfClosing)
		return
	}
	p.openXML(start, qname, attrs, selfClosing)
}

func hasAttr(attrs []rawAttr, qname string) bool {
	for _, a := range attrs {
		if a.qname == qname {
			return true
		}
	}
	return false
}

func (p *parser) attrValue(tagStart int, name string) (string, bool) {
	if p.pos >= len(p.data) {
		p.fail(UnterminatedTag, tagStart, "start tag not closed")
		return "", false
	}

	var b strings.Builder
	q := p.data[p.pos]
	if q != '"' && q != '\'' {
		if !p.opts.HTML {
			p.warn(MalformedMarkup, p.pos, "unquoted value for attribute "+name)
		}
		for p.pos < len(p.data) {
			c := p.data[p.pos]
			if isSpace(c) || c == '>' {
				break
			}
			p.attrChar(&b, len(p.data))
		}
		return b.String(), true
	}

	end := bytes.IndexByte(p.data[p.pos+1:], q)
	if end < 0 {
		p.pos = len(p.data)
		p.fail(UnterminatedTag, tagStart, "value of attribute "+name+" not closed")
		return "", false
	}
	limit := p.pos + 1 + end
	p.pos++
	for p.pos < limit {
		p.attrChar(&b, limit)
	}
	p.pos = limit + 1
	return b.String(), true
}

// attrChar decodes one unit of an attribute value, normalising whitespace
// characters to spaces.
func (p *parser) attrChar(b *strings.Builder, limit int) {
	c := p.data[p.pos]
	switch {
	case c == '&':
		off := p.pos
		s, kind, detail := p.reference(limit)
		if kind != "" {
			p.warn(kind, off, detail)
		}
		b.WriteString(s)
	case c == '\r':
		b.WriteByte(' ')
		p.pos++
		if p.pos < limit && p.data[p.pos] == '\n' {
			p.pos++
		}
	case c == '\t' || c == '\n':
		b.WriteByte(' ')
		p.pos++
	case c < utf8.RuneSelf:
		b.WriteByte(c)
		p.pos++
	default:
		r, size := utf8.DecodeRune(p.data[p.pos:limit])
		if r == utf8.RuneError && size <= 1 {
			p.invalidUTF8(p.pos)
			b.WriteRune(utf8.RuneError)
			p.pos++
			return
		}
		b.Write(p.data[p.pos : p.pos+size])
		p.pos += size
	}
}

func (p *parser) readName() string {
	start := p.pos
	for p.pos < len(p.data) && isNameChar(p.data[p.pos]) {
		p.pos++
	}
	name := string(p.data[start:p.pos])
	if !utf8.ValidString(name) {
		p.invalidUTF8(start)
		name = strings.ToValidUTF8(name, string(utf8.RuneError))
	}
	return name
}

func (p *parser) openXML(start int, qname string, raw []rawAttr, selfClosing bool) {
	mark := p.ns.mark()
	for _, a := range raw {
		switch {
		case a.qname == "xmlns":
			p.ns.push("", a.value)
		case strings.HasPrefix(a.qname, "xmlns:"):
			p.ns.push(a.qname[len("xmlns:"):], a.value)
		}
	}

	name := p.resolve(start, qname, true)
	attrs := make([]Attr, 0, len(raw))
	for _, a := range raw {
		attrs = append(attrs, Attr{Name: p.resolve(a.off, a.qname, false), Value: a.value})
	}

	p.stack = append(p.stack, openElement{qname: qname, name: name, nsMark: mark})
	p.emit(Event{Kind: StartElement, Name: name, Attrs: attrs, Offset: start, Depth: len(p.stack)})
	if selfClosing {
		p.closeTop(start)
	}
}

func (p *parser) resolve(off int, qname string, element bool) Name {
	if qname == "xmlns" && !element {
		return Name{Space: XMLNSNamespace, Local: qname}
	}

	prefix, local := splitQName(qname)
	if prefix == "" {
		if !element {
			return Name{Local: local}
		}
		uri, _ := p.ns.lookup("")
		return Name{Space: uri, Local: local}
	}

	uri, ok := p.ns.lookup(prefix)
	if !ok && !p.warnedPrefixes[prefix] {
		if p.warnedPrefixes == nil {
			p.warnedPrefixes = make(map[string]bool)
		}
		p.warnedPrefixes[prefix] = true
		p.warn(UnboundPrefix, off, "namespace prefix "+prefix+" is not bound")
	}
	return Name{Space: uri, Local: local, Prefix: prefix}
}

func (p *parser) endTag(start int) {
	p.pos += 2
	qname := p.readName()
	p.skipSpace()

	if p.pos >= len(p.data) {
		p.fail(UnterminatedTag, start, "end tag </"+qname+"> not closed")
		return
	}
	if p.data[p.pos] == '>' {
		p.pos++
	} else {
		if !p.opts.HTML {
			p.warn(MalformedMarkup, p.pos, "unexpected content in end tag </"+qname+">")
		}
		i := bytes.IndexAny(p.data[p.pos:], "<>")
		switch {
		case i < 0:
			p.pos = len(p.data)
			p.fail(UnterminatedTag, start, "end tag </"+qname+"> not closed")
			return
		case p.data[p.pos+i] == '>':
			p.pos += i + 1
		default:
			p.pos += i
		}
	}

	if p.opts.HTML {
		p.closeHTML(start, strings.ToLower(qname))
		return
	}
	if qname == "" {
		p.warn(MalformedMarkup, start, "end tag without a name")
		return
	}
	if len(p.stack) == 0 {
		p.warn(TagMismatch, start, "end tag </"+qname+"> with no open element")
		return
	}
	if top := p.stack[len(p.stack)-1]; top.qname != qname {
		p.warn(TagMismatch, start, fmt.Sprintf("end tag </%s> does not match <%s>", qname, top.qname))
	}
	p.closeTop(start)
}

func (p *parser) closeTop(off int) {
	top := p.stack[len(p.stack)-1]
	p.emit(Event{Kind: EndElement, Name: top.name, Offset: off, Depth: len(p.stack)})
	p.stack = p.stack[:len(p.stack)-1]
	p.ns.popTo(top.nsMark)
}

// DeclaredEncoding returns the encoding named in the XML declaration at the
// start of data, or "" when there is none.
func DeclaredEncoding(data []byte) string {
	data = bytes.TrimPrefix(data, bomUTF8)
	data = bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(data, []byte("<?xml")) || len(data) < 6 || !isSpace(data[5]) {
		return ""
	}
	if len(data) > 1024 {
		data = data[:1024]
	}
	end := bytes.Index(data, piClose)
	if end < 0 {
		return ""
	}
	return pseudoAttr(string(data[5:end]), "encoding")
}

// pseudoAttr reads name="value" out of a declaration body.
func pseudoAttr(decl, name string) string {
	for i := 0; i < len(decl); {
		j := strings.Index(decl[i:], name)
		if j < 0 {
			return ""
		}
		j += i
		i = j + len(name)
		if j > 0 && !isSpace(decl[j-1]) {
			continue
		}
		rest := strings.TrimLeft(decl[i:], " \t\r\n")
		if !strings.HasPrefix(rest, "=") {
			continue
		}
		rest = strings.TrimLeft(rest[1:], " \t\r\n")
		if rest == "" || (rest[0] != '"' && rest[0] != '\'') {
			return ""
		}
		if k := strings.IndexByte(rest[1:], rest[0]); k >= 0 {
			return rest[1 : k+1]
		}
		return ""
	}
	return ""
}
