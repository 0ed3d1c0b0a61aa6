package feed

import (
	"encoding/base64"
	"strings"

	"github.com/lysyi3m/rsxml/app/sax"
)

// capture accumulates the text of one field until its element closes.
// Markup nested inside the field is written back out as escaped HTML.
type capture struct {
	depth  int
	nested int
	buf    strings.Builder
	done   func(string)

	// xhtml content drops the single wrapping div.
	xhtml   bool
	wrapped bool
	base64  bool
}

func (c *capture) text(s string) {
	if c.nested > 0 || c.xhtml {
		c.buf.WriteString(escapeText(s))
		return
	}
	c.buf.WriteString(s)
}

func (c *capture) start(ev sax.Event) {
	c.nested++
	if c.xhtml && c.nested == 1 && !c.wrapped && strings.EqualFold(ev.Name.Local, "div") {
		c.wrapped = true
		return
	}

	c.buf.WriteByte('<')
	c.buf.WriteString(qualified(ev.Name))
	for _, a := range ev.Attrs {
		if a.Name.Space == sax.XMLNSNamespace {
			continue
		}
		c.buf.WriteByte(' ')
		c.buf.WriteString(qualified(a.Name))
		c.buf.WriteString(`="`)
		c.buf.WriteString(escapeAttr(a.Value))
		c.buf.WriteByte('"')
	}
	c.buf.WriteByte('>')
}

func (c *capture) end(name sax.Name) {
	c.nested--
	if c.wrapped && c.nested == 0 {
		c.wrapped = false
		return
	}
	if sax.IsVoidElement(strings.ToLower(name.Local)) {
		return
	}
	c.buf.WriteString("</")
	c.buf.WriteString(qualified(name))
	c.buf.WriteByte('>')
}

func (c *capture) finish() {
	s := strings.TrimSpace(c.buf.String())
	if c.base64 {
		if decoded, err := base64.StdEncoding.DecodeString(s); err == nil {
			s = strings.TrimSpace(string(decoded))
		}
	}
	c.done(s)
}

func qualified(n sax.Name) string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
