package opml

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lysyi3m/rsxml/app/charset"
	"github.com/lysyi3m/rsxml/app/date"
	"github.com/lysyi3m/rsxml/app/sax"
)

var ErrNotOPML = errors.New("document is not OPML")

// Parse builds the outline tree of an OPML document. Recoverable markup
// problems are returned alongside the document.
func Parse(data []byte, hintedEncoding string) (*Document, []*sax.ParseError, error) {
	normalized, err := charset.Normalize(data, hintedEncoding)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to normalize encoding: %w", err)
	}

	b := &builder{doc: &Document{}}
	parseErr := sax.ParseWithOptions(normalized.Data, b, sax.Options{Transcoded: true})

	if b.err != nil {
		return nil, b.problems, b.err
	}
	if !b.root {
		if parseErr != nil {
			return nil, b.problems, fmt.Errorf("%w: %v", ErrNotOPML, parseErr)
		}
		return nil, b.problems, ErrNotOPML
	}

	slog.Debug("Parsed OPML", "title", b.doc.Title, "outlines", len(b.doc.Items), "warnings", len(b.problems))

	return b.doc, b.problems, nil
}

type builder struct {
	doc      *Document
	root     bool
	path     []string
	stack    []*Item
	field    string
	text     strings.Builder
	problems []*sax.ParseError
	err      error
}

var headFields = map[string]bool{
	"title":        true,
	"ownername":    true,
	"datecreated":  true,
	"datemodified": true,
}

func (b *builder) HandleEvent(ev sax.Event) error {
	switch ev.Kind {
	case sax.StartElement:
		return b.start(ev)
	case sax.EndElement:
		b.end()
	case sax.Characters, sax.CDATA:
		if b.field != "" {
			b.text.WriteString(ev.Text)
		}
	case sax.Error:
		b.problems = append(b.problems, ev.Err)
	}
	return nil
}

func (b *builder) start(ev sax.Event) error {
	local := strings.ToLower(ev.Name.Local)
	if !b.root {
		if local != "opml" {
			b.err = fmt.Errorf("%w: root element %s", ErrNotOPML, ev.Name)
			return b.err
		}
		b.root = true
		b.doc.Version = strings.TrimSpace(ev.AttrValue("version"))
	}

	parent := ""
	if n := len(b.path); n > 0 {
		parent = b.path[n-1]
	}
	b.path = append(b.path, local)

	switch {
	case local == "outline":
		item := &Item{Attributes: make(map[string]string, len(ev.Attrs))}
		for _, a := range ev.Attrs {
			item.Attributes[strings.ToLower(a.Name.Local)] = a.Value
		}
		if n := len(b.stack); n > 0 {
			b.stack[n-1].Children = append(b.stack[n-1].Children, item)
		} else {
			b.doc.Items = append(b.doc.Items, item)
		}
		b.stack = append(b.stack, item)
	case parent == "head" && headFields[local]:
		b.field = local
		b.text.Reset()
	}
	return nil
}

func (b *builder) end() {
	n := len(b.path)
	if n == 0 {
		return
	}
	local := b.path[n-1]
	b.path = b.path[:n-1]

	switch {
	case local == "outline" && len(b.stack) > 0:
		b.stack = b.stack[:len(b.stack)-1]
	case local == b.field:
		b.setHeadField(local, strings.TrimSpace(b.text.String()))
		b.field = ""
	}
}

func (b *builder) setHeadField(name, value string) {
	switch name {
	case "title":
		b.doc.Title = value
	case "ownername":
		b.doc.OwnerName = value
	case "datecreated", "datemodified":
		t, err := date.Parse(value)
		if err != nil {
			slog.Debug("Skipping OPML date", "field", name, "value", value, "error", err)
			return
		}
		if name == "datecreated" {
			b.doc.DateCreated = &t
		} else {
			b.doc.DateModified = &t
		}
	}
}
