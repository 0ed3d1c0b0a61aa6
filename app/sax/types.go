package sax

// Kind identifies the variant carried by an Event.
type Kind int

const (
	StartElement Kind = iota + 1
	EndElement
	Characters
	CDATA
	Comment
	ProcessingInstruction
	Error
	EndOfDocument
)

func (k Kind) String() string {
	switch k {
	case StartElement:
		return "StartElement"
	case EndElement:
		return "EndElement"
	case Characters:
		return "Characters"
	case CDATA:
		return "CDATA"
	case Comment:
		return "Comment"
	case ProcessingInstruction:
		return "ProcessingInstruction"
	case Error:
		return "ParseError"
	case EndOfDocument:
		return "EndOfDocument"
	default:
		return "Unknown"
	}
}

const (
	XMLNamespace   = "http://www.w3.org/XML/1998/namespace"
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
)

// Name is an expanded element or attribute name. Prefix keeps the prefix as
// written in the document; Space is the namespace URI it resolved to.
type Name struct {
	Space  string
	Local  string
	Prefix string
}

func (n Name) Is(space, local string) bool {
	return n.Space == space && n.Local == local
}

func (n Name) String() string {
	if n.Space == "" {
		return n.Local
	}
	return "{" + n.Space + "}" + n.Local
}

type Attr struct {
	Name  Name
	Value string
}

// Event is a single parse event. Only the fields relevant to Kind are set.
type Event struct {
	Kind   Kind
	Name   Name
	Attrs  []Attr
	Text   string
	Target string
	Err    *ParseError
	Offset int
	Depth  int
}

// Attr returns the value of the attribute with the given expanded name.
func (e Event) Attr(space, local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// AttrValue looks up an attribute by local name regardless of namespace.
func (e Event) AttrValue(local string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

type Handler interface {
	HandleEvent(Event) error
}

type HandlerFunc func(Event) error

func (f HandlerFunc) HandleEvent(ev Event) error {
	return f(ev)
}

type Options struct {
	// HTML relaxes the grammar for tag soup: case-insensitive names, void
	// elements, unquoted attributes, raw text in script and style, and the
	// full HTML entity table. Namespaces are not resolved in this mode.
	HTML bool

	// Transcoded reports that data was already converted to UTF-8, so an
	// encoding declaration naming another charset is not a mismatch.
	Transcoded bool
}
