package feed

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lysyi3m/rsxml/app/date"
	"github.com/lysyi3m/rsxml/app/sax"
)

// extractor is the accumulator for one parse call. It receives every engine
// event, sniffs the flavor and routes elements to feed and article fields.
type extractor struct {
	lookahead  int
	structural int
	pending    []sax.Event
	root       *sax.Name
	engineErr  *sax.ParseError

	flavor  Flavor
	version string
	core    string
	err     *Error

	feed    ParsedFeed
	title   ranked[string]
	link    ranked[string]
	icon    ranked[string]
	updated ranked[time.Time]

	path    []sax.Name
	skip    int
	capture *capture
	item    *articleBuilder
	author  *authorBuilder

	warnings []Warning
	ignored  map[sax.Name]bool
}

func newExtractor(lookahead int) *extractor {
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	return &extractor{
		lookahead: lookahead,
		ignored:   make(map[sax.Name]bool),
	}
}

func (x *extractor) HandleEvent(ev sax.Event) error {
	if x.flavor == 0 {
		return x.sniff(ev)
	}
	x.dispatch(ev)
	return nil
}

func (x *extractor) dispatch(ev sax.Event) {
	switch ev.Kind {
	case sax.StartElement:
		x.startElement(ev)
	case sax.EndElement:
		x.endElement()
	case sax.Characters, sax.CDATA:
		if x.capture != nil {
			x.capture.text(ev.Text)
		}
	case sax.Error:
		x.warn(WarningKind(ev.Err.Kind), ev.Offset, ev.Err.Detail)
	case sax.EndOfDocument:
		x.endDocument(ev)
	}
}

func (x *extractor) startElement(ev sax.Event) {
	x.path = append(x.path, ev.Name)
	depth := len(x.path)

	if x.capture != nil {
		x.capture.start(ev)
		return
	}
	if x.skip > 0 {
		return
	}

	var routed bool
	switch x.flavor {
	case FlavorAtom:
		routed = x.routeAtom(ev, depth)
	case FlavorRSS, FlavorRDF:
		routed = x.routeRSS(ev, depth)
	}
	if !routed {
		x.ignore(ev, depth)
	}
}

func (x *extractor) endElement() {
	depth := len(x.path)
	if depth == 0 {
		return
	}

	switch {
	case x.capture != nil && depth == x.capture.depth:
		c := x.capture
		x.capture = nil
		c.finish()
	case x.capture != nil:
		x.capture.end(x.path[depth-1])
	case x.skip == depth:
		x.skip = 0
	case x.skip > 0:
	case x.author != nil && depth == x.author.depth:
		x.closeAuthor()
	case x.item != nil && depth == x.item.depth:
		x.closeArticle()
	}

	x.path = x.path[:depth-1]
}

func (x *extractor) endDocument(ev sax.Event) {
	x.capture = nil
	if x.item != nil {
		x.warn(WarnTruncatedDocument, ev.Offset,
			fmt.Sprintf("document ended inside an article opened at offset %d", x.item.offset))
		x.item = nil
		x.author = nil
	}
	x.finish()
}

// ignore skips the element and its subtree, warning once per element name.
func (x *extractor) ignore(ev sax.Event, depth int) {
	x.skip = depth
	if x.ignored[ev.Name] {
		return
	}
	x.ignored[ev.Name] = true
	x.warn(WarnIgnoredElement, ev.Offset, ev.Name.String())
}

func (x *extractor) warn(kind WarningKind, offset int, detail string) {
	x.warnings = append(x.warnings, Warning{Kind: kind, ByteOffset: offset, Detail: detail})
}

func (x *extractor) parent() sax.Name {
	if len(x.path) < 2 {
		return sax.Name{}
	}
	return x.path[len(x.path)-2]
}

func (x *extractor) isCore(name sax.Name) bool {
	return name.Local != "" && name.Space == x.core
}

// captureText collects the element's text and hands the trimmed result to
// done when the element closes. Text captured inside an article also feeds
// its last-resort identifier.
func (x *extractor) captureText(done func(string)) *capture {
	if b := x.item; b != nil {
		next := done
		done = func(s string) {
			if s != "" {
				b.captured = append(b.captured, s)
			}
			next(s)
		}
	}
	x.capture = &capture{depth: len(x.path), done: done}
	return x.capture
}

func (x *extractor) captureDate(ev sax.Event, set func(time.Time)) {
	x.captureText(func(s string) {
		if s == "" {
			return
		}
		t, err := date.Parse(s)
		if err != nil {
			x.warn(WarnUnparseableDate, ev.Offset, s)
			return
		}
		set(t)
	})
}

func (x *extractor) openArticle(ev sax.Event) {
	if x.item != nil {
		x.closeArticle()
	}
	x.item = &articleBuilder{depth: len(x.path), offset: ev.Offset}
}

func (x *extractor) closeArticle() {
	b := x.item
	x.item = nil
	if x.author != nil && x.author.article == b {
		x.closeAuthor()
	}
	x.feed.Articles = append(x.feed.Articles, b.build())
}

// feedLink handles an Atom link at feed level, in either flavor.
func (x *extractor) feedLink(ev sax.Event) {
	href := strings.TrimSpace(ev.AttrValue("href"))
	if href == "" {
		return
	}
	switch linkRel(ev) {
	case "alternate":
		x.link.offer(href, linkRank(ev))
	case "self":
		if x.feed.FeedURL == "" {
			x.feed.FeedURL = href
		}
	}
}

func (x *extractor) finish() {
	f := &x.feed
	f.Flavor = x.flavor
	f.Version = x.version
	f.Title = x.title.value
	f.Link = x.link.value
	f.IconURL = x.icon.value
	if x.updated.set() {
		t := x.updated.value
		f.Updated = &t
	}

	base := baseURL(f.Link, f.FeedURL)
	f.Link = resolveURL(baseURL(f.FeedURL), f.Link)
	f.IconURL = resolveURL(base, f.IconURL)

	for i := range f.Articles {
		a := &f.Articles[i]
		a.Link = resolveURL(base, a.Link)
		a.ImageURL = resolveURL(base, a.ImageURL)
		for j := range a.Enclosures {
			a.Enclosures[j].URL = resolveURL(base, a.Enclosures[j].URL)
		}
		if len(a.Authors) == 0 && x.flavor == FlavorAtom && len(f.Authors) > 0 {
			a.Authors = append([]Author(nil), f.Authors...)
		}
	}
}

// baseURL returns the first absolute URL with a host among candidates.
func baseURL(candidates ...string) *url.URL {
	for _, c := range candidates {
		u, err := url.Parse(c)
		if err == nil && u.IsAbs() && u.Host != "" {
			return u
		}
	}
	return nil
}

func resolveURL(base *url.URL, ref string) string {
	if ref == "" || base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	return base.ResolveReference(u).String()
}

func isWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// linkRel reads an Atom link relation. A missing rel means alternate.
func linkRel(ev sax.Event) string {
	rel := strings.ToLower(strings.TrimSpace(ev.AttrValue("rel")))
	switch rel {
	case "", "http://www.iana.org/assignments/relation/alternate":
		return "alternate"
	}
	return rel
}

// linkRank prefers alternate links that point at HTML pages.
func linkRank(ev sax.Event) int {
	typ := strings.ToLower(strings.TrimSpace(ev.AttrValue("type")))
	if typ == "" || strings.Contains(typ, "html") {
		return 2
	}
	return 1
}
