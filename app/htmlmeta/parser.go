package htmlmeta

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/lysyi3m/rsxml/app/charset"
	"github.com/lysyi3m/rsxml/app/sax"
)

// errDone stops the engine once the head has been read.
var errDone = errors.New("done")

var feedTypes = map[string]bool{
	"application/rss+xml":  true,
	"application/atom+xml": true,
	"application/rdf+xml":  true,
}

// Parse reads page metadata from the document head. pageURL is used to
// resolve relative URLs and may be empty.
func Parse(data []byte, pageURL, hintedEncoding string) (*Metadata, error) {
	text, err := normalize(data, hintedEncoding)
	if err != nil {
		return nil, err
	}

	m := &metaScanner{meta: &Metadata{}, base: parseBase(pageURL)}
	if err := sax.ParseWithOptions(text, m, sax.Options{HTML: true, Transcoded: true}); err != nil && !errors.Is(err, errDone) && !errors.Is(err, sax.ErrFatal) {
		return nil, fmt.Errorf("failed to scan page head: %w", err)
	}

	if m.base != nil {
		m.meta.BaseURL = m.base.String()
	}
	return m.meta, nil
}

// ParseLinks returns every anchor with an href, in document order.
func ParseLinks(data []byte, pageURL, hintedEncoding string) ([]Link, error) {
	text, err := normalize(data, hintedEncoding)
	if err != nil {
		return nil, err
	}

	l := &linkScanner{base: parseBase(pageURL)}
	if err := sax.ParseWithOptions(text, l, sax.Options{HTML: true, Transcoded: true}); err != nil && !errors.Is(err, sax.ErrFatal) {
		return nil, fmt.Errorf("failed to scan links: %w", err)
	}
	return l.links, nil
}

func normalize(data []byte, hint string) ([]byte, error) {
	normalized, err := charset.Normalize(data, hint)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize encoding: %w", err)
	}
	return normalized.Data, nil
}

type metaScanner struct {
	meta    *Metadata
	base    *url.URL
	inTitle bool
	title   strings.Builder
}

func (m *metaScanner) HandleEvent(ev sax.Event) error {
	switch ev.Kind {
	case sax.StartElement:
		switch ev.Name.Local {
		case "body":
			return errDone
		case "title":
			m.inTitle = m.meta.Title == ""
		case "base":
			if href := strings.TrimSpace(ev.AttrValue("href")); href != "" {
				m.base = resolveBase(m.base, href)
			}
		case "link":
			m.link(ev)
		case "meta":
			m.metaTag(ev)
		}
	case sax.EndElement:
		if ev.Name.Local == "title" && m.inTitle {
			m.meta.Title = collapse(m.title.String())
			m.inTitle = false
		}
	case sax.Characters, sax.CDATA:
		if m.inTitle {
			m.title.WriteString(ev.Text)
		}
	}
	return nil
}

func (m *metaScanner) link(ev sax.Event) {
	href := strings.TrimSpace(ev.AttrValue("href"))
	if href == "" {
		return
	}
	rel := strings.Join(strings.Fields(strings.ToLower(ev.AttrValue("rel"))), " ")
	typ := strings.ToLower(strings.TrimSpace(ev.AttrValue("type")))

	switch {
	case hasToken(rel, "alternate") && feedTypes[typ]:
		m.meta.FeedLinks = append(m.meta.FeedLinks, FeedLink{
			Title: strings.TrimSpace(ev.AttrValue("title")),
			Type:  typ,
			URL:   resolve(m.base, href),
		})
	case hasToken(rel, "icon") || strings.HasPrefix(rel, "apple-touch-icon"):
		m.meta.Icons = append(m.meta.Icons, Icon{
			Rel:   rel,
			Sizes: strings.TrimSpace(ev.AttrValue("sizes")),
			URL:   resolve(m.base, href),
		})
	}
}

func (m *metaScanner) metaTag(ev sax.Event) {
	key := strings.ToLower(strings.TrimSpace(ev.AttrValue("property")))
	if key == "" {
		key = strings.ToLower(strings.TrimSpace(ev.AttrValue("name")))
	}
	content := strings.TrimSpace(ev.AttrValue("content"))
	if key == "" || content == "" {
		return
	}

	og := &m.meta.OpenGraph
	tw := &m.meta.Twitter
	switch key {
	case "description":
		m.meta.Description = content
	case "og:title":
		og.Title = content
	case "og:description":
		og.Description = content
	case "og:type":
		og.Type = content
	case "og:url":
		og.URL = resolve(m.base, content)
	case "og:image", "og:image:url":
		if og.Image == "" {
			og.Image = resolve(m.base, content)
		}
	case "og:site_name":
		og.SiteName = content
	case "twitter:card":
		tw.Card = content
	case "twitter:site":
		tw.Site = content
	case "twitter:title":
		tw.Title = content
	case "twitter:description":
		tw.Description = content
	case "twitter:image", "twitter:image:src":
		if tw.Image == "" {
			tw.Image = resolve(m.base, content)
		}
	}
}

type linkScanner struct {
	base   *url.URL
	links  []Link
	anchor *Link
	text   strings.Builder
}

func (l *linkScanner) HandleEvent(ev sax.Event) error {
	switch ev.Kind {
	case sax.StartElement:
		switch ev.Name.Local {
		case "base":
			if href := strings.TrimSpace(ev.AttrValue("href")); href != "" {
				l.base = resolveBase(l.base, href)
			}
		case "a":
			l.closeAnchor()
			href := strings.TrimSpace(ev.AttrValue("href"))
			if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
				return nil
			}
			l.anchor = &Link{URL: resolve(l.base, href), Title: strings.TrimSpace(ev.AttrValue("title"))}
			l.text.Reset()
		}
	case sax.EndElement:
		if ev.Name.Local == "a" {
			l.closeAnchor()
		}
	case sax.Characters, sax.CDATA:
		if l.anchor != nil {
			l.text.WriteString(ev.Text)
		}
	case sax.EndOfDocument:
		l.closeAnchor()
	}
	return nil
}

func (l *linkScanner) closeAnchor() {
	if l.anchor == nil {
		return
	}
	l.anchor.Text = collapse(l.text.String())
	l.links = append(l.links, *l.anchor)
	l.anchor = nil
}

func parseBase(pageURL string) *url.URL {
	if pageURL == "" {
		return nil
	}
	u, err := url.Parse(pageURL)
	if err != nil || !u.IsAbs() {
		return nil
	}
	return u
}

func resolveBase(current *url.URL, href string) *url.URL {
	u, err := url.Parse(href)
	if err != nil {
		return current
	}
	if current != nil {
		return current.ResolveReference(u)
	}
	if u.IsAbs() {
		return u
	}
	return nil
}

func resolve(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

func hasToken(list, token string) bool {
	for _, t := range strings.Fields(list) {
		if t == token {
			return true
		}
	}
	return false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
