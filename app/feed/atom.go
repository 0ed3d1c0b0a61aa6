package feed

import (
	"strings"
	"time"

	"github.com/lysyi3m/rsxml/app/sax"
)

// routeAtom handles Atom 1.0 and 0.3 documents.
func (x *extractor) routeAtom(ev sax.Event, depth int) bool {
	name := ev.Name
	switch {
	case depth == 1:
		if lang, ok := ev.Attr(sax.XMLNamespace, "lang"); ok {
			x.feed.Language = strings.TrimSpace(lang)
		}
		return true
	case x.author != nil:
		return x.routeAtomPerson(ev)
	case x.isCore(name) && name.Local == "entry":
		x.openArticle(ev)
		return true
	case x.item != nil:
		if x.isCore(name) && len(x.path) == x.item.depth+1 {
			return x.routeAtomEntry(ev)
		}
		return x.routeExtension(ev, x.item)
	case depth == 2 && x.isCore(name):
		return x.routeAtomFeed(ev)
	}
	return false
}

func (x *extractor) routeAtomFeed(ev sax.Event) bool {
	switch ev.Name.Local {
	case "title":
		x.captureConstruct(ev, offerText(&x.title, rankPrimary))
	case "subtitle", "tagline":
		x.captureConstruct(ev, func(s string) { x.feed.Description = s })
	case "link":
		x.feedLink(ev)
	case "updated", "modified":
		x.captureDate(ev, func(t time.Time) { x.updated.offer(t, rankPrimary) })
	case "icon":
		x.captureText(offerText(&x.icon, rankPrimary))
	case "logo":
		x.captureText(offerText(&x.icon, rankFallback))
	case "author":
		x.openAuthor(nil)
	default:
		return false
	}
	return true
}

func (x *extractor) routeAtomEntry(ev sax.Event) bool {
	b := x.item
	switch ev.Name.Local {
	case "id":
		x.captureText(offerText(&b.id, rankGUID))
	case "title":
		x.captureConstruct(ev, offerText(&b.title, rankPrimary))
	case "link":
		x.entryLink(ev, b)
	case "published", "issued":
		x.captureDate(ev, func(t time.Time) { b.published.offer(t, rankPrimary) })
	case "created":
		x.captureDate(ev, func(t time.Time) { b.published.offer(t, rankFallback) })
	case "updated", "modified":
		x.captureDate(ev, func(t time.Time) { b.updated.offer(t, rankPrimary) })
	case "content":
		x.captureConstruct(ev, offerText(&b.body, bodyContent))
	case "summary":
		x.captureConstruct(ev, offerText(&b.body, bodySummary))
	case "author":
		x.openAuthor(b)
	case "category":
		term := strings.TrimSpace(ev.AttrValue("term"))
		if term == "" {
			term = ev.AttrValue("label")
		}
		b.addCategory(term)
	default:
		return false
	}
	return true
}

func (x *extractor) routeAtomPerson(ev sax.Event) bool {
	ab := x.author
	if !x.isCore(ev.Name) || len(x.path) != ab.depth+1 {
		return false
	}
	switch ev.Name.Local {
	case "name":
		x.captureText(func(s string) { ab.author.Name = s })
	case "email":
		x.captureText(func(s string) { ab.author.Email = cleanEmail(s) })
	case "uri", "url":
		x.captureText(func(s string) { ab.author.URL = s })
	default:
		return false
	}
	return true
}

// captureConstruct captures an Atom text construct. Escaped HTML arrives
// already decoded; inline XHTML is serialized without its wrapping div.
// Atom 0.3 marks base64 and inline XML content with a mode attribute.
func (x *extractor) captureConstruct(ev sax.Event, done func(string)) {
	typ := strings.ToLower(strings.TrimSpace(ev.AttrValue("type")))
	mode := strings.ToLower(strings.TrimSpace(ev.AttrValue("mode")))

	c := x.captureText(done)
	c.xhtml = typ == "xhtml" || typ == "application/xhtml+xml" || mode == "xml"
	c.base64 = mode == "base64"
}

func (x *extractor) entryLink(ev sax.Event, b *articleBuilder) {
	href := strings.TrimSpace(ev.AttrValue("href"))
	if href == "" {
		return
	}
	switch linkRel(ev) {
	case "alternate":
		b.link.offer(href, linkRank(ev))
	case "enclosure":
		b.addEnclosure(href, ev.AttrValue("type"), ev.AttrValue("length"))
	}
}
