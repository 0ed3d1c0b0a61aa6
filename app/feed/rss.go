package feed

import (
	"strings"
	"time"

	"github.com/lysyi3m/rsxml/app/sax"
)

// Ranks shared by RSS and RDF routing.
const (
	rankLink     = 3
	rankGUID     = 2
	rankAbout    = 1
	rankPrimary  = 2
	rankFallback = 1
)

// routeRSS handles RSS 2.0 and RDF documents. Both keep feed metadata in
// channel; RDF places items, image and textinput next to it.
func (x *extractor) routeRSS(ev sax.Event, depth int) bool {
	name := ev.Name
	parent := x.parent()

	switch {
	case depth == 1:
		return true
	case x.isCore(name) && name.Local == "channel":
		return true
	case x.isCore(name) && name.Local == "item":
		x.openArticle(ev)
		if about, ok := ev.Attr(nsRDF, "about"); ok {
			offerText(&x.item.id, rankAbout)(strings.TrimSpace(about))
		}
		return true
	case x.item != nil:
		return x.routeRSSItem(ev)
	case x.isCore(name) && name.Local == "image":
		return true
	case x.isCore(parent) && parent.Local == "image":
		return x.routeRSSImage(ev)
	case x.isCore(parent) && parent.Local == "channel":
		return x.routeRSSChannel(ev)
	}
	return false
}

func (x *extractor) routeRSSChannel(ev sax.Event) bool {
	name := ev.Name
	switch {
	case x.isCore(name):
		switch name.Local {
		case "title":
			x.captureText(offerText(&x.title, rankPrimary))
		case "link":
			x.captureText(offerText(&x.link, rankLink))
		case "description":
			x.captureText(func(s string) { x.feed.Description = s })
		case "language":
			x.captureText(func(s string) { x.feed.Language = s })
		case "lastBuildDate":
			x.captureDate(ev, func(t time.Time) { x.updated.offer(t, rankPrimary) })
		case "pubDate":
			x.captureDate(ev, func(t time.Time) { x.updated.offer(t, rankFallback) })
		case "managingEditor":
			x.captureText(func(s string) { x.addFeedAuthor(parseAuthor(s)) })
		case "items":
			// RDF table of contents; the items themselves follow.
			x.skip = len(x.path)
		default:
			return false
		}
		return true
	case name.Space == nsDC:
		switch name.Local {
		case "title":
			x.captureText(offerText(&x.title, rankFallback))
		case "language":
			x.captureText(func(s string) {
				if x.feed.Language == "" {
					x.feed.Language = s
				}
			})
		case "date":
			x.captureDate(ev, func(t time.Time) { x.updated.offer(t, rankFallback) })
		case "creator", "publisher":
			x.captureText(func(s string) { x.addFeedAuthor(Author{Name: s}) })
		default:
			return false
		}
		return true
	case name.Space == nsDCTerms && name.Local == "modified":
		x.captureDate(ev, func(t time.Time) { x.updated.offer(t, rankPrimary) })
		return true
	case isAtomNS(name.Space) && name.Local == "link":
		x.feedLink(ev)
		return true
	}
	return false
}

func (x *extractor) routeRSSImage(ev sax.Event) bool {
	if !x.isCore(ev.Name) {
		return false
	}
	switch ev.Name.Local {
	case "url":
		x.captureText(offerText(&x.icon, rankFallback))
	case "title", "link", "width", "height", "description":
	default:
		return false
	}
	return true
}

func (x *extractor) routeRSSItem(ev sax.Event) bool {
	b := x.item
	name := ev.Name
	if !x.isCore(name) {
		return x.routeExtension(ev, b)
	}

	switch name.Local {
	case "title":
		x.captureText(offerText(&b.title, rankPrimary))
	case "link":
		x.captureText(offerText(&b.link, rankLink))
	case "guid":
		permalink := !strings.EqualFold(strings.TrimSpace(ev.AttrValue("isPermaLink")), "false")
		x.captureText(func(s string) {
			offerText(&b.id, rankGUID)(s)
			if permalink && isWebURL(s) {
				b.permalink = s
			}
		})
	case "pubDate":
		x.captureDate(ev, func(t time.Time) { b.published.offer(t, rankPrimary) })
	case "description":
		x.captureText(offerText(&b.body, bodySummary))
	case "author":
		x.captureText(func(s string) { b.addAuthor(parseAuthor(s)) })
	case "category":
		x.captureText(b.addCategory)
	case "enclosure":
		b.addEnclosure(ev.AttrValue("url"), ev.AttrValue("type"), ev.AttrValue("length"))
	case "comments", "source":
	default:
		return false
	}
	return true
}

// routeExtension handles the namespaced modules feeds mix into items and
// entries: Dublin Core, content, Media RSS and Atom links.
func (x *extractor) routeExtension(ev sax.Event, b *articleBuilder) bool {
	name := ev.Name
	switch {
	case name.Space == nsDC:
		switch name.Local {
		case "creator", "author":
			x.captureText(func(s string) { b.addAuthor(Author{Name: s}) })
		case "date":
			x.captureDate(ev, func(t time.Time) { b.published.offer(t, rankFallback) })
		case "subject":
			x.captureText(b.addCategory)
		case "title":
			x.captureText(offerText(&b.title, rankFallback))
		case "identifier":
			x.captureText(offerText(&b.id, rankAbout))
		default:
			return false
		}
		return true
	case name.Space == nsDCTerms:
		switch name.Local {
		case "modified":
			x.captureDate(ev, func(t time.Time) { b.updated.offer(t, rankFallback) })
		case "created", "issued":
			x.captureDate(ev, func(t time.Time) { b.published.offer(t, rankFallback) })
		default:
			return false
		}
		return true
	case name.Space == nsContent && name.Local == "encoded":
		x.captureText(offerText(&b.body, bodyContent))
		return true
	case isMediaNS(name.Space):
		switch name.Local {
		case "group":
		case "content":
			b.addEnclosure(ev.AttrValue("url"), ev.AttrValue("type"), ev.AttrValue("fileSize"))
			if ev.AttrValue("medium") == "image" {
				offerText(&b.image, rankFallback)(strings.TrimSpace(ev.AttrValue("url")))
			}
		case "thumbnail":
			offerText(&b.image, rankPrimary)(strings.TrimSpace(ev.AttrValue("url")))
		default:
			return false
		}
		return true
	case isAtomNS(name.Space) && name.Local == "link":
		x.entryLink(ev, b)
		return true
	}
	return false
}

func (x *extractor) addFeedAuthor(a Author) {
	if a == (Author{}) {
		return
	}
	for _, existing := range x.feed.Authors {
		if existing == a {
			return
		}
	}
	x.feed.Authors = append(x.feed.Authors, a)
}
