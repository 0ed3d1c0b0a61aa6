package feed

import (
	"strings"

	"github.com/lysyi3m/rsxml/app/sax"
)

// DefaultLookahead is how many start and end tags may pass before a
// document that has not declared its flavor is rejected.
const DefaultLookahead = 64

// sniff buffers events until the flavor is known, then replays them
// through dispatch. A returned error stops the engine.
func (x *extractor) sniff(ev sax.Event) error {
	x.pending = append(x.pending, ev)

	switch ev.Kind {
	case sax.StartElement:
		x.structural++
		if x.root == nil {
			root := ev.Name
			x.root = &root
			return x.classifyRoot(ev)
		}
		if ev.Depth == 2 && ev.Name.Local == "channel" {
			version := "1.0"
			if ev.Name.Space == nsRSS09 {
				version = "0.9"
			}
			return x.decide(FlavorRDF, version, ev.Name.Space)
		}
	case sax.EndElement:
		x.structural++
		if ev.Depth == 1 {
			return x.reject(NotAFeed, ev.Offset)
		}
	case sax.Error:
		if ev.Err.Fatal {
			x.engineErr = ev.Err
		}
		return nil
	case sax.EndOfDocument:
		return x.reject(NotAFeed, ev.Offset)
	}

	if x.structural >= x.lookahead {
		return x.reject(NotAFeed, ev.Offset)
	}
	return nil
}

func (x *extractor) classifyRoot(ev sax.Event) error {
	name := ev.Name
	switch strings.ToLower(name.Local) {
	case "feed":
		switch name.Space {
		case nsAtom10:
			return x.decide(FlavorAtom, "1.0", name.Space)
		case nsAtom03:
			return x.decide(FlavorAtom, "0.3", name.Space)
		case "":
			version := strings.TrimSpace(ev.AttrValue("version"))
			if version == "" {
				version = "1.0"
			}
			return x.decide(FlavorAtom, version, "")
		}
		return x.reject(UnsupportedFlavor, ev.Offset)
	case "rss":
		return x.decide(FlavorRSS, strings.TrimSpace(ev.AttrValue("version")), name.Space)
	case "rdf":
		if name.Space == nsRDF || name.Prefix == "rdf" {
			return nil
		}
	case "opml":
		return x.reject(UnsupportedFlavor, ev.Offset)
	}
	return x.reject(NotAFeed, ev.Offset)
}

func (x *extractor) decide(flavor Flavor, version, core string) error {
	x.flavor = flavor
	x.version = version
	x.core = core

	pending := x.pending
	x.pending = nil
	for _, ev := range pending {
		x.dispatch(ev)
	}
	return nil
}

func (x *extractor) reject(kind ErrorKind, offset int) error {
	x.err = &Error{Kind: kind, Offset: offset}
	if x.root != nil {
		x.err.Root = *x.root
	}
	if x.engineErr != nil {
		x.err.Err = x.engineErr
	}
	return x.err
}
