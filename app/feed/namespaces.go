package feed

const (
	nsAtom10   = "http://www.w3.org/2005/Atom"
	nsAtom03   = "http://purl.org/atom/ns#"
	nsRDF      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsRSS10    = "http://purl.org/rss/1.0/"
	nsRSS09    = "http://my.netscape.com/rdf/simple/0.9/"
	nsDC       = "http://purl.org/dc/elements/1.1/"
	nsDCTerms  = "http://purl.org/dc/terms/"
	nsContent  = "http://purl.org/rss/1.0/modules/content/"
	nsMedia    = "http://search.yahoo.com/mrss/"
	nsXHTML    = "http://www.w3.org/1999/xhtml"
	nsMediaAlt = "http://search.yahoo.com/mrss"
)

func isAtomNS(space string) bool {
	return space == nsAtom10 || space == nsAtom03
}

func isMediaNS(space string) bool {
	return space == nsMedia || space == nsMediaAlt
}
