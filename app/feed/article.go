package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// ranked holds the best value offered so far. A higher rank replaces the
// current value; an equal rank keeps the first one.
type ranked[T any] struct {
	value T
	rank  int
}

func (r *ranked[T]) offer(v T, rank int) {
	if rank > r.rank {
		r.value = v
		r.rank = rank
	}
}

func (r *ranked[T]) set() bool {
	return r.rank > 0
}

// Ranks for the article body.
const (
	bodySummary = 1
	bodyContent = 2
)

type articleBuilder struct {
	depth  int
	offset int

	id         ranked[string]
	permalink  string
	title      ranked[string]
	link       ranked[string]
	body       ranked[string]
	published  ranked[time.Time]
	updated    ranked[time.Time]
	image      ranked[string]
	authors    []Author
	enclosures []Enclosure
	categories []string

	captured []string
}

// offerText offers s unless it is empty.
func offerText(r *ranked[string], rank int) func(string) {
	return func(s string) {
		if s != "" {
			r.offer(s, rank)
		}
	}
}

func (b *articleBuilder) addAuthor(a Author) {
	if a == (Author{}) {
		return
	}
	for _, existing := range b.authors {
		if existing == a {
			return
		}
	}
	b.authors = append(b.authors, a)
}

func (b *articleBuilder) addCategory(c string) {
	c = strings.TrimSpace(c)
	if c == "" {
		return
	}
	for _, existing := range b.categories {
		if existing == c {
			return
		}
	}
	b.categories = append(b.categories, c)
}

func (b *articleBuilder) addEnclosure(rawURL, mimeType, length string) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return
	}
	n, err := strconv.ParseInt(strings.TrimSpace(length), 10, 64)
	if err != nil || n < 0 {
		n = 0
	}
	mimeType = strings.TrimSpace(mimeType)

	for i := range b.enclosures {
		e := &b.enclosures[i]
		if e.URL != rawURL {
			continue
		}
		if e.MIMEType == "" {
			e.MIMEType = mimeType
		}
		if e.Length == 0 {
			e.Length = n
		}
		return
	}
	b.enclosures = append(b.enclosures, Enclosure{URL: rawURL, MIMEType: mimeType, Length: n})
	b.captured = append(b.captured, rawURL)
}

func (b *articleBuilder) build() Article {
	a := Article{
		Title:      b.title.value,
		Body:       b.body.value,
		Link:       b.link.value,
		Authors:    b.authors,
		Enclosures: b.enclosures,
		Categories: b.categories,
		ImageURL:   b.image.value,
	}
	if a.Link == "" {
		a.Link = b.permalink
	}
	if b.published.set() {
		t := b.published.value
		a.Published = &t
	}
	if b.updated.set() {
		t := b.updated.value
		a.Updated = &t
	}
	if a.Published == nil && a.Updated != nil {
		t := *a.Updated
		a.Published = &t
	}
	a.ID = b.identity(a)
	return a
}

// identity falls back from the explicit id to the link, then to a digest
// of title and date, then to a digest of everything captured.
func (b *articleBuilder) identity(a Article) string {
	if b.id.value != "" {
		return b.id.value
	}
	if a.Link != "" {
		return a.Link
	}
	if a.Title != "" || a.Published != nil {
		var published string
		if a.Published != nil {
			published = a.Published.UTC().Format(time.RFC3339)
		}
		return digest(a.Title + "|" + published)
	}
	return digest(strings.Join(b.captured, "\n"))
}

func digest(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}

// parseAuthor reads the free-form author strings RSS allows:
// "email (Name)", "Name <email>", a bare email or a bare name.
func parseAuthor(s string) Author {
	s = strings.TrimSpace(s)
	if s == "" {
		return Author{}
	}

	if i := strings.IndexByte(s, '('); i > 0 && strings.HasSuffix(s, ")") {
		email := cleanEmail(s[:i])
		if strings.Contains(email, "@") {
			return Author{Name: strings.TrimSpace(s[i+1 : len(s)-1]), Email: email}
		}
	}
	if i := strings.IndexByte(s, '<'); i >= 0 && strings.HasSuffix(s, ">") {
		email := cleanEmail(s[i+1 : len(s)-1])
		if strings.Contains(email, "@") {
			return Author{Name: strings.TrimSpace(s[:i]), Email: email}
		}
	}
	if email := cleanEmail(s); strings.Contains(email, "@") && !strings.ContainsAny(email, " \t") {
		return Author{Email: email}
	}
	return Author{Name: s}
}

func cleanEmail(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimPrefix(s, "mailto:")
}

type authorBuilder struct {
	depth   int
	author  Author
	article *articleBuilder
}

func (x *extractor) openAuthor(b *articleBuilder) {
	x.author = &authorBuilder{depth: len(x.path), article: b}
}

func (x *extractor) closeAuthor() {
	ab := x.author
	x.author = nil
	if ab.article != nil {
		ab.article.addAuthor(ab.author)
		return
	}
	x.addFeedAuthor(ab.author)
}
