package feed

import (
	"fmt"
	"strings"
	"time"
)

type Flavor int

const (
	FlavorAtom Flavor = iota + 1
	FlavorRSS
	FlavorRDF
)

func (f Flavor) String() string {
	switch f {
	case FlavorAtom:
		return "atom"
	case FlavorRSS:
		return "rss"
	case FlavorRDF:
		return "rdf"
	default:
		return "unknown"
	}
}

func (f Flavor) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseFlavor is the inverse of Flavor.String. Unknown names yield zero.
func ParseFlavor(s string) Flavor {
	switch s {
	case "atom":
		return FlavorAtom
	case "rss":
		return FlavorRSS
	case "rdf":
		return FlavorRDF
	}
	return 0
}

type ParsedFeed struct {
	Flavor      Flavor     `json:"flavor"`
	Version     string     `json:"version,omitempty"`
	Encoding    string     `json:"encoding"`
	Title       string     `json:"title"`
	Link        string     `json:"link,omitempty"`
	FeedURL     string     `json:"feed_url,omitempty"`
	Language    string     `json:"language,omitempty"`
	IconURL     string     `json:"icon_url,omitempty"`
	Description string     `json:"description,omitempty"`
	Updated     *time.Time `json:"updated,omitempty"`
	Authors     []Author   `json:"authors,omitempty"`
	Articles    []Article  `json:"articles"`
}

type Article struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Body       string      `json:"body,omitempty"`
	Link       string      `json:"link,omitempty"`
	Authors    []Author    `json:"authors,omitempty"`
	Published  *time.Time  `json:"published,omitempty"`
	Updated    *time.Time  `json:"updated,omitempty"`
	Enclosures []Enclosure `json:"enclosures,omitempty"`
	Categories []string    `json:"categories,omitempty"`
	ImageURL   string      `json:"image_url,omitempty"`
}

type Author struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`
}

// String formats the author the way RSS writes it: "email (name)".
func (a Author) String() string {
	name := strings.TrimSpace(a.Name)
	email := strings.TrimSpace(a.Email)

	if name != "" && email != "" {
		return fmt.Sprintf("%s (%s)", email, name)
	} else if name != "" {
		return name
	} else if email != "" {
		return email
	}

	return a.URL
}

type Enclosure struct {
	URL      string `json:"url"`
	MIMEType string `json:"mime_type,omitempty"`
	Length   int64  `json:"length,omitempty"`
}
