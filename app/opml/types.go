package opml

import (
	"strings"
	"time"
)

type Document struct {
	Version      string     `json:"version,omitempty"`
	Title        string     `json:"title,omitempty"`
	OwnerName    string     `json:"owner_name,omitempty"`
	DateCreated  *time.Time `json:"date_created,omitempty"`
	DateModified *time.Time `json:"date_modified,omitempty"`
	Items        []*Item    `json:"items"`
}

// Item is one outline element. Attribute names are stored lowercased.
type Item struct {
	Attributes map[string]string `json:"attributes"`
	Children   []*Item           `json:"children,omitempty"`
}

type FeedSpecifier struct {
	Title       string `json:"title,omitempty"`
	FeedURL     string `json:"feed_url"`
	HomePageURL string `json:"home_page_url,omitempty"`
	Description string `json:"description,omitempty"`
}

func (i *Item) Attr(name string) string {
	return strings.TrimSpace(i.Attributes[strings.ToLower(name)])
}

func (i *Item) Title() string {
	if title := i.Attr("title"); title != "" {
		return title
	}
	return i.Attr("text")
}

func (i *Item) IsFolder() bool {
	return i.Attr("xmlUrl") == "" && len(i.Children) > 0
}

func (i *Item) FeedSpecifier() (FeedSpecifier, bool) {
	feedURL := i.Attr("xmlUrl")
	if feedURL == "" {
		return FeedSpecifier{}, false
	}
	return FeedSpecifier{
		Title:       i.Title(),
		FeedURL:     feedURL,
		HomePageURL: i.Attr("htmlUrl"),
		Description: i.Attr("description"),
	}, true
}

// FeedSpecifiers flattens the outline tree depth-first, keeping the first
// entry for each feed URL.
func (d *Document) FeedSpecifiers() []FeedSpecifier {
	var specs []FeedSpecifier
	seen := make(map[string]bool)

	var walk func(items []*Item)
	walk = func(items []*Item) {
		for _, item := range items {
			if spec, ok := item.FeedSpecifier(); ok && !seen[spec.FeedURL] {
				seen[spec.FeedURL] = true
				specs = append(specs, spec)
			}
			walk(item.Children)
		}
	}
	walk(d.Items)

	return specs
}
