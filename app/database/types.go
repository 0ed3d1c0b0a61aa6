package database

import (
	"time"

	"github.com/lysyi3m/rsxml/app/feed"
)

type Feed struct {
	Name         string      `json:"name"` // Source name derived from the config filename
	Flavor       feed.Flavor `json:"flavor"`
	Version      string      `json:"version,omitempty"`
	Encoding     string      `json:"encoding"`
	Title        string      `json:"title"`
	Link         string      `json:"link,omitempty"`
	FeedURL      string      `json:"feed_url,omitempty"`
	Description  string      `json:"description,omitempty"`
	Language     string      `json:"language,omitempty"`
	IconURL      string      `json:"icon_url,omitempty"`
	UpdatedAt    *time.Time  `json:"updated_at,omitempty"` // The feed's own updated date
	WarningCount int         `json:"warning_count"`
	LastParsedAt *time.Time  `json:"last_parsed_at,omitempty"`
	NextParseAt  *time.Time  `json:"next_parse_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

type Article struct {
	FeedName     string           `json:"feed_name"`
	ArticleID    string           `json:"id"`
	Position     int              `json:"position"` // Document order within the last parse
	Title        string           `json:"title"`
	Link         string           `json:"link,omitempty"`
	Body         string           `json:"body,omitempty"`
	ImageURL     string           `json:"image_url,omitempty"`
	Authors      []feed.Author    `json:"authors"`
	Categories   []string         `json:"categories"`
	Enclosures   []feed.Enclosure `json:"enclosures"`
	PublishedAt  *time.Time       `json:"published_at,omitempty"`
	UpdatedAt    *time.Time       `json:"updated_at,omitempty"`
	IsFiltered   bool             `json:"is_filtered"`
	FilterReason string           `json:"filter_reason,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// ArticleInput is one parsed article with the outcome of the source filters.
type ArticleInput struct {
	Article      feed.Article
	Position     int
	IsFiltered   bool
	FilterReason string
}
