package api

import (
	"github.com/lysyi3m/rsxml/app/database"
	"github.com/lysyi3m/rsxml/app/feed"
	"github.com/lysyi3m/rsxml/app/source"
	"github.com/lysyi3m/rsxml/app/tasks"
)

type Handler struct {
	feedRepo        database.FeedRepository
	articleRepo     database.ArticleRepository
	configCache     *source.ConfigCache
	parser          *feed.Parser
	scheduler       tasks.TaskSchedulerInterface
	maxDocumentSize int64
}

type parseFeedResponse struct {
	Feed     *feed.ParsedFeed `json:"feed"`
	Warnings []feed.Warning   `json:"warnings"`
}

type parseErrorResponse struct {
	Error    string         `json:"error"`
	Kind     feed.ErrorKind `json:"kind,omitempty"`
	Warnings []feed.Warning `json:"warnings,omitempty"`
}

type problem struct {
	Kind   string `json:"kind"`
	Offset int    `json:"offset"`
	Line   int    `json:"line"`
	Detail string `json:"detail,omitempty"`
}
