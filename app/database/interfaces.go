package database

import (
	"time"

	"github.com/lysyi3m/rsxml/app/feed"
)

type FeedRepository interface {
	GetFeed(name string) (*Feed, error)
	GetFeeds() ([]Feed, error)
	GetFeedCount() (int, error)

	UpsertFeed(name string, parsed *feed.ParsedFeed, warningCount int, nextParse time.Time) error
	UpdateNextParse(name string, nextParse time.Time) error
}

type ArticleRepository interface {
	GetArticles(feedName string, limit int, includeFiltered bool) ([]Article, error)
	GetArticleCount(feedName string) (int, error)
	GetArticleStats(feedName string) (int, int, int, error)

	UpsertArticles(feedName string, articles []ArticleInput) error
}

var (
	_ FeedRepository    = (*FeedRepositoryImpl)(nil)
	_ ArticleRepository = (*ArticleRepositoryImpl)(nil)
)
