package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/rsxml/app/database"
	"github.com/lysyi3m/rsxml/app/feed"
	"github.com/lysyi3m/rsxml/app/source"
)

type ParseSourceTask struct {
	Task
	Config      *source.Config
	fetcher     *Fetcher
	parser      *feed.Parser
	filterer    *source.Filterer
	feedRepo    database.FeedRepository
	articleRepo database.ArticleRepository
}

func NewParseSourceTask(config *source.Config, fetcher *Fetcher, parser *feed.Parser, filterer *source.Filterer, feedRepo database.FeedRepository, articleRepo database.ArticleRepository) *ParseSourceTask {
	return &ParseSourceTask{
		Task:        NewTask(TaskTypeParseSource, config.Name),
		Config:      config,
		fetcher:     fetcher,
		parser:      parser,
		filterer:    filterer,
		feedRepo:    feedRepo,
		articleRepo: articleRepo,
	}
}

func (t *ParseSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Config.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	data, hint, err := t.fetcher.Fetch(ctx, t.Config)
	if err != nil {
		return fmt.Errorf("failed to fetch source: %w", err)
	}

	parsed, warnings, err := t.parser.Run(data, hint)
	if err != nil {
		var feedErr *feed.Error
		if errors.As(err, &feedErr) {
			return permanent(fmt.Errorf("failed to parse feed: %w", err))
		}
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	for _, w := range warnings {
		slog.Debug("Feed warning", "source", t.SourceName, "kind", w.Kind, "offset", w.ByteOffset, "detail", w.Detail)
	}

	articles := parsed.Articles
	if limit := t.Config.Settings.MaxItems; limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	inputs := make([]database.ArticleInput, 0, len(articles))
	filteredCount := 0
	for i, result := range t.filterer.Run(articles, t.Config) {
		if result.IsFiltered {
			filteredCount++
		}
		inputs = append(inputs, database.ArticleInput{
			Article:      result.Article,
			Position:     i,
			IsFiltered:   result.IsFiltered,
			FilterReason: result.FilterReason,
		})
	}

	nextParse := time.Now().UTC().Add(t.Config.RefreshEvery())
	if err := t.feedRepo.UpsertFeed(t.SourceName, parsed, len(warnings), nextParse); err != nil {
		return fmt.Errorf("failed to store feed: %w", err)
	}

	if err := t.articleRepo.UpsertArticles(t.SourceName, inputs); err != nil {
		return fmt.Errorf("failed to store articles: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"flavor", parsed.Flavor,
		"total", len(parsed.Articles),
		"stored", len(inputs),
		"filtered", filteredCount,
		"warnings", len(warnings))

	return nil
}
