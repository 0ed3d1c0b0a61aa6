package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rsxml/app/opml"
	"github.com/lysyi3m/rsxml/app/source"
)

// ParseOPMLTask imports the feeds listed in a subscription list as new
// sources. Sources that already exist are left as they are.
type ParseOPMLTask struct {
	Task
	Config      *source.Config
	fetcher     *Fetcher
	configCache *source.ConfigCache
}

func NewParseOPMLTask(config *source.Config, fetcher *Fetcher, configCache *source.ConfigCache) *ParseOPMLTask {
	return &ParseOPMLTask{
		Task:        NewTask(TaskTypeParseOPML, config.Name),
		Config:      config,
		fetcher:     fetcher,
		configCache: configCache,
	}
}

func (t *ParseOPMLTask) Execute(ctx context.Context) error {
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

	doc, problems, err := opml.Parse(data, hint)
	if err != nil {
		if errors.Is(err, opml.ErrNotOPML) {
			return permanent(fmt.Errorf("failed to parse OPML: %w", err))
		}
		return fmt.Errorf("failed to parse OPML: %w", err)
	}

	for _, p := range problems {
		slog.Debug("OPML warning", "source", t.SourceName, "kind", p.Kind, "offset", p.Offset, "detail", p.Detail)
	}

	importedCount := 0
	existingCount := 0
	errorCount := 0

	for _, spec := range doc.FeedSpecifiers() {
		config := &source.Config{
			Name: sourceName(spec),
			URL:  spec.FeedURL,
			Settings: source.ConfigSettings{
				Enabled:         true,
				Kind:            source.KindFeed,
				RefreshInterval: t.Config.Settings.RefreshInterval,
				Timeout:         t.Config.Settings.Timeout,
			},
		}

		err := t.configCache.AddConfig(config)
		switch {
		case errors.Is(err, source.ErrConfigExists):
			existingCount++
		case err != nil:
			slog.Error("Failed to import source", "source", t.SourceName, "feed_url", spec.FeedURL, "error", err)
			errorCount++
		default:
			slog.Debug("Source imported", "source", config.Name, "feed_url", config.URL)
			importedCount++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"title", doc.Title,
		"imported", importedCount,
		"existing", existingCount,
		"errors", errorCount)

	return nil
}

func sourceName(spec opml.FeedSpecifier) string {
	if name := source.NameFor(spec.Title); name != "" {
		return name
	}
	return source.NameFor(spec.FeedURL)
}
