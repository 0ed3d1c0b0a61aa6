package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lysyi3m/rsxml/app/feed"
)

const feedColumns = `name, flavor, version, encoding, title, link, feed_url, description, language, icon_url,
	feed_updated_at, warning_count, last_parsed_at, next_parse_at, created_at`

// FeedRepositoryImpl handles database operations for feeds
type FeedRepositoryImpl struct {
	db *DB
}

func NewFeedRepository(db *DB) *FeedRepositoryImpl {
	return &FeedRepositoryImpl{db: db}
}

// UpsertFeed records the outcome of a successful parse.
func (r *FeedRepositoryImpl) UpsertFeed(name string, parsed *feed.ParsedFeed, warningCount int, nextParse time.Time) error {
	now := time.Now()
	_, err := r.db.Exec(`
		INSERT INTO feeds (`+feedColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			flavor = excluded.flavor,
			version = excluded.version,
			encoding = excluded.encoding,
			title = excluded.title,
			link = excluded.link,
			feed_url = excluded.feed_url,
			description = excluded.description,
			language = excluded.language,
			icon_url = excluded.icon_url,
			feed_updated_at = excluded.feed_updated_at,
			warning_count = excluded.warning_count,
			last_parsed_at = excluded.last_parsed_at,
			next_parse_at = excluded.next_parse_at
	`, name, parsed.Flavor.String(), parsed.Version, parsed.Encoding, parsed.Title, parsed.Link,
		parsed.FeedURL, parsed.Description, parsed.Language, parsed.IconURL,
		nullTime(parsed.Updated), warningCount, now.Unix(), nextParse.Unix(), now.Unix())

	if err != nil {
		return fmt.Errorf("failed to upsert feed: %w", err)
	}

	return nil
}

// UpdateNextParse reschedules a feed, typically after a failed parse.
func (r *FeedRepositoryImpl) UpdateNextParse(name string, nextParse time.Time) error {
	_, err := r.db.Exec(`UPDATE feeds SET next_parse_at = ? WHERE name = ?`, nextParse.Unix(), name)
	if err != nil {
		return fmt.Errorf("failed to update next parse time: %w", err)
	}

	return nil
}

// GetFeed returns nil without an error when the feed was never stored.
func (r *FeedRepositoryImpl) GetFeed(name string) (*Feed, error) {
	row := r.db.QueryRow(`SELECT `+feedColumns+` FROM feeds WHERE name = ?`, name)

	f, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return f, nil
}

func (r *FeedRepositoryImpl) GetFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`SELECT ` + feedColumns + ` FROM feeds ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

func (r *FeedRepositoryImpl) GetFeedCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeed(s scanner) (*Feed, error) {
	var f Feed
	var flavor string
	var updated, lastParsed, nextParse sql.NullInt64
	var created int64

	err := s.Scan(
		&f.Name, &flavor, &f.Version, &f.Encoding, &f.Title, &f.Link, &f.FeedURL,
		&f.Description, &f.Language, &f.IconURL,
		&updated, &f.WarningCount, &lastParsed, &nextParse, &created,
	)
	if err != nil {
		return nil, err
	}

	f.Flavor = feed.ParseFlavor(flavor)
	f.UpdatedAt = timeFrom(updated)
	f.LastParsedAt = timeFrom(lastParsed)
	f.NextParseAt = timeFrom(nextParse)
	f.CreatedAt = time.Unix(created, 0).UTC()

	return &f, nil
}
