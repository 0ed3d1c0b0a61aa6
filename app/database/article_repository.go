package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const articleColumns = `feed_name, article_id, position, title, link, body, image_url, authors, categories, enclosures,
	published_at, updated_at, is_filtered, filter_reason, created_at`

// ArticleRepositoryImpl handles database operations for articles
type ArticleRepositoryImpl struct {
	db *DB
}

func NewArticleRepository(db *DB) *ArticleRepositoryImpl {
	return &ArticleRepositoryImpl{db: db}
}

// UpsertArticles stores articles keyed by their identifier within the feed.
// Re-parsing the same document rewrites the same rows; created_at keeps the
// first time an article was seen.
func (r *ArticleRepositoryImpl) UpsertArticles(feedName string, articles []ArticleInput) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO articles (` + articleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (feed_name, article_id) DO UPDATE SET
			position = excluded.position,
			title = excluded.title,
			link = excluded.link,
			body = excluded.body,
			image_url = excluded.image_url,
			authors = excluded.authors,
			categories = excluded.categories,
			enclosures = excluded.enclosures,
			published_at = excluded.published_at,
			updated_at = excluded.updated_at,
			is_filtered = excluded.is_filtered,
			filter_reason = excluded.filter_reason
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare article upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, in := range articles {
		a := in.Article

		authors, err := encodeList(a.Authors)
		if err != nil {
			return err
		}
		categories, err := encodeList(a.Categories)
		if err != nil {
			return err
		}
		enclosures, err := encodeList(a.Enclosures)
		if err != nil {
			return err
		}

		_, err = stmt.Exec(feedName, a.ID, in.Position, a.Title, a.Link, a.Body, a.ImageURL,
			authors, categories, enclosures, nullTime(a.Published), nullTime(a.Updated),
			in.IsFiltered, in.FilterReason, now)
		if err != nil {
			return fmt.Errorf("failed to store article %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit articles: %w", err)
	}

	return nil
}

// GetArticles returns the newest articles first. Articles without a date
// keep their document order after the dated ones.
func (r *ArticleRepositoryImpl) GetArticles(feedName string, limit int, includeFiltered bool) ([]Article, error) {
	rows, err := r.db.Query(`
		SELECT `+articleColumns+`
		FROM articles
		WHERE feed_name = ?
		  AND (? OR is_filtered = 0)
		ORDER BY published_at IS NULL, published_at DESC, position
		LIMIT ?
	`, feedName, includeFiltered, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles: %w", err)
	}
	defer rows.Close()

	articles := []Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func (r *ArticleRepositoryImpl) GetArticleCount(feedName string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM articles WHERE feed_name = ?", feedName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

// GetArticleStats returns total, visible and filtered article counts.
func (r *ArticleRepositoryImpl) GetArticleStats(feedName string) (total, visible, filtered int, err error) {
	err = r.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN is_filtered = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_filtered = 1 THEN 1 ELSE 0 END), 0)
		FROM articles
		WHERE feed_name = ?
	`, feedName).Scan(&total, &visible, &filtered)

	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get article stats: %w", err)
	}

	return total, visible, filtered, nil
}

func scanArticle(s scanner) (*Article, error) {
	var a Article
	var authors, categories, enclosures string
	var published, updated sql.NullInt64
	var created int64

	err := s.Scan(
		&a.FeedName, &a.ArticleID, &a.Position, &a.Title, &a.Link, &a.Body, &a.ImageURL,
		&authors, &categories, &enclosures, &published, &updated,
		&a.IsFiltered, &a.FilterReason, &created,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(authors), &a.Authors); err != nil {
		return nil, fmt.Errorf("failed to decode authors: %w", err)
	}
	if err := json.Unmarshal([]byte(categories), &a.Categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	if err := json.Unmarshal([]byte(enclosures), &a.Enclosures); err != nil {
		return nil, fmt.Errorf("failed to decode enclosures: %w", err)
	}

	a.PublishedAt = timeFrom(published)
	a.UpdatedAt = timeFrom(updated)
	a.CreatedAt = time.Unix(created, 0).UTC()

	return &a, nil
}

// encodeList stores nil slices as an empty JSON array.
func encodeList[T any](list []T) (string, error) {
	if list == nil {
		list = []T{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(b), nil
}
