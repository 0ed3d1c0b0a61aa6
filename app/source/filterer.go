package source

import (
	"fmt"
	"strings"

	"github.com/lysyi3m/rsxml/app/feed"
)

var filterFields = map[string]bool{
	"title":      true,
	"body":       true,
	"authors":    true,
	"link":       true,
	"categories": true,
}

// Result is an article together with the outcome of the source filters.
type Result struct {
	Article      feed.Article
	IsFiltered   bool
	FilterReason string
}

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

func (f *Filterer) Run(articles []feed.Article, config *Config) []Result {
	results := make([]Result, 0, len(articles))
	for _, article := range articles {
		result := Result{Article: article}
		if len(config.Filters) > 0 {
			result.IsFiltered, result.FilterReason = f.applyFilters(article, config.Filters)
		}
		results = append(results, result)
	}

	return results
}

func (f *Filterer) applyFilters(article feed.Article, filters []ConfigFilter) (bool, string) {
	for _, filter := range filters {
		value := f.getFieldValue(article, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(article feed.Article, field string) string {
	switch field {
	case "title":
		return article.Title
	case "body":
		return article.Body
	case "authors":
		authors := make([]string, 0, len(article.Authors))
		for _, a := range article.Authors {
			authors = append(authors, a.String())
		}
		return strings.Join(authors, " ")
	case "link":
		return article.Link
	case "categories":
		return strings.Join(article.Categories, " ")
	default:
		return ""
	}
}
