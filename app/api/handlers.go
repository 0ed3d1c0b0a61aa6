package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/rsxml/app/database"
	"github.com/lysyi3m/rsxml/app/date"
	"github.com/lysyi3m/rsxml/app/feed"
	"github.com/lysyi3m/rsxml/app/htmlmeta"
	"github.com/lysyi3m/rsxml/app/opml"
	"github.com/lysyi3m/rsxml/app/sax"
	"github.com/lysyi3m/rsxml/app/source"
	"github.com/lysyi3m/rsxml/app/tasks"
)

const defaultArticleLimit = 50

func NewHandler(configCache *source.ConfigCache, feedRepo database.FeedRepository,
	articleRepo database.ArticleRepository, parser *feed.Parser,
	scheduler tasks.TaskSchedulerInterface, maxDocumentSize int64) *Handler {
	return &Handler{
		feedRepo:        feedRepo,
		articleRepo:     articleRepo,
		configCache:     configCache,
		parser:          parser,
		scheduler:       scheduler,
		maxDocumentSize: maxDocumentSize,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

// ParseFeed extracts the feed posted in the request body. The optional
// encoding query parameter is used as the charset hint.
func (h *Handler) ParseFeed(c *gin.Context) {
	data, ok := h.readBody(c)
	if !ok {
		return
	}

	parsed, warnings, err := h.parser.Run(data, c.Query("encoding"))
	if err != nil {
		var feedErr *feed.Error
		if errors.As(err, &feedErr) {
			c.JSON(http.StatusUnprocessableEntity, parseErrorResponse{
				Error:    err.Error(),
				Kind:     feedErr.Kind,
				Warnings: warnings,
			})
			return
		}
		slog.Error("Feed parsing error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse feed"})
		return
	}

	if warnings == nil {
		warnings = []feed.Warning{}
	}

	c.JSON(http.StatusOK, parseFeedResponse{Feed: parsed, Warnings: warnings})
}

func (h *Handler) ParseOPML(c *gin.Context) {
	data, ok := h.readBody(c)
	if !ok {
		return
	}

	doc, problems, err := opml.Parse(data, c.Query("encoding"))
	if err != nil {
		if errors.Is(err, opml.ErrNotOPML) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		slog.Error("OPML parsing error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse OPML"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document": doc,
		"feeds":    doc.FeedSpecifiers(),
		"warnings": problemsFrom(problems),
	})
}

// ParseHTML reports the metadata of the posted page. The url query
// parameter is the page address that relative links resolve against.
func (h *Handler) ParseHTML(c *gin.Context) {
	data, ok := h.readBody(c)
	if !ok {
		return
	}

	pageURL := c.Query("url")
	hint := c.Query("encoding")

	metadata, err := htmlmeta.Parse(data, pageURL, hint)
	if err != nil {
		slog.Error("HTML parsing error", "url", pageURL, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	response := gin.H{
		"metadata":    metadata,
		"favicon_url": metadata.FaviconURL(),
	}

	if c.Query("links") == "true" {
		links, err := htmlmeta.ParseLinks(data, pageURL, hint)
		if err != nil {
			slog.Error("HTML link parsing error", "url", pageURL, "error", err)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		response["links"] = links
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) ParseDate(c *gin.Context) {
	value := c.Query("value")
	if value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing value parameter"})
		return
	}

	t, err := date.Parse(value)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "value": value})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"value": value,
		"time":  t.UTC().Format(time.RFC3339),
		"unix":  t.Unix(),
	})
}

func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")

	stored, err := h.feedRepo.GetFeed(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if stored == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
		return
	}

	details := gin.H{"feed": stored}

	if total, visible, filtered, err := h.articleRepo.GetArticleStats(name); err == nil {
		details["articles"] = gin.H{
			"total":    total,
			"visible":  visible,
			"filtered": filtered,
		}
	}

	c.JSON(http.StatusOK, details)
}

func (h *Handler) GetArticles(c *gin.Context) {
	name := c.Param("name")

	limit := defaultArticleLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = n
	}
	includeFiltered := c.Query("filtered") == "true"

	stored, err := h.feedRepo.GetFeed(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if stored == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
		return
	}

	articles, err := h.articleRepo.GetArticles(name, limit, includeFiltered)
	if err != nil {
		slog.Error("Database error", "operation", "get_articles", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.Header("X-Feed-Articles", strconv.Itoa(len(articles)))
	c.JSON(http.StatusOK, gin.H{
		"feed":     name,
		"articles": articles,
		"total":    len(articles),
	})
}

func (h *Handler) APIListSources(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	sources := make([]map[string]interface{}, 0, len(configs))

	for _, config := range configs {
		info := map[string]interface{}{
			"name":             config.Name,
			"location":         config.Location(),
			"kind":             config.Settings.Kind,
			"enabled":          config.Settings.Enabled,
			"max_items":        config.Settings.MaxItems,
			"refresh_interval": config.RefreshEvery().String(),
			"filters":          len(config.Filters),
		}

		if stored, err := h.feedRepo.GetFeed(config.Name); err == nil && stored != nil {
			info["title"] = stored.Title
			info["flavor"] = stored.Flavor
			info["last_parsed_at"] = stored.LastParsedAt
			info["next_parse_at"] = stored.NextParseAt
			info["warning_count"] = stored.WarningCount
		}

		if count, err := h.articleRepo.GetArticleCount(config.Name); err == nil {
			info["article_count"] = count
		}

		sources = append(sources, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sources,
		"total":   len(sources),
	})
}

// APIReloadSource rereads the source file and queues a parse right away.
func (h *Handler) APIReloadSource(c *gin.Context) {
	name := c.Param("name")

	if _, err := h.configCache.GetConfig(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	config, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	task := h.scheduler.NewTaskFor(config)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing task", "source", name, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"source":  name,
		"task": gin.H{
			"id":   task.GetID(),
			"type": task.GetType(),
		},
	})
}

func (h *Handler) readBody(c *gin.Context) ([]byte, bool) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxDocumentSize)

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Document too large"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return nil, false
	}

	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty request body"})
		return nil, false
	}

	return data, true
}

func problemsFrom(errs []*sax.ParseError) []problem {
	problems := make([]problem, 0, len(errs))
	for _, e := range errs {
		problems = append(problems, problem{
			Kind:   string(e.Kind),
			Offset: e.Offset,
			Line:   e.Line,
			Detail: e.Detail,
		})
	}
	return problems
}
