package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/lysyi3m/rsxml/app/cfg"
	"github.com/lysyi3m/rsxml/app/database"
	"github.com/lysyi3m/rsxml/app/feed"
	"github.com/lysyi3m/rsxml/app/source"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	feedRepo    database.FeedRepository
	articleRepo database.ArticleRepository
	configCache *source.ConfigCache
	fetcher     *Fetcher
	parser      *feed.Parser
	filterer    *source.Filterer
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	mu          sync.Mutex
	nextAttempt map[string]time.Time
}

func NewScheduler(configCache *source.ConfigCache, feedRepo database.FeedRepository,
	articleRepo database.ArticleRepository, httpClient *http.Client, parser *feed.Parser,
	filterer *source.Filterer) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		feedRepo:    feedRepo,
		articleRepo: articleRepo,
		configCache: configCache,
		fetcher:     NewFetcher(httpClient, cfg.UserAgent, cfg.MaxDocumentSize),
		parser:      parser,
		filterer:    filterer,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
		nextAttempt: make(map[string]time.Time),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

// Stop cancels running tasks and waits for the workers to exit. The queue
// stays open so a pending retry never sends on a closed channel.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// NewTaskFor builds the task that handles the source's kind.
func (s *Scheduler) NewTaskFor(config *source.Config) TaskInterface {
	if config.Settings.Kind == source.KindOPML {
		return NewParseOPMLTask(config, s.fetcher, s.configCache)
	}
	return NewParseSourceTask(config, s.fetcher, s.parser, s.filterer, s.feedRepo, s.articleRepo)
}

func (s *Scheduler) enqueueTasks() {
	configs := s.configCache.GetEnabledConfigs()
	if len(configs) == 0 {
		slog.Debug("No enabled source configurations found")
		return
	}

	slog.Debug("Processing enabled source configurations for task scheduling", "count", len(configs))

	now := time.Now().UTC()
	for _, config := range configs {
		if !s.isDue(config, now) {
			continue
		}

		task := s.NewTaskFor(config)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue task", "type", string(task.GetType()), "source", config.Name, "error", err)
			continue
		}

		s.mu.Lock()
		s.nextAttempt[config.Name] = now.Add(config.RefreshEvery())
		s.mu.Unlock()
	}
}

// isDue reports whether a source should be parsed now. The stored next
// parse time is consulted until the scheduler has enqueued the source once.
func (s *Scheduler) isDue(config *source.Config, now time.Time) bool {
	s.mu.Lock()
	next, ok := s.nextAttempt[config.Name]
	s.mu.Unlock()

	if ok {
		return !now.Before(next)
	}

	if config.Settings.Kind != source.KindFeed {
		return true
	}

	stored, err := s.feedRepo.GetFeed(config.Name)
	if err != nil {
		slog.Warn("Failed to get feed from database", "source", config.Name, "error", err)
		return true
	}
	if stored != nil && stored.NextParseAt != nil && stored.NextParseAt.After(now) {
		slog.Debug("Feed not due for refresh yet", "source", config.Name, "next_parse_at", stored.NextParseAt)
		s.mu.Lock()
		s.nextAttempt[config.Name] = *stored.NextParseAt
		s.mu.Unlock()
		return false
	}

	return true
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !Retryable(task, err) {
		slog.Error("Task failed without retry", "type", string(task.GetType()), "id", task.GetID(), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-time.After(retryDelay):
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}
