package tasks

import "github.com/lysyi3m/rsxml/app/source"

// TaskSchedulerInterface is the part of the scheduler main depends on.
//
//	scheduler := NewScheduler(configCache, feedRepo, articleRepo, httpClient, parser, filterer)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	NewTaskFor(config *source.Config) TaskInterface
}
