// Package scheduler runs the periodic cleanup jobs in process. The HTTP
// triggers stay available either way, this is for deployments without an
// external cron
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled"
	StatusRunning   JobStatus = "running"
	StatusError     JobStatus = "error"
)

// JobInfo is what the jobs endpoint shows about a job
type JobInfo struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Every       time.Duration `json:"every"`
	NextRun     time.Time     `json:"nextRun"`
	LastRun     time.Time     `json:"lastRun"`
	LastSuccess time.Time     `json:"lastSuccess,omitzero"`
	Status      JobStatus     `json:"status"`
	Error       string        `json:"error,omitempty"`
}

// Task is one job run. A returned error marks the job as failed until the
// next successful run
type Task func(ctx context.Context) error

type Scheduler struct {
	s      gocron.Scheduler
	jobs   map[string]gocron.Job
	infos  map[string]*JobInfo
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

func New() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler, %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		s:      s,
		jobs:   make(map[string]gocron.Job),
		infos:  make(map[string]*JobInfo),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Every adds a job that runs every d. Runs never overlap, a run that takes
// longer than d pushes the next one back
func (s *Scheduler) Every(name string, d time.Duration, task Task) error {
	if d <= 0 {
		return fmt.Errorf("invalid interval %s for job %s", d, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job with name %s already exists", name)
	}

	run := func() {
		s.setStatus(name, StatusRunning, nil)

		defer func() {
			if r := recover(); r != nil {
				s.setStatus(name, StatusError, fmt.Errorf("panic in job: %v", r))
				zap.L().Error("Job panicked", zap.String("job", name), zap.Any("panic", r))
			}
		}()

		if err := task(s.ctx); err != nil {
			s.setStatus(name, StatusError, err)
			zap.L().Error("Job failed", zap.String("job", name), zap.Error(err))
			return
		}

		s.setStatus(name, StatusScheduled, nil)
	}

	j, err := s.s.NewJob(
		gocron.DurationJob(d),
		gocron.NewTask(run),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithEventListeners(
			gocron.AfterJobRuns(func(_ uuid.UUID, jobName string) {
				s.touch(jobName)
			}),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to add job %s, %w", name, err)
	}

	s.jobs[name] = j
	s.infos[name] = &JobInfo{
		ID:     j.ID().String(),
		Name:   name,
		Every:  d,
		Status: StatusScheduled,
	}

	zap.L().Info("Job scheduled", zap.String("job", name), zap.Duration("every", d))
	return nil
}

func (s *Scheduler) Start() {
	zap.L().Debug("Starting scheduler")
	s.s.Start()
}

func (s *Scheduler) Shutdown() error {
	s.cancel()
	return s.s.Shutdown()
}

// Jobs returns the state of every job sorted by name
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobInfo, 0, len(s.infos))
	for name, info := range s.infos {
		i := *info
		if next, err := s.jobs[name].NextRun(); err == nil {
			i.NextRun = next
		}
		out = append(out, i)
	}

	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

func (s *Scheduler) setStatus(name string, status JobStatus, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.infos[name]
	if !ok {
		return
	}

	info.Status = status
	info.Error = ""
	if err != nil {
		info.Error = err.Error()
	}

	if status == StatusScheduled {
		info.LastSuccess = time.Now()
	}
}

func (s *Scheduler) touch(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info, ok := s.infos[name]; ok {
		info.LastRun = time.Now()
	}
}
