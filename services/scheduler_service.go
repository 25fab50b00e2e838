package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is a maintenance task run on the sweep interval
type Job interface {
	Name() string
	Execute(ctx context.Context) error
}

// JobFunc adapts a function to Job
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (j JobFunc) Name() string                      { return j.JobName }
func (j JobFunc) Execute(ctx context.Context) error { return j.Fn(ctx) }

type SchedulerService struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
	jobs      []Job
	started   bool
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewSchedulerService(interval time.Duration) *SchedulerService {
	ctx, cancel := context.WithCancel(context.Background())
	return &SchedulerService{
		scheduler: gocron.NewScheduler(time.UTC),
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// RunJob executes job once, logging the outcome
func (s *SchedulerService) RunJob(job Job) error {
	if err := job.Execute(s.ctx); err != nil {
		log.Printf("❌ Job %s failed: %v", job.Name(), err)
		return err
	}
	log.Printf("✅ Job %s completed", job.Name())
	return nil
}

func (s *SchedulerService) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.scheduler.Every(s.interval).Do(func() { _ = s.RunJob(job) }); err != nil {
		return fmt.Errorf("failed to register job %s: %w", job.Name(), err)
	}
	s.jobs = append(s.jobs, job)
	log.Printf("🕒 Job %s registered (every %s)", job.Name(), s.interval)
	return nil
}

func (s *SchedulerService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || len(s.jobs) == 0 {
		return
	}
	s.scheduler.StartAsync()
	s.started = true
	log.Printf("✅ Scheduler started with %d jobs", len(s.jobs))
}

func (s *SchedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	s.scheduler.Stop()
	s.started = false
	log.Println("🛑 Scheduler stopped")
}

func (s *SchedulerService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *SchedulerService) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// MaintenanceJobs are the sweeps that keep expired requests and listings inactive
func MaintenanceJobs(requests *MatchRequestService, listings *ListingService) []Job {
	return []Job{
		JobFunc{JobName: "expire-match-requests", Fn: func(ctx context.Context) error {
			n, err := requests.ExpireStale(ctx)
			if n > 0 {
				log.Printf("🧹 Expired %d match requests", n)
			}
			return err
		}},
		JobFunc{JobName: "expire-listings", Fn: func(ctx context.Context) error {
			n, err := listings.ExpireListings(ctx)
			if n > 0 {
				log.Printf("🧹 Expired %d listings", n)
			}
			return err
		}},
	}
}
