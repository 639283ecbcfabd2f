package captions

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/store"
)

// Runner drains queued caption jobs one at a time. Transcription is slow
// and CPU hungry, so there is deliberately no parallelism here.
type Runner struct {
	service      *Service
	repo         store.Repository
	logger       *slog.Logger
	pollInterval time.Duration
	running      atomic.Bool
	paused       atomic.Bool
}

func NewRunner(service *Service, repo store.Repository, logger *slog.Logger) *Runner {
	return &Runner{
		service:      service,
		repo:         repo,
		logger:       logger,
		pollInterval: 5 * time.Second,
	}
}

func (r *Runner) Start(ctx context.Context) {
	if r.running.Swap(true) {
		return
	}

	r.logger.Info("caption job runner started")

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("caption job runner stopping")
			r.running.Store(false)
			return
		case <-ticker.C:
			if !r.paused.Load() {
				r.processNextJob(ctx)
			}
		}
	}
}

func (r *Runner) Pause() {
	r.paused.Store(true)
	r.logger.Info("caption job runner paused")
}

func (r *Runner) Resume() {
	r.paused.Store(false)
	r.logger.Info("caption job runner resumed")
}

func (r *Runner) IsPaused() bool {
	return r.paused.Load()
}

func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

func (r *Runner) processNextJob(ctx context.Context) {
	jobs, err := r.repo.ListQueuedJobs(ctx)
	if err != nil {
		r.logger.Error("failed to list queued jobs", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	job := jobs[0]
	r.logger.Info("processing job", "job_id", job.ID, "kind", job.Kind)

	if job.Kind != store.JobKindGenerateCaptions {
		r.logger.Warn("unknown job kind", "kind", job.Kind)
		r.repo.UpdateJobStatus(ctx, job.ID, store.JobStatusFailed, "unknown job kind")
		return
	}

	r.repo.UpdateJobStatus(ctx, job.ID, store.JobStatusRunning, "")

	_, err = r.service.Generate(ctx, Request{
		Project:   job.Project,
		VideoRel:  job.VideoRel,
		ModelSize: job.ModelSize,
	})
	if err != nil {
		r.logger.Error("caption generation failed", "job_id", job.ID, "error", err)
		r.repo.UpdateJobStatus(ctx, job.ID, store.JobStatusFailed, err.Error())
		return
	}

	r.repo.UpdateJobStatus(ctx, job.ID, store.JobStatusCompleted, "")
	r.logger.Info("caption job completed", "job_id", job.ID)
}

// GetActiveJobCount reports how many jobs are currently running.
func (r *Runner) GetActiveJobCount(ctx context.Context) int {
	jobs, err := r.repo.ListJobs(ctx, 100)
	if err != nil {
		return 0
	}
	count := 0
	for _, j := range jobs {
		if j.Status == store.JobStatusRunning {
			count++
		}
	}
	return count
}
