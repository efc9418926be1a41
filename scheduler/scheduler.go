// Package scheduler keeps the daily quick tip fresh and prunes old generation
// traces on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Desarso/fitcoach/models"
	"github.com/Desarso/fitcoach/stores"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TipSource generates a quick tip for a profile.
type TipSource interface {
	QuickTip(ctx context.Context, profile *models.Profile) (string, error)
}

// ProfileLoader reads the stored profile.
type ProfileLoader interface {
	LoadProfile(ctx context.Context) (*models.Profile, error)
}

// TracePruner deletes traces recorded before a cutoff.
type TracePruner interface {
	PruneTraces(cutoff time.Time) (int64, error)
}

// Job names.
const (
	JobRefreshTip  = "refresh_tip"
	JobPruneTraces = "prune_traces"
)

// DefaultPruneSchedule runs the trace pruner once a day at 03:00.
const DefaultPruneSchedule = "0 0 3 * * *"

// JobStatus mirrors the cron entry for one registered job.
type JobStatus struct {
	Name    string    `json:"name"`
	Spec    string    `json:"spec"`
	LastRun time.Time `json:"last_run,omitempty"`
	NextRun time.Time `json:"next_run,omitempty"`
	Error   string    `json:"error,omitempty"`
}

type Options struct {
	Tips     TipSource
	Profiles ProfileLoader
	Pruner   TracePruner

	TipSchedule   string
	PruneSchedule string
	Retention     time.Duration

	Logger *zap.Logger
	Now    func() time.Time
}

// TipRefresher caches the current quick tip and refreshes it on schedule.
type TipRefresher struct {
	tips      TipSource
	profiles  ProfileLoader
	pruner    TracePruner
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time

	cron *cron.Cron

	mu          sync.RWMutex
	tip         string
	refreshedAt time.Time
	generation  uint64 // bumped by Invalidate
	jobs        map[string]*JobStatus
	entries     map[string]cron.EntryID
}

// New builds a refresher. Schedules are registered by Start.
func New(opts Options) (*TipRefresher, error) {
	if opts.Tips == nil || opts.Profiles == nil {
		return nil, fmt.Errorf("scheduler: tip source and profile loader are required")
	}
	r := &TipRefresher{
		tips:      opts.Tips,
		profiles:  opts.Profiles,
		pruner:    opts.Pruner,
		retention: opts.Retention,
		logger:    opts.Logger,
		now:       opts.Now,
		cron:      cron.New(cron.WithSeconds()),
		jobs:      make(map[string]*JobStatus),
		entries:   make(map[string]cron.EntryID),
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if err := r.register(JobRefreshTip, opts.TipSchedule, func() error {
		_, err := r.Refresh(context.Background())
		return err
	}); err != nil {
		return nil, err
	}
	if r.pruner != nil && r.retention > 0 {
		spec := opts.PruneSchedule
		if spec == "" {
			spec = DefaultPruneSchedule
		}
		if err := r.register(JobPruneTraces, spec, func() error {
			_, err := r.Prune()
			return err
		}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *TipRefresher) register(name, spec string, fn func() error) error {
	if spec == "" {
		return nil
	}
	id, err := r.cron.AddFunc(spec, func() { r.runJob(name, fn) })
	if err != nil {
		return fmt.Errorf("scheduler: invalid %s schedule %q: %w", name, spec, err)
	}
	r.mu.Lock()
	r.entries[name] = id
	r.jobs[name] = &JobStatus{Name: name, Spec: spec}
	r.mu.Unlock()
	return nil
}

func (r *TipRefresher) runJob(name string, fn func() error) {
	err := fn()

	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.jobs[name]
	st.LastRun = r.now()
	st.Error = ""
	if err != nil {
		st.Error = err.Error()
		r.logger.Warn("Scheduled job failed", zap.String("job", name), zap.Error(err))
	}
}

// Run starts the cron loop and blocks until ctx ends, then waits for
// running jobs to finish.
func (r *TipRefresher) Run(ctx context.Context) error {
	r.cron.Start()
	r.logger.Info("Scheduler started", zap.Int("jobs", len(r.Jobs())))
	<-ctx.Done()
	<-r.cron.Stop().Done()
	r.logger.Info("Scheduler stopped")
	return nil
}

// Refresh generates a new tip for the stored profile and caches it. Without
// a profile there is nothing to refresh and the cache is left alone. A tip
// for a profile that was invalidated mid-flight is returned but not cached.
func (r *TipRefresher) Refresh(ctx context.Context) (string, error) {
	r.mu.RLock()
	gen := r.generation
	r.mu.RUnlock()

	p, err := r.profiles.LoadProfile(ctx)
	if errors.Is(err, stores.ErrProfileNotFound) {
		r.logger.Debug("No profile yet, skipping tip refresh")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load profile: %w", err)
	}

	tip, err := r.tips.QuickTip(ctx, p)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		r.logger.Debug("Profile changed during tip refresh, not caching")
		return tip, nil
	}
	r.tip, r.refreshedAt = tip, r.now()
	r.logger.Info("Quick tip refreshed")
	return tip, nil
}

// Tip returns the cached tip, refreshing first when the cache is empty.
func (r *TipRefresher) Tip(ctx context.Context) (string, error) {
	r.mu.RLock()
	tip := r.tip
	r.mu.RUnlock()
	if tip != "" {
		return tip, nil
	}
	return r.Refresh(ctx)
}

// RefreshedAt reports when the cached tip was generated.
func (r *TipRefresher) RefreshedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.refreshedAt
}

// Invalidate drops the cached tip, e.g. after the profile changed.
func (r *TipRefresher) Invalidate() {
	r.mu.Lock()
	r.tip, r.refreshedAt = "", time.Time{}
	r.generation++
	r.mu.Unlock()
}

// Prune removes traces older than the retention window.
func (r *TipRefresher) Prune() (int64, error) {
	if r.pruner == nil || r.retention <= 0 {
		return 0, nil
	}
	n, err := r.pruner.PruneTraces(r.now().Add(-r.retention))
	if err != nil {
		return 0, fmt.Errorf("prune traces: %w", err)
	}
	if n > 0 {
		r.logger.Info("Pruned generation traces", zap.Int64("count", n))
	}
	return n, nil
}

// Jobs lists registered jobs with their last and next run.
func (r *TipRefresher) Jobs() []JobStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]JobStatus, 0, len(r.jobs))
	for _, name := range []string{JobRefreshTip, JobPruneTraces} {
		st, ok := r.jobs[name]
		if !ok {
			continue
		}
		cp := *st
		if entry := r.cron.Entry(r.entries[name]); !entry.Next.IsZero() {
			cp.NextRun = entry.Next
		}
		out = append(out, cp)
	}
	return out
}
