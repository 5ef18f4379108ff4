package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is one schedulable unit of work. The returned value is kept as the
// job's last result for status reporting.
type Task func(ctx context.Context) (any, error)

type JobStatus struct {
	Name      string     `json:"name"`
	Spec      string     `json:"spec"`
	Running   bool       `json:"running"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
}

type job struct {
	name    string
	spec    string
	task    Task
	entryID cron.EntryID

	mu      sync.Mutex
	running bool
	lastRun *time.Time
	lastErr string
}

// Orchestrator owns the recurring jobs. Each job runs on its own cron
// schedule; a tick that fires while the previous run of the same job is
// still in flight is skipped, so a slow pass never stacks up behind itself.
type Orchestrator struct {
	cron *cron.Cron
	ctx  context.Context

	mu   sync.Mutex
	jobs map[string]*job
}

func NewOrchestrator(ctx context.Context) *Orchestrator {
	return &Orchestrator{
		cron: cron.New(),
		ctx:  ctx,
		jobs: make(map[string]*job),
	}
}

func (o *Orchestrator) Start() {
	o.cron.Start()
	slog.Info("Scheduler started", "jobs", len(o.jobs))
}

// Schedule registers the task under the given name, replacing any job
// already scheduled under it.
func (o *Orchestrator) Schedule(name, spec string, task Task) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if existing, ok := o.jobs[name]; ok {
		o.cron.Remove(existing.entryID)
		delete(o.jobs, name)
	}

	j := &job{name: name, spec: spec, task: task}

	entryID, err := o.cron.AddFunc(spec, func() { o.run(j) })
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	j.entryID = entryID
	o.jobs[name] = j

	slog.Info("Job scheduled", "job", name, "spec", spec)

	return nil
}

// Trigger runs the named job synchronously, outside its schedule.
func (o *Orchestrator) Trigger(name string) (any, error) {
	o.mu.Lock()
	j, ok := o.jobs[name]
	o.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("unknown job: %s", name)
	}

	return o.execute(j)
}

func (o *Orchestrator) run(j *job) {
	if _, err := o.execute(j); err != nil {
		slog.Error("Job failed", "job", j.name, "error", err)
	}
}

func (o *Orchestrator) execute(j *job) (any, error) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		slog.Warn("Job still running, skipping tick", "job", j.name)
		return nil, nil
	}
	j.running = true
	j.mu.Unlock()

	started := time.Now()
	result, err := j.task(o.ctx)

	j.mu.Lock()
	j.running = false
	j.lastRun = &started
	j.lastErr = ""
	if err != nil {
		j.lastErr = err.Error()
	}
	j.mu.Unlock()

	slog.Info("Job completed", "job", j.name, "duration", time.Since(started))

	return result, err
}

func (o *Orchestrator) Status() []JobStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	statuses := make([]JobStatus, 0, len(o.jobs))
	for _, j := range o.jobs {
		j.mu.Lock()
		status := JobStatus{
			Name:      j.name,
			Spec:      j.spec,
			Running:   j.running,
			LastRun:   j.lastRun,
			LastError: j.lastErr,
		}
		j.mu.Unlock()

		if entry := o.cron.Entry(j.entryID); entry.ID != 0 && !entry.Next.IsZero() {
			next := entry.Next
			status.NextRun = &next
		}

		statuses = append(statuses, status)
	}

	return statuses
}

// Stop halts the schedule and waits for in-flight jobs to return.
func (o *Orchestrator) Stop() {
	stopCtx := o.cron.Stop()
	<-stopCtx.Done()
	slog.Info("Scheduler stopped")
}
