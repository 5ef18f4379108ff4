package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleRejectsInvalidSpec(t *testing.T) {
	o := NewOrchestrator(context.Background())

	err := o.Schedule("bad", "not a cron spec", func(ctx context.Context) (any, error) {
		return nil, nil
	})
	if err == nil {
		t.Error("Expected error for invalid cron spec")
	}
}

func TestTriggerRunsTaskSynchronously(t *testing.T) {
	o := NewOrchestrator(context.Background())

	var runs atomic.Int32
	err := o.Schedule("ingestion", "0 * * * *", func(ctx context.Context) (any, error) {
		runs.Add(1)
		return "done", nil
	})
	if err != nil {
		t.Fatalf("Failed to schedule job: %v", err)
	}

	result, err := o.Trigger("ingestion")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result != "done" {
		t.Errorf("Expected task result 'done', got %v", result)
	}
	if runs.Load() != 1 {
		t.Errorf("Expected 1 run, got %d", runs.Load())
	}
}

func TestTriggerUnknownJob(t *testing.T) {
	o := NewOrchestrator(context.Background())

	if _, err := o.Trigger("missing"); err == nil {
		t.Error("Expected error for unknown job")
	}
}

func TestTriggerPropagatesTaskError(t *testing.T) {
	o := NewOrchestrator(context.Background())

	taskErr := fmt.Errorf("pass failed")
	if err := o.Schedule("delivery", "*/30 * * * *", func(ctx context.Context) (any, error) {
		return nil, taskErr
	}); err != nil {
		t.Fatalf("Failed to schedule job: %v", err)
	}

	if _, err := o.Trigger("delivery"); err == nil {
		t.Error("Expected task error propagated through Trigger")
	}

	statuses := o.Status()
	if len(statuses) != 1 {
		t.Fatalf("Expected 1 job status, got %d", len(statuses))
	}
	if statuses[0].LastError == "" {
		t.Error("Expected last error recorded in status")
	}
}

func TestScheduleReplacesExistingJob(t *testing.T) {
	o := NewOrchestrator(context.Background())

	var first, second atomic.Int32
	if err := o.Schedule("job", "0 * * * *", func(ctx context.Context) (any, error) {
		first.Add(1)
		return nil, nil
	}); err != nil {
		t.Fatalf("Failed to schedule job: %v", err)
	}
	if err := o.Schedule("job", "0 * * * *", func(ctx context.Context) (any, error) {
		second.Add(1)
		return nil, nil
	}); err != nil {
		t.Fatalf("Failed to reschedule job: %v", err)
	}

	if _, err := o.Trigger("job"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if first.Load() != 0 {
		t.Error("Expected replaced task not to run")
	}
	if second.Load() != 1 {
		t.Error("Expected replacement task to run")
	}

	if len(o.Status()) != 1 {
		t.Errorf("Expected a single job after replacement, got %d", len(o.Status()))
	}
}

func TestOverlappingRunIsSkipped(t *testing.T) {
	o := NewOrchestrator(context.Background())

	release := make(chan struct{})
	started := make(chan struct{})
	var runs atomic.Int32

	if err := o.Schedule("slow", "0 * * * *", func(ctx context.Context) (any, error) {
		runs.Add(1)
		close(started)
		<-release
		return nil, nil
	}); err != nil {
		t.Fatalf("Failed to schedule job: %v", err)
	}

	go o.Trigger("slow")

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("Job did not start")
	}

	// Second trigger while the first is in flight is a no-op
	result, err := o.Trigger("slow")
	if err != nil {
		t.Fatalf("Expected no error for skipped run, got: %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil result for skipped run, got %v", result)
	}

	close(release)

	if runs.Load() != 1 {
		t.Errorf("Expected 1 run, got %d", runs.Load())
	}
}
