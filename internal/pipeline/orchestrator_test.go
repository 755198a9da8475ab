package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/reportmd/internal/config"
	"github.com/dgallion1/reportmd/internal/ir"
	"github.com/dgallion1/reportmd/internal/render"
)

func testConfig() config.Config {
	return config.Config{
		WorkerCount:          2,
		MaxQueueSize:         4,
		MaxConcurrentDeliver: 2,
		JobTTL:               time.Hour,
	}
}

func TestOrchestrator_SubmitAndProcess(t *testing.T) {
	o := NewOrchestrator(testConfig(), render.New(nil), render.NewStats(time.Minute), nil, testLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := &Job{ID: "o1", DocID: "d1", Status: StatusQueued, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	job.SetDocument(ir.Document{
		"metadata": map[string]any{"title": "编排测试"},
	})
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if got := o.GetJob("o1"); got != nil && got.Snapshot().Status == StatusCompleted {
			if !strings.Contains(got.Result(), "编排测试") {
				t.Errorf("unexpected result %q", got.Result())
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("job did not complete, status %s", o.GetJob("o1").Snapshot().Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	// Workers never started, so the queue cannot drain.
	o := NewOrchestrator(cfg, render.New(nil), nil, nil, testLogger())

	first := &Job{ID: "q1", Status: StatusQueued, UpdatedAt: time.Now()}
	if err := o.Submit(first); err != nil {
		t.Fatalf("first submit should succeed: %v", err)
	}

	second := &Job{ID: "q2", Status: StatusQueued, UpdatedAt: time.Now()}
	if err := o.Submit(second); err == nil {
		t.Fatal("expected queue full error")
	}
	if second.Status != StatusFailed {
		t.Errorf("expected failed status, got %s", second.Status)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}

func TestOrchestrator_GetJobMissing(t *testing.T) {
	o := NewOrchestrator(testConfig(), render.New(nil), nil, nil, testLogger())
	if o.GetJob("nope") != nil {
		t.Error("expected nil for unknown job")
	}
}
