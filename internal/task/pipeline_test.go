package task

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewPipeline_Validation(t *testing.T) {
	if _, err := NewPipeline(PipelineConfig{Interval: time.Second}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for empty name, got %v", err)
	}
	if _, err := NewPipeline(PipelineConfig{Name: "p"}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero interval, got %v", err)
	}
	if _, err := NewPipeline(PipelineConfig{Name: "p", Interval: time.Second, Steps: []Step{nil}}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for nil step, got %v", err)
	}
}

func TestPipeline_ExecutesStepsInOrder(t *testing.T) {
	var order recorder[int]
	step := func(n int) Step {
		return func(context.Context) error {
			order.add(n)
			return nil
		}
	}

	p, err := NewPipeline(PipelineConfig{
		Name:     "ordered",
		Steps:    []Step{step(1), step(2), step(3)},
		Interval: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := runFor(p, 350*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := order.snapshot()
	if len(got) < 9 {
		t.Fatalf("expected at least 9 step executions, got %d: %v", len(got), got)
	}
	for i, n := range got {
		if want := i%3 + 1; n != want {
			t.Fatalf("position %d: expected step %d, got %d (%v)", i, want, n, got)
		}
	}
}

func TestPipeline_StepsDoNotOverlap(t *testing.T) {
	var active, maxActive int
	var order recorder[string]
	step := func(name string) Step {
		return func(ctx context.Context) error {
			active++
			if active > maxActive {
				maxActive = active
			}
			order.add(name)
			time.Sleep(10 * time.Millisecond)
			active--
			return nil
		}
	}

	p, err := NewPipeline(PipelineConfig{
		Name:     "sequential",
		Steps:    []Step{step("Step1"), step("Step2")},
		Interval: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = runFor(p, 150*time.Millisecond)

	if maxActive != 1 {
		t.Errorf("steps overlapped: max active %d", maxActive)
	}
	got := order.snapshot()
	if len(got) < 4 || got[0] != "Step1" || got[1] != "Step2" {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestPipeline_StepErrorStopsPass(t *testing.T) {
	errStep := errors.New("step broke")
	var order recorder[int]

	p, err := NewPipeline(PipelineConfig{
		Name: "failing",
		Steps: []Step{
			func(context.Context) error { order.add(1); return nil },
			func(context.Context) error { order.add(2); return errStep },
			func(context.Context) error { order.add(3); return nil },
		},
		Interval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = runFor(p, time.Second)
	if !errors.Is(err, ErrHandlerFailed) || !errors.Is(err, errStep) {
		t.Fatalf("expected wrapped step failure, got %v", err)
	}
	if got := order.snapshot(); len(got) != 2 {
		t.Errorf("later steps should not run, got %v", got)
	}
}

func TestPipeline_CancelMidPass(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var order recorder[int]

	p, err := NewPipeline(PipelineConfig{
		Name: "cancel",
		Steps: []Step{
			func(context.Context) error { order.add(1); cancel(); return nil },
			func(context.Context) error { order.add(2); return nil },
		},
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := order.snapshot(); len(got) != 1 {
		t.Errorf("remaining steps should be skipped after cancel, got %v", got)
	}
}

func TestPipeline_EmptySteps(t *testing.T) {
	p, err := NewPipeline(PipelineConfig{Name: "empty", Interval: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 0 {
		t.Errorf("expected 0 steps, got %d", p.Len())
	}
	if err := runFor(p, 30*time.Millisecond); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
