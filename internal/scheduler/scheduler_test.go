package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestAdd(t *testing.T) {
	s := New(time.Second, zerolog.Nop())

	if err := s.Add("snapshot", "0 18 * * 1-5", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Add() returned unexpected error: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", s.Len())
	}

	if err := s.Add("bad", "every tuesday", func(context.Context) error { return nil }); err == nil {
		t.Error("Expected error for invalid schedule")
	}
	if s.Len() != 1 {
		t.Errorf("Expected invalid schedule to be ignored, got %d entries", s.Len())
	}
}

// TestJobRuns checks that a job fires and failures do not stop the scheduler.
func TestJobRuns(t *testing.T) {
	s := New(time.Second, zerolog.Nop())
	ran := make(chan struct{}, 4)

	err := s.Add("tick", "@every 1s", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("Expected job context to carry a deadline")
		}
		ran <- struct{}{}
		return errors.New("boom")
	})
	if err != nil {
		t.Fatalf("Add() returned unexpected error: %v", err)
	}

	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("Expected job to run")
	}
}
