package tick

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestFixedRun(t *testing.T) {
	var dts []float64
	err := Fixed{Rate: 60, Steps: 5}.Run(context.Background(), func(dt float64) error {
		dts = append(dts, dt)
		return nil
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(dts) != 5 {
		t.Fatalf("expected 5 ticks, got %d", len(dts))
	}
	for _, dt := range dts {
		if dt != 1.0/60 {
			t.Errorf("expected dt 1/60, got %v", dt)
		}
	}
}

func TestFixedRun_Stop(t *testing.T) {
	count := 0
	err := Fixed{Rate: 60, Steps: 100}.Run(context.Background(), func(dt float64) error {
		count++
		if count == 3 {
			return ErrStop
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ErrStop should end the run cleanly, got %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 ticks, got %d", count)
	}
}

func TestFixedRun_CallbackError(t *testing.T) {
	boom := errors.New("boom")
	err := Fixed{Rate: 60, Steps: 10}.Run(context.Background(), func(dt float64) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected callback error, got %v", err)
	}
}

func TestFixedRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Fixed{Rate: 60, Steps: 10}.Run(ctx, func(dt float64) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("callback ran after cancellation")
	}
}

func TestInvalidRate(t *testing.T) {
	noop := func(float64) error { return nil }

	if err := (Fixed{Rate: 0, Steps: 1}).Run(context.Background(), noop); err == nil {
		t.Error("expected error for zero rate")
	}
	if err := (Fixed{Rate: math.NaN(), Steps: 1}).Run(context.Background(), noop); err == nil {
		t.Error("expected error for NaN rate")
	}
	if err := (Realtime{Rate: math.Inf(1), Steps: 1}).Run(context.Background(), noop); err == nil {
		t.Error("expected error for infinite rate")
	}
	if err := (Realtime{Rate: -1, Steps: 1}).Run(context.Background(), noop); err == nil {
		t.Error("expected error for negative rate")
	}
}

func TestRealtimeRun(t *testing.T) {
	count := 0
	start := time.Now()
	err := Realtime{Rate: 200, Steps: 4}.Run(context.Background(), func(dt float64) error {
		count++
		if dt != 1.0/200 {
			t.Errorf("expected dt 1/200, got %v", dt)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 ticks, got %d", count)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("ticks were not paced: %v", elapsed)
	}
}

func TestInterval(t *testing.T) {
	if got := Interval(DefaultRate); got != time.Second/60 {
		t.Errorf("expected %v, got %v", time.Second/60, got)
	}
	if got := Interval(2e9); got != time.Nanosecond {
		t.Errorf("expected 1ns floor, got %v", got)
	}
}

func TestRealtimeRun_HighRate(t *testing.T) {
	count := 0
	err := Realtime{Rate: 2e9, Steps: 3}.Run(context.Background(), func(dt float64) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 ticks, got %d", count)
	}
}
