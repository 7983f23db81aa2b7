package strategy_test

import (
	"math"
	"testing"
	"time"

	"subdub/internal/strategy"
)

func TestDecideDeadZone(t *testing.T) {
	bounds := strategy.SafeRange{Min: 0.7, Max: 1.5}

	// 2.02s of speech into a 2.0s window is inside the 5% dead zone.
	d := strategy.Decide(2020*time.Millisecond, 2*time.Second, bounds, 0.05)
	if d.Applied != 1.0 {
		t.Fatalf("expected no stretch inside dead zone, got %.4f", d.Applied)
	}
	if d.Clamped {
		t.Fatal("dead-zone decision must not report clamping")
	}
	if math.Abs(d.Requested-1.01) > 1e-9 {
		t.Fatalf("expected requested ratio 1.01, got %.6f", d.Requested)
	}
}

func TestDecideAppliesRatio(t *testing.T) {
	bounds := strategy.SafeRange{Min: 0.7, Max: 1.5}

	d := strategy.Decide(3*time.Second, 2500*time.Millisecond, bounds, 0.05)
	if d.Clamped {
		t.Fatalf("ratio %.4f is inside bounds, must not clamp", d.Requested)
	}
	if math.Abs(d.Applied-1.2) > 1e-9 {
		t.Fatalf("expected applied ratio 1.2, got %.6f", d.Applied)
	}
}

func TestDecideClampsToNearestBound(t *testing.T) {
	bounds := strategy.SafeRange{Min: 0.7, Max: 1.5}

	fast := strategy.Decide(4*time.Second, 2*time.Second, bounds, 0.05)
	if !fast.Clamped || fast.Applied != 1.5 {
		t.Fatalf("expected clamp to 1.5, got %+v", fast)
	}

	slow := strategy.Decide(time.Second, 2*time.Second, bounds, 0.05)
	if !slow.Clamped || slow.Applied != 0.7 {
		t.Fatalf("expected clamp to 0.7, got %+v", slow)
	}
}

func TestDecideDegenerateWindows(t *testing.T) {
	bounds := strategy.SafeRange{Min: 0.7, Max: 1.5}

	if d := strategy.Decide(time.Second, 0, bounds, 0.05); d.Applied != 1.0 || d.Clamped {
		t.Fatalf("zero target must yield identity decision, got %+v", d)
	}
	if d := strategy.Decide(0, time.Second, bounds, 0.05); d.Applied != 1.0 || d.Clamped {
		t.Fatalf("zero natural duration must yield identity decision, got %+v", d)
	}
}

func TestSafeRangeClamp(t *testing.T) {
	r := strategy.SafeRange{Min: 0.8, Max: 1.3}
	if v, moved := r.Clamp(1.0); v != 1.0 || moved {
		t.Fatalf("in-range value must pass through, got %v moved=%v", v, moved)
	}
	if v, moved := r.Clamp(2.0); v != 1.3 || !moved {
		t.Fatalf("expected clamp to 1.3, got %v moved=%v", v, moved)
	}
	if v, moved := r.Clamp(0.1); v != 0.8 || !moved {
		t.Fatalf("expected clamp to 0.8, got %v moved=%v", v, moved)
	}
}
