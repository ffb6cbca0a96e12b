package zoom

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestTarget(t *testing.T) {
	tr := Target(testViewport, orb.Point{100, 50}, 5)
	if tr != (Transform{X: 0, Y: 50, K: 5}) {
		t.Fatalf("unexpected transform %+v", tr)
	}
	if got := tr.Apply(orb.Point{100, 50}); got != (orb.Point{500, 300}) {
		t.Errorf("focal should land on center, got %v", got)
	}
	if got := tr.Invert(orb.Point{500, 300}); got != (orb.Point{100, 50}) {
		t.Errorf("invert: expected focal, got %v", got)
	}
	if Target(testViewport, testViewport.Center(), 1) != Identity() {
		t.Errorf("unzoomed view at center should be identity")
	}
}

func TestTransform_String(t *testing.T) {
	tr := Transform{X: -12.5, Y: 40, K: 5}
	if got, want := tr.String(), "translate(-12.5,40)scale(5)"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestInterpolate(t *testing.T) {
	a := Identity()
	b := Transform{X: -100, Y: 200, K: 5}
	if Interpolate(a, b, 0) != a || Interpolate(a, b, 1) != b {
		t.Errorf("expected endpoints at 0 and 1")
	}
	mid := Interpolate(a, b, 0.5)
	if mid != (Transform{X: -50, Y: 100, K: 3}) {
		t.Errorf("unexpected midpoint %+v", mid)
	}
}

func TestEaseCubicOut(t *testing.T) {
	if EaseCubicOut(0) != 0 || EaseCubicOut(1) != 1 {
		t.Fatalf("expected ease endpoints 0 and 1")
	}
	if EaseCubicOut(0.5) != 0.875 {
		t.Errorf("expected 0.875 at half time, got %v", EaseCubicOut(0.5))
	}
	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := EaseCubicOut(float64(i) / 100)
		if v < prev {
			t.Fatalf("ease not monotonic at %d", i)
		}
		prev = v
	}
}
