package camera

import (
	"math"
	"testing"
)

func lineAnchors(xs ...float64) []Anchor {
	anchors := make([]Anchor, len(xs))
	for i, x := range xs {
		anchors[i] = Anchor{X: x, Y: 0}
	}
	return anchors
}

func TestPointAt_UniformSpeedOnUnevenAnchors(t *testing.T) {
	// Anchors bunch up then spread out; arc-length parameterization must
	// still yield near-equal travel for equal u steps.
	path := NewPath(lineAnchors(0, 2, 5, 9, 14), DefaultConfig())

	prev := path.PointAt(0)
	var steps []float64
	for u := 0.1; u <= 1.0001; u += 0.1 {
		pt := path.PointAt(u)
		steps = append(steps, dist(prev, pt))
		prev = pt
	}

	minStep, maxStep := steps[0], steps[0]
	for _, s := range steps {
		minStep = math.Min(minStep, s)
		maxStep = math.Max(maxStep, s)
	}
	if minStep <= 0 {
		t.Fatalf("zero-length step: %v", steps)
	}
	if maxStep/minStep > 1.35 {
		t.Errorf("traversal not uniform: steps %v", steps)
	}
}

func TestPointAt_Endpoints(t *testing.T) {
	path := NewPath(lineAnchors(0, 5, 9), DefaultConfig())

	start := path.PointAt(0)
	if start.X != 0 {
		t.Errorf("start = %+v, want x=0", start)
	}
	end := path.PointAt(1)
	if math.Abs(end.X-9) > 1e-9 {
		t.Errorf("end = %+v, want x=9", end)
	}
}

func TestTarget_LookAheadAnticipates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OverhangStartU = 1 // disable overhang for this test
	path := NewPath(lineAnchors(0, 10, 20), cfg)

	at := path.PointAt(0.5)
	target := path.Target(0.5, 0)
	if target.X <= at.X {
		t.Errorf("target %v not ahead of curve point %v", target.X, at.X)
	}
}

func TestTarget_LookAheadClampedAtEnd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OverhangStartU = 1
	path := NewPath(lineAnchors(0, 10), cfg)

	target := path.Target(1, 0)
	if math.Abs(target.X-10) > 1e-9 {
		t.Errorf("target at u=1 = %v, want clamped to 10", target.X)
	}
}

func TestTarget_OverhangExactAtEnd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OverhangStartU = 0.75
	cfg.OverhangWidthFrac = 0.5
	cfg.OverhangBiasPx = 24
	path := NewPath(lineAnchors(0, 10, 30), cfg)

	lastWidth := 8.0
	want := 30 + 0.5*lastWidth + 24

	got := path.Target(1, lastWidth).X
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("overhang target x = %v, want %v", got, want)
	}
	if got == 30 {
		t.Error("camera re-centered on last anchor; overhang not applied")
	}
}

func TestTarget_NoOverhangBeforeThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OverhangStartU = 0.75
	path := NewPath(lineAnchors(0, 10, 30), cfg)

	early := path.Target(0.5, 8)
	overshoot := path.OvershootX(8)
	if early.X >= overshoot {
		t.Errorf("overhang applied too early: target %v, overshoot %v", early.X, overshoot)
	}
}

func TestMinDistance_MonotonicAndBounded(t *testing.T) {
	fov := 50 * math.Pi / 180
	baseline := 12.0

	prev := 0.0
	for _, span := range []float64{0, 1, 5, 10, 50, 200} {
		d := MinDistance(span, fov, 16.0/9.0, baseline)
		if d < baseline {
			t.Errorf("span %v: distance %v below baseline %v", span, d, baseline)
		}
		if d < prev {
			t.Errorf("span %v: distance decreased from %v to %v", span, prev, d)
		}
		prev = d
	}
}

func TestMinDistance_PortraitNeedsMore(t *testing.T) {
	fov := 50 * math.Pi / 180
	landscape := MinDistance(100, fov, 16.0/9.0, 1)
	portrait := MinDistance(100, fov, 9.0/16.0, 1)
	if portrait <= landscape {
		t.Errorf("portrait %v should exceed landscape %v", portrait, landscape)
	}
}

func TestMinDistance_DegenerateInputs(t *testing.T) {
	if d := MinDistance(10, 0, 1, 7); d != 7 {
		t.Errorf("zero fov: %v, want baseline", d)
	}
	if d := MinDistance(0, 1, 1, 7); d != 7 {
		t.Errorf("zero span: %v, want baseline", d)
	}
}

func TestStep_FrameRateIndependentDamping(t *testing.T) {
	cfg := DefaultConfig()
	path := NewPath(lineAnchors(0, 10, 20), cfg)
	vp := Viewport{FOVRad: 1, Aspect: 1.78, BaselineDistance: 10}

	// One full step vs two half steps must land on the same pose.
	full, _ := path.Step(State{}, 0.5, 0.1, vp, 0)

	half, _ := path.Step(State{}, 0.5, 0.05, vp, 0)
	half, _ = path.Step(half, 0.5, 0.05, vp, 0)

	if math.Abs(full.X-half.X) > 1e-9 || math.Abs(full.AimX-half.AimX) > 1e-9 {
		t.Errorf("damping depends on frame rate: full %+v, halves %+v", full, half)
	}
}

func TestStep_AimTighterThanFollow(t *testing.T) {
	cfg := DefaultConfig() // AimLambda > FollowLambda
	path := NewPath(lineAnchors(0, 100), cfg)
	vp := Viewport{FOVRad: 1, Aspect: 1, BaselineDistance: 1}

	st, frame := path.Step(State{}, 1, 0.016, vp, 0)
	if st.AimX <= st.X {
		t.Errorf("aim %v should lead position %v toward target %v", st.AimX, st.X, frame.Target.X)
	}
}

func TestStep_EmptyAnchorsHoldsState(t *testing.T) {
	path := NewPath(nil, DefaultConfig())
	st := State{X: 3, Y: 4, AimX: 5, AimY: 6, Distance: 7}

	got, frame := path.Step(st, 0.5, 0.016, Viewport{}, 0)
	if got != st {
		t.Errorf("state changed with no anchors: %+v", got)
	}
	if frame.Position.X != 3 || frame.Distance != 7 {
		t.Errorf("frame = %+v", frame)
	}
}

func TestStep_SingleAnchorStable(t *testing.T) {
	path := NewPath(lineAnchors(5), DefaultConfig())
	vp := Viewport{FOVRad: 1, Aspect: 1, BaselineDistance: 3}

	st := State{}
	for i := 0; i < 100; i++ {
		st, _ = path.Step(st, 1, 0.016, vp, 0)
	}
	if math.IsNaN(st.X) || math.IsNaN(st.Y) {
		t.Fatal("NaN state on single-anchor line")
	}
	if st.Distance != 3 {
		t.Errorf("distance = %v, want baseline 3", st.Distance)
	}
}

func TestSpanWidth_GrowsWithNeighbors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NeighborWords = 1
	narrow := NewPath(lineAnchors(0, 10, 20, 30, 40), cfg)

	cfg.NeighborWords = 3
	wide := NewPath(lineAnchors(0, 10, 20, 30, 40), cfg)

	if wide.SpanWidth(0.5) <= narrow.SpanWidth(0.5) {
		t.Errorf("span with 3 neighbors (%v) not wider than with 1 (%v)",
			wide.SpanWidth(0.5), narrow.SpanWidth(0.5))
	}
}

func TestNewPath_TableResolutionScalesWithWords(t *testing.T) {
	cfg := DefaultConfig()
	few := NewPath(lineAnchors(0, 1), cfg)
	many := NewPath(lineAnchors(0, 1, 2, 3, 4, 5, 6, 7), cfg)

	if len(many.samples) <= len(few.samples) {
		t.Errorf("sample count did not scale: %d vs %d", len(many.samples), len(few.samples))
	}
	wantFew := cfg.SampleFloor + cfg.SamplesPerWord*2
	if len(few.samples) != wantFew {
		t.Errorf("sample count = %d, want %d", len(few.samples), wantFew)
	}
}
