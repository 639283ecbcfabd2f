// Package camera computes the virtual camera pose that glides along a
// caption line. A smooth curve through the word anchors is re-parameterized
// by arc length so traversal speed is uniform, the camera pursues a
// look-ahead target with frame-rate independent exponential damping, lines
// finish with a deliberate rightward overhang, and the viewing distance
// expands whenever the required horizontal span would clip the viewport.
//
// The engine holds no state of its own: the caller threads State in and out
// every frame, so preview and export sequences can run side by side and a
// saved State replays deterministically.
package camera

import (
	"math"
)

// Anchor is the fixed position of one rendered word's center.
type Anchor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// State is the damped camera pose owned by the calling sequencer.
type State struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	AimX     float64 `json:"aimX"`
	AimY     float64 `json:"aimY"`
	Distance float64 `json:"distance"`
}

// Frame is the computed pose for one rendered frame.
type Frame struct {
	Position Vec2    `json:"position"` // damped camera x/y
	Aim      Vec2    `json:"aim"`      // damped look-at point
	Target   Vec2    `json:"target"`   // raw (undamped) pursuit target
	Distance float64 `json:"distance"`
}

// Viewport carries the read-only per-frame projection inputs.
type Viewport struct {
	FOVRad           float64 `json:"fovRad"`
	Aspect           float64 `json:"aspect"`
	BaselineDistance float64 `json:"baselineDistance"`
}

// Config holds the follow/framing tuning for one pacing profile.
type Config struct {
	// Damping rates in 1/s; position-follow and look-at-aim are tuned
	// independently so the aim can feel tighter than the body.
	FollowLambda float64 `yaml:"follow_lambda" json:"follow_lambda"`
	AimLambda    float64 `yaml:"aim_lambda" json:"aim_lambda"`

	// LookAhead is the forward arc-length offset, in layout units,
	// added so the camera anticipates the next word.
	LookAhead float64 `yaml:"look_ahead" json:"look_ahead"`

	// Overhang: past OverhangStartU the target x blends toward
	// rightmostX + OverhangWidthFrac*lastWordWidth + OverhangBiasPx,
	// reaching full effect exactly at u=1.
	OverhangStartU    float64 `yaml:"overhang_start_u" json:"overhang_start_u"`
	OverhangWidthFrac float64 `yaml:"overhang_width_frac" json:"overhang_width_frac"`
	OverhangBiasPx    float64 `yaml:"overhang_bias_px" json:"overhang_bias_px"`

	// NeighborWords is how many words either side of the active one
	// must stay inside the viewport.
	NeighborWords int `yaml:"neighbor_words" json:"neighbor_words"`

	// Arc-length table resolution: SampleFloor + SamplesPerWord*len(anchors).
	SampleFloor    int `yaml:"sample_floor" json:"sample_floor"`
	SamplesPerWord int `yaml:"samples_per_word" json:"samples_per_word"`
}

// DefaultConfig returns the stock follow tuning.
func DefaultConfig() Config {
	return Config{
		FollowLambda:      6.0,
		AimLambda:         10.0,
		LookAhead:         0.35,
		OverhangStartU:    0.75,
		OverhangWidthFrac: 0.5,
		OverhangBiasPx:    24,
		NeighborWords:     2,
		SampleFloor:       64,
		SamplesPerWord:    16,
	}
}

// Path is the arc-length parameterized curve through one line's anchors.
// Built once per line; read-only afterwards.
type Path struct {
	anchors []Anchor
	cfg     Config
	samples []Vec2
	cum     []float64
	total   float64
}

// NewPath builds the curve and its arc-length table. Anchor positions are
// assumed fixed for the line's lifetime.
func NewPath(anchors []Anchor, cfg Config) *Path {
	p := &Path{anchors: anchors, cfg: cfg}
	if len(anchors) == 0 {
		return p
	}

	pts := make([]Vec2, len(anchors))
	for i, a := range anchors {
		pts[i] = Vec2{X: a.X, Y: a.Y}
	}

	n := cfg.SampleFloor + cfg.SamplesPerWord*len(anchors)
	if n < 2 {
		n = 2
	}

	p.samples = make([]Vec2, n)
	p.cum = make([]float64, n)
	for i := 0; i < n; i++ {
		p.samples[i] = splinePoint(pts, float64(i)/float64(n-1))
		if i > 0 {
			p.cum[i] = p.cum[i-1] + dist(p.samples[i-1], p.samples[i])
		}
	}
	p.total = p.cum[n-1]
	return p
}

// Length returns the curve's total arc length.
func (p *Path) Length() float64 {
	return p.total
}

// PointAt returns the curve point at progress u in [0,1] under uniform-speed
// traversal: equal steps of u travel equal distances even though the word
// anchors are unevenly spaced.
func (p *Path) PointAt(u float64) Vec2 {
	return p.pointAtDistance(clampF(u, 0, 1) * p.total)
}

func (p *Path) pointAtDistance(s float64) Vec2 {
	n := len(p.samples)
	switch {
	case n == 0:
		return Vec2{}
	case n == 1 || p.total == 0:
		return p.samples[0]
	}

	if s <= 0 {
		return p.samples[0]
	}
	if s >= p.total {
		return p.samples[n-1]
	}

	// Binary search the cumulative table for the surrounding samples.
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if p.cum[mid] <= s {
			lo = mid
		} else {
			hi = mid
		}
	}

	span := p.cum[hi] - p.cum[lo]
	if span == 0 {
		return p.samples[lo]
	}
	f := (s - p.cum[lo]) / span
	return Vec2{
		X: p.samples[lo].X + (p.samples[hi].X-p.samples[lo].X)*f,
		Y: p.samples[lo].Y + (p.samples[hi].Y-p.samples[lo].Y)*f,
	}
}

// Target computes the raw pursuit target for progress u: the uniform-speed
// curve point pushed forward by the look-ahead offset (clamped to the curve
// end), with the end-of-line overhang blend applied to its x-coordinate.
// lastWordWidth is the rendered width of the final word.
func (p *Path) Target(u, lastWordWidth float64) Vec2 {
	if len(p.anchors) == 0 {
		return Vec2{}
	}

	u = clampF(u, 0, 1)
	s := u*p.total + p.cfg.LookAhead
	if s > p.total {
		s = p.total
	}
	target := p.pointAtDistance(s)

	if e := p.overhangBlend(u); e > 0 {
		over := p.OvershootX(lastWordWidth)
		target.X = target.X + (over-target.X)*e
	}
	return target
}

// OvershootX is the terminal framing x: the rightmost anchor plus a
// proportion of the last word's width plus a fixed bias. Finishing to the
// right of the final word is intentional; the line never re-centers.
func (p *Path) OvershootX(lastWordWidth float64) float64 {
	rightmost := p.anchors[0].X
	for _, a := range p.anchors[1:] {
		if a.X > rightmost {
			rightmost = a.X
		}
	}
	return rightmost + p.cfg.OverhangWidthFrac*lastWordWidth + p.cfg.OverhangBiasPx
}

func (p *Path) overhangBlend(u float64) float64 {
	start := p.cfg.OverhangStartU
	if start >= 1 || u <= start {
		return 0
	}
	return smoothstep((u - start) / (1 - start))
}

// SpanWidth returns the horizontal extent that must stay on screen at
// progress u: the active word plus the configured neighbors either side.
func (p *Path) SpanWidth(u float64) float64 {
	n := len(p.anchors)
	if n < 2 {
		return 0
	}

	active := int(math.Round(clampF(u, 0, 1) * float64(n-1)))
	lo := active - p.cfg.NeighborWords
	hi := active + p.cfg.NeighborWords
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}

	minX, maxX := p.anchors[lo].X, p.anchors[lo].X
	for _, a := range p.anchors[lo+1 : hi+1] {
		minX = math.Min(minX, a.X)
		maxX = math.Max(maxX, a.X)
	}
	return maxX - minX
}

// Step advances the damped camera state by one frame. The previous state is
// passed in and the updated state returned; the engine never retains it.
// With no anchors the state is held as-is.
func (p *Path) Step(st State, u, dt float64, vp Viewport, lastWordWidth float64) (State, Frame) {
	if len(p.anchors) == 0 {
		return st, Frame{
			Position: Vec2{X: st.X, Y: st.Y},
			Aim:      Vec2{X: st.AimX, Y: st.AimY},
			Target:   Vec2{X: st.AimX, Y: st.AimY},
			Distance: st.Distance,
		}
	}

	target := p.Target(u, lastWordWidth)

	followK := dampFactor(p.cfg.FollowLambda, dt)
	aimK := dampFactor(p.cfg.AimLambda, dt)

	st.X += (target.X - st.X) * followK
	st.Y += (target.Y - st.Y) * followK
	st.AimX += (target.X - st.AimX) * aimK
	st.AimY += (target.Y - st.AimY) * aimK

	st.Distance = MinDistance(p.SpanWidth(u), vp.FOVRad, vp.Aspect, vp.BaselineDistance)

	return st, Frame{
		Position: Vec2{X: st.X, Y: st.Y},
		Aim:      Vec2{X: st.AimX, Y: st.AimY},
		Target:   target,
		Distance: st.Distance,
	}
}

// MinDistance returns the smallest camera distance keeping a horizontal span
// fully visible for the given field of view and aspect ratio:
// visibleHalfWidth = tan(fov/2) * distance * aspect. The result never drops
// below baseline; it only grows when the span would otherwise clip. Portrait
// aspects therefore push the camera back farther than landscape for the
// same span.
func MinDistance(spanWidth, fovRad, aspect, baseline float64) float64 {
	if spanWidth <= 0 || fovRad <= 0 || aspect <= 0 {
		return baseline
	}
	halfTan := math.Tan(fovRad / 2)
	if halfTan <= 0 {
		return baseline
	}
	required := (spanWidth / 2) / (halfTan * aspect)
	return math.Max(baseline, required)
}

// dampFactor converts a damping rate into a per-frame blend factor that is
// independent of frame rate: new = cur + (target-cur) * (1 - e^(-lambda*dt)).
func dampFactor(lambda, dt float64) float64 {
	if lambda <= 0 || dt <= 0 {
		return 0
	}
	return 1 - math.Exp(-lambda*dt)
}

func smoothstep(t float64) float64 {
	t = clampF(t, 0, 1)
	return t * t * (3 - 2*t)
}

func dist(a, b Vec2) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
