package camera

// Vec2 is a 2D point in word-layout space.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// catmullRom evaluates a Catmull-Rom segment between p1 and p2 at t in
// [0,1], using p0 and p3 as the neighboring control points. The resulting
// curve interpolates every anchor with continuous tangents, so the camera
// path does not kink at word boundaries the way a polyline would.
func catmullRom(p0, p1, p2, p3 Vec2, t float64) Vec2 {
	t2 := t * t
	t3 := t2 * t
	return Vec2{
		X: 0.5 * ((2 * p1.X) +
			(-p0.X+p2.X)*t +
			(2*p0.X-5*p1.X+4*p2.X-p3.X)*t2 +
			(-p0.X+3*p1.X-3*p2.X+p3.X)*t3),
		Y: 0.5 * ((2 * p1.Y) +
			(-p0.Y+p2.Y)*t +
			(2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t2 +
			(-p0.Y+3*p1.Y-3*p2.Y+p3.Y)*t3),
	}
}

// splinePoint evaluates the full interpolating curve through pts at global
// parameter t in [0,1]. Endpoints are duplicated so the curve starts and
// ends exactly on the first and last anchor.
func splinePoint(pts []Vec2, t float64) Vec2 {
	n := len(pts)
	switch n {
	case 0:
		return Vec2{}
	case 1:
		return pts[0]
	}

	if t <= 0 {
		return pts[0]
	}
	if t >= 1 {
		return pts[n-1]
	}

	scaled := t * float64(n-1)
	seg := int(scaled)
	if seg > n-2 {
		seg = n - 2
	}
	local := scaled - float64(seg)

	p1 := pts[seg]
	p2 := pts[seg+1]
	p0 := p1
	if seg > 0 {
		p0 = pts[seg-1]
	}
	p3 := p2
	if seg+2 < n {
		p3 = pts[seg+2]
	}

	return catmullRom(p0, p1, p2, p3, local)
}
