package lottie

// Keyframe evaluation. These pure functions are the single source of
// truth for "value of property P at frame F"; both renderer backends
// call them and nothing else. Interpolation is linear in frame time:
// easing curves present in a document are ignored.

// ValueAt returns the property's value at the given frame.
//
// Static properties return their value at every frame. Keyframed
// properties locate the pair k_i, k_i+1 with k_i.t <= frame < k_i+1.t
// and interpolate linearly between them; frames before the first or
// after the last keyframe clamp to that boundary value with no
// extrapolation. A nil Animatable evaluates to nil.
func (a *Animatable) ValueAt(frame float64) Value {
	if a == nil {
		return nil
	}
	kfs := a.Keyframes
	if len(kfs) == 0 {
		return a.Static
	}
	if frame <= kfs[0].Time {
		return kfs[0].Value
	}
	last := kfs[len(kfs)-1]
	if frame >= last.Time {
		return last.Value
	}
	for i := 0; i < len(kfs)-1; i++ {
		k0, k1 := kfs[i], kfs[i+1]
		if frame >= k0.Time && frame < k1.Time {
			t := interpFactor(frame, k0.Time, k1.Time)
			return lerpValue(k0.Value, k1.Value, t)
		}
	}
	return last.Value
}

// ScalarAt is ValueAt reduced to the first component, with a fallback
// when the property is absent.
func (a *Animatable) ScalarAt(frame, fallback float64) float64 {
	if a == nil {
		return fallback
	}
	v := a.ValueAt(frame)
	if len(v) == 0 {
		return fallback
	}
	return v.Scalar()
}

// Vec2At is ValueAt reduced to two components, with fallbacks when
// the property is absent.
func (a *Animatable) Vec2At(frame, fx, fy float64) (x, y float64) {
	if a == nil {
		return fx, fy
	}
	v := a.ValueAt(frame)
	if len(v) == 0 {
		return fx, fy
	}
	return v.Vec2()
}

// PathAt returns the path data at the given frame. Path keyframes
// step rather than lerp: the start value holds while the normalized
// position is below 0.5, then the end value applies. Frames outside
// the keyframe range clamp to the boundary keyframe.
func (p *AnimatablePath) PathAt(frame float64) *BezierPath {
	if p == nil {
		return nil
	}
	kfs := p.Keyframes
	if len(kfs) == 0 {
		return p.Static
	}
	if frame <= kfs[0].Time {
		return firstPath(kfs[0])
	}
	last := kfs[len(kfs)-1]
	if frame >= last.Time {
		return firstPath(last)
	}
	for i := 0; i < len(kfs)-1; i++ {
		k0, k1 := kfs[i], kfs[i+1]
		if frame >= k0.Time && frame < k1.Time {
			if interpFactor(frame, k0.Time, k1.Time) < 0.5 {
				return firstPath(k0)
			}
			return firstPath(k1)
		}
	}
	return firstPath(last)
}

func firstPath(k PathKeyframe) *BezierPath {
	if len(k.Value) == 0 {
		return nil
	}
	return &k.Value[0]
}

// interpFactor maps frame into [0, 1] between two keyframe times.
// Duplicate keyframe times are legal in the wire format; they resolve
// to the end value rather than dividing by zero.
func interpFactor(frame, t0, t1 float64) float64 {
	if t1 <= t0 {
		return 1
	}
	return clamp01((frame - t0) / (t1 - t0))
}

// lerpValue interpolates two values element-wise. Trailing elements
// present in only one of the two vectors are held as-is, so a 2-vector
// animating toward a 3-vector keeps its known components moving.
func lerpValue(a, b Value, t float64) Value {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make(Value, n)
	for i := 0; i < n; i++ {
		switch {
		case i < len(a) && i < len(b):
			out[i] = a[i] + (b[i]-a[i])*t
		case i < len(a):
			out[i] = a[i]
		default:
			out[i] = b[i]
		}
	}
	return out
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Transform evaluation helpers. Nil properties fall back to identity:
// zero anchor, position, rotation and skew, 100% scale, 100 opacity.

// AnchorAt returns the anchor point at the given frame.
func (t *Transform) AnchorAt(frame float64) (x, y float64) {
	return t.AnchorPoint.Vec2At(frame, 0, 0)
}

// PositionAt returns the position at the given frame.
func (t *Transform) PositionAt(frame float64) (x, y float64) {
	return t.Position.Vec2At(frame, 0, 0)
}

// ScaleAt returns the scale at the given frame as fractions, where
// the wire format's 100 means identity.
func (t *Transform) ScaleAt(frame float64) (sx, sy float64) {
	x, y := t.Scale.Vec2At(frame, 100, 100)
	return x / 100, y / 100
}

// RotationAt returns the rotation at the given frame, in degrees.
func (t *Transform) RotationAt(frame float64) float64 {
	return t.Rotation.ScalarAt(frame, 0)
}

// OpacityAt returns the opacity at the given frame as a 0-1 fraction.
func (t *Transform) OpacityAt(frame float64) float64 {
	return clamp01(t.Opacity.ScalarAt(frame, 100) / 100)
}

// SkewAt returns the skew and skew axis at the given frame, degrees.
func (t *Transform) SkewAt(frame float64) (skew, axis float64) {
	return t.Skew.ScalarAt(frame, 0), t.SkewAxis.ScalarAt(frame, 0)
}
