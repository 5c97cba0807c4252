package lottie

import (
	"encoding/json"
	"fmt"
)

// Value is an evaluated property value: a scalar is a 1-element
// vector, positions and anchors are 2-vectors, colors are 3- or
// 4-vectors with components in 0-1.
type Value []float64

// Scalar returns the first component, or 0 for an empty value.
func (v Value) Scalar() float64 {
	if len(v) == 0 {
		return 0
	}
	return v[0]
}

// Vec2 returns the first two components, zero-padded.
func (v Value) Vec2() (x, y float64) {
	if len(v) > 0 {
		x = v[0]
	}
	if len(v) > 1 {
		y = v[1]
	}
	return x, y
}

// RGB returns the first three components, zero-padded.
func (v Value) RGB() (r, g, b float64) {
	if len(v) > 0 {
		r = v[0]
	}
	if len(v) > 1 {
		g = v[1]
	}
	if len(v) > 2 {
		b = v[2]
	}
	return r, g, b
}

// Clone returns an independent copy of the value.
func (v Value) Clone() Value {
	if v == nil {
		return nil
	}
	out := make(Value, len(v))
	copy(out, v)
	return out
}

// UnmarshalJSON accepts either a bare number or an array of numbers.
func (v *Value) UnmarshalJSON(data []byte) error {
	var scalar float64
	if err := json.Unmarshal(data, &scalar); err == nil {
		*v = Value{scalar}
		return nil
	}
	var vec []float64
	if err := json.Unmarshal(data, &vec); err != nil {
		return fmt.Errorf("value: expected number or number array: %w", err)
	}
	*v = Value(vec)
	return nil
}

// MarshalJSON emits a bare number for scalars, an array otherwise.
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 1 {
		return json.Marshal(v[0])
	}
	return json.Marshal([]float64(v))
}

// Keyframe marks a property's known value at a specific frame.
// Values between keyframes are interpolated.
type Keyframe struct {
	Time  float64 `json:"t"`
	Value Value   `json:"s"`
}

// Animatable is a property that is either a constant or a
// keyframe-driven time-varying quantity.
//
// The wire format is {"k": <value|keyframe[]>, "a": 0|1}. The "a"
// flag is advisory; the decoder also sniffs the shape of "k", since
// real-world documents omit "a" freely.
type Animatable struct {
	Static    Value
	Keyframes []Keyframe
}

// IsStatic reports whether the property has no keyframes.
func (a *Animatable) IsStatic() bool {
	return len(a.Keyframes) == 0
}

// animatableWire mirrors the {k, a} wrapper object.
type animatableWire struct {
	K json.RawMessage `json:"k"`
	A int             `json:"a"`
}

// UnmarshalJSON decodes either the {k, a} wrapper or a bare value.
func (a *Animatable) UnmarshalJSON(data []byte) error {
	var wire animatableWire
	if err := json.Unmarshal(data, &wire); err != nil || len(wire.K) == 0 {
		// Not a wrapper object; treat the payload as a bare value.
		var v Value
		if verr := json.Unmarshal(data, &v); verr != nil {
			return fmt.Errorf("animatable: %w", verr)
		}
		*a = Animatable{Static: v}
		return nil
	}
	if wire.A == 1 || looksLikeKeyframes(wire.K) {
		var kfs []Keyframe
		if err := json.Unmarshal(wire.K, &kfs); err != nil {
			return fmt.Errorf("animatable keyframes: %w", err)
		}
		*a = Animatable{Keyframes: kfs}
		return nil
	}
	var v Value
	if err := json.Unmarshal(wire.K, &v); err != nil {
		return fmt.Errorf("animatable value: %w", err)
	}
	*a = Animatable{Static: v}
	return nil
}

// MarshalJSON emits the {k, a} wrapper.
func (a Animatable) MarshalJSON() ([]byte, error) {
	if len(a.Keyframes) > 0 {
		return json.Marshal(struct {
			A int        `json:"a"`
			K []Keyframe `json:"k"`
		}{1, a.Keyframes})
	}
	return json.Marshal(struct {
		A int   `json:"a"`
		K Value `json:"k"`
	}{0, a.Static})
}

// looksLikeKeyframes reports whether a raw k payload is an array whose
// first element is an object, i.e. a keyframe list rather than a
// vector value.
func looksLikeKeyframes(raw json.RawMessage) bool {
	inArray := false
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			if inArray {
				return false
			}
			inArray = true
			continue
		case '{':
			return inArray
		default:
			return false
		}
	}
	return false
}

// BezierPath is static cubic Bezier path data: a vertex list,
// per-vertex in/out tangents as offsets relative to the vertex (not
// absolute control points), and a closed flag.
type BezierPath struct {
	InTangents  [][2]float64 `json:"i"`
	OutTangents [][2]float64 `json:"o"`
	Vertices    [][2]float64 `json:"v"`
	Closed      bool         `json:"c"`
}

// Clone returns an independent copy of the path.
func (p BezierPath) Clone() BezierPath {
	out := p
	out.InTangents = append([][2]float64(nil), p.InTangents...)
	out.OutTangents = append([][2]float64(nil), p.OutTangents...)
	out.Vertices = append([][2]float64(nil), p.Vertices...)
	return out
}

// PathKeyframe marks known path data at a specific frame.
type PathKeyframe struct {
	Time  float64      `json:"t"`
	Value []BezierPath `json:"s"`
}

// AnimatablePath is path data that is either static or keyframed.
// Paths cannot be linearly interpolated component-wise in general, so
// evaluation steps between keyframes (see PathAt).
type AnimatablePath struct {
	Static    *BezierPath
	Keyframes []PathKeyframe
}

// pathWire mirrors the {k, a} wrapper for path data.
type pathWire struct {
	K json.RawMessage `json:"k"`
	A int             `json:"a"`
}

// UnmarshalJSON decodes {"k": <path|pathKeyframe[]>, "a": 0|1}.
func (p *AnimatablePath) UnmarshalJSON(data []byte) error {
	var wire pathWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("path: %w", err)
	}
	if len(wire.K) == 0 {
		*p = AnimatablePath{}
		return nil
	}
	if wire.A == 1 || looksLikeKeyframes(wire.K) {
		var kfs []PathKeyframe
		if err := json.Unmarshal(wire.K, &kfs); err != nil {
			return fmt.Errorf("path keyframes: %w", err)
		}
		*p = AnimatablePath{Keyframes: kfs}
		return nil
	}
	var bp BezierPath
	if err := json.Unmarshal(wire.K, &bp); err != nil {
		return fmt.Errorf("path value: %w", err)
	}
	*p = AnimatablePath{Static: &bp}
	return nil
}

// MarshalJSON emits the {k, a} wrapper.
func (p AnimatablePath) MarshalJSON() ([]byte, error) {
	if len(p.Keyframes) > 0 {
		return json.Marshal(struct {
			A int            `json:"a"`
			K []PathKeyframe `json:"k"`
		}{1, p.Keyframes})
	}
	return json.Marshal(struct {
		A int         `json:"a"`
		K *BezierPath `json:"k"`
	}{0, p.Static})
}
