package lottie

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// LayerType identifies the kind of content a layer carries.
// The wire format encodes it as an integer code.
type LayerType int

// Layer type constants, matching the bodymovin integer codes.
const (
	// LayerPrecomp references a reusable sub-composition by asset id.
	LayerPrecomp LayerType = 0

	// LayerSolid is a single filled rectangle of intrinsic size.
	LayerSolid LayerType = 1

	// LayerImage references a raster image asset. Not rendered; both
	// backends log a diagnostic and paint nothing.
	LayerImage LayerType = 2

	// LayerShape carries a vector shape list.
	LayerShape LayerType = 4

	// LayerText carries laid-out text. Not rendered.
	LayerText LayerType = 5
)

// String returns a human-readable name for the layer type.
func (t LayerType) String() string {
	switch t {
	case LayerPrecomp:
		return "Precomp"
	case LayerSolid:
		return "Solid"
	case LayerImage:
		return "Image"
	case LayerShape:
		return "Shape"
	case LayerText:
		return "Text"
	default:
		return fmt.Sprintf("LayerType(%d)", int(t))
	}
}

// ShapeType identifies one entry in a shape list.
// The wire format encodes it as a short string code.
type ShapeType string

// Shape type constants, matching the bodymovin string codes.
const (
	// ShapeGroup holds an ordered child shape list.
	ShapeGroup ShapeType = "gr"

	// ShapeRect is a rectangle with optional corner roundness.
	ShapeRect ShapeType = "rc"

	// ShapeEllipse is an axis-aligned ellipse.
	ShapeEllipse ShapeType = "el"

	// ShapePath is an arbitrary cubic Bezier path.
	ShapePath ShapeType = "sh"

	// ShapeFill paints the accumulated sibling paths with a solid fill.
	ShapeFill ShapeType = "fl"

	// ShapeStroke outlines the accumulated sibling paths.
	ShapeStroke ShapeType = "st"

	// ShapeTransform is a shape-local transform applied to its group.
	ShapeTransform ShapeType = "tr"
)

// String returns a human-readable name for the shape type.
func (t ShapeType) String() string {
	switch t {
	case ShapeGroup:
		return "Group"
	case ShapeRect:
		return "Rect"
	case ShapeEllipse:
		return "Ellipse"
	case ShapePath:
		return "Path"
	case ShapeFill:
		return "Fill"
	case ShapeStroke:
		return "Stroke"
	case ShapeTransform:
		return "Transform"
	default:
		return fmt.Sprintf("ShapeType(%q)", string(t))
	}
}

// Document is a parsed animation. It is immutable after Parse: the
// evaluator and both renderer backends only read it, so a Document may
// be shared between players.
type Document struct {
	Version   string   `json:"v"`
	FrameRate float64  `json:"fr"`
	InPoint   float64  `json:"ip"`
	OutPoint  float64  `json:"op"`
	Width     float64  `json:"w"`
	Height    float64  `json:"h"`
	Name      string   `json:"nm,omitempty"`
	Layers    []Layer  `json:"layers"`
	Assets    []Asset  `json:"assets,omitempty"`
	Markers   []Marker `json:"markers,omitempty"`
}

// TotalFrames returns the number of playable frames, op - ip.
func (d *Document) TotalFrames() float64 {
	return d.OutPoint - d.InPoint
}

// Duration returns the playable length at the document frame rate.
func (d *Document) Duration() time.Duration {
	if d.FrameRate <= 0 {
		return 0
	}
	return time.Duration(d.TotalFrames() / d.FrameRate * float64(time.Second))
}

// Asset returns the asset with the given id, or nil.
func (d *Document) Asset(id string) *Asset {
	for i := range d.Assets {
		if d.Assets[i].ID == id {
			return &d.Assets[i]
		}
	}
	return nil
}

// Marker returns the marker with the given comment name, or nil.
func (d *Document) Marker(name string) *Marker {
	for i := range d.Markers {
		if d.Markers[i].Name == name {
			return &d.Markers[i]
		}
	}
	return nil
}

// Layer is one visual unit in the z-ordered layer stack.
type Layer struct {
	Index     int        `json:"ind"`
	Type      LayerType  `json:"ty"`
	Name      string     `json:"nm,omitempty"`
	Transform *Transform `json:"ks,omitempty"`
	InPoint   float64    `json:"ip"`
	OutPoint  float64    `json:"op"`
	StartTime float64    `json:"st,omitempty"`
	Hidden    bool       `json:"hd,omitempty"`
	Shapes    []Shape    `json:"shapes,omitempty"`
	RefID     string     `json:"refId,omitempty"`

	// Intrinsic size, used by solid and precomp layers.
	Width  float64 `json:"w,omitempty"`
	Height float64 `json:"h,omitempty"`

	// SolidColor is a #rrggbb hex string, solid layers only.
	SolidColor string `json:"sc,omitempty"`
}

// VisibleAt reports whether the layer is active at the given frame.
// The active window is half-open: ip <= frame < op.
func (l *Layer) VisibleAt(frame float64) bool {
	return frame >= l.InPoint && frame < l.OutPoint
}

// Transform is the set of animatable placement properties every layer
// (and every shape group) carries. Nil members evaluate to their
// identity defaults: zero anchor/position/rotation/skew, 100% scale,
// 100 opacity.
type Transform struct {
	AnchorPoint *Animatable `json:"a,omitempty"`
	Position    *Animatable `json:"p,omitempty"`
	Scale       *Animatable `json:"s,omitempty"`
	Rotation    *Animatable `json:"r,omitempty"`
	Opacity     *Animatable `json:"o,omitempty"`
	Skew        *Animatable `json:"sk,omitempty"`
	SkewAxis    *Animatable `json:"sa,omitempty"`
}

// Shape is one entry in a layer's (or group's) shape list. The Type
// tag selects which fields are meaningful; dispatch points switch over
// it exhaustively. Field names collide across kinds in the wire format
// (s is rect size but transform scale, r is roundness but rotation),
// so the struct mirrors the wire keys and the accessors below give
// them their per-kind meaning.
type Shape struct {
	Type   ShapeType `json:"ty"`
	Name   string    `json:"nm,omitempty"`
	Hidden bool      `json:"hd,omitempty"`

	// Group children (ty=gr).
	Shapes []Shape `json:"it,omitempty"`

	// Geometry (ty=rc, el: s=size, p=center; ty=rc: r=corner roundness).
	Size      *Animatable `json:"s,omitempty"`
	Position  *Animatable `json:"p,omitempty"`
	Roundness *Animatable `json:"r,omitempty"`

	// Bezier path (ty=sh).
	Path *AnimatablePath `json:"ks,omitempty"`

	// Paint (ty=fl, st).
	Color   *Animatable `json:"c,omitempty"`
	Opacity *Animatable `json:"o,omitempty"`

	// Stroke style (ty=st).
	StrokeWidth *Animatable `json:"w,omitempty"`
	LineCap     int         `json:"lc,omitempty"`
	LineJoin    int         `json:"lj,omitempty"`
	MiterLimit  float64     `json:"ml,omitempty"`

	// Shape-local transform anchor (ty=tr). The remaining transform
	// fields share wire keys with geometry: s is scale, r is rotation,
	// o is opacity, p is position. GroupTransform resolves the overlap.
	AnchorPoint *Animatable `json:"a,omitempty"`
}

// GroupTransform reinterprets a ty=tr shape's fields as a Transform.
func (s *Shape) GroupTransform() *Transform {
	return &Transform{
		AnchorPoint: s.AnchorPoint,
		Position:    s.Position,
		Scale:       s.Size,
		Rotation:    s.Roundness,
		Opacity:     s.Opacity,
	}
}

// IsGeometry reports whether the shape contributes paintable path
// geometry to its group.
func (s *Shape) IsGeometry() bool {
	switch s.Type {
	case ShapeRect, ShapeEllipse, ShapePath:
		return true
	case ShapeGroup, ShapeFill, ShapeStroke, ShapeTransform:
		return false
	default:
		return false
	}
}

// IsPaint reports whether the shape paints accumulated geometry.
func (s *Shape) IsPaint() bool {
	return s.Type == ShapeFill || s.Type == ShapeStroke
}

// Asset is a reusable resource referenced by a layer's RefID.
type Asset struct {
	ID     string  `json:"id"`
	Name   string  `json:"nm,omitempty"`
	Layers []Layer `json:"layers,omitempty"`
	Width  float64 `json:"w,omitempty"`
	Height float64 `json:"h,omitempty"`
}

// Marker is a named point on the document timeline.
type Marker struct {
	Name     string  `json:"cm,omitempty"`
	Time     float64 `json:"tm"`
	Duration float64 `json:"dr,omitempty"`
}

// identityTransform lets evaluation treat a missing ks block as the
// identity transform.
var identityTransform Transform

func (l *Layer) transform() *Transform {
	if l.Transform == nil {
		return &identityTransform
	}
	return l.Transform
}

// sortedLayers returns the layers ordered ascending by index. Lower
// indices paint first, so painting in slice order stacks correctly.
func sortedLayers(layers []Layer) []*Layer {
	out := make([]*Layer, 0, len(layers))
	for i := range layers {
		out = append(out, &layers[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// UnmarshalJSON accepts the bodymovin integer layer-type code.
func (t *LayerType) UnmarshalJSON(data []byte) error {
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("layer type: %w", err)
	}
	*t = LayerType(code)
	return nil
}

// MarshalJSON emits the bodymovin integer layer-type code.
func (t LayerType) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(t))
}
