package lottie

import "math"

// Optimizer constants. Vertex collapse only applies to paths with
// more than three vertices so closed triangles survive untouched.
const (
	// vertexTolerance is the perpendicular distance, in composition
	// units, below which a path vertex is considered collinear with
	// its neighbors and dropped.
	vertexTolerance = 0.5

	// minSimplifyVertices is the smallest vertex count eligible for
	// collapse.
	minSimplifyVertices = 4

	// roundDecimals is the decimal precision numeric leaves are
	// rounded to.
	roundDecimals = 3
)

// Optimize returns a reduced copy of the document: assets no layer
// references (transitively) are dropped, near-collinear path vertices
// are collapsed, and numeric leaves are rounded. The input document is
// not mutated, and the evaluator never requires an optimized
// document; this is best-effort size reduction for storage or
// re-serialization. Optimize is idempotent.
func Optimize(doc *Document) *Document {
	out := cloneDocument(doc)

	keep := map[string]bool{}
	markAssetRefs(out.Layers, out, keep)
	if len(keep) < len(out.Assets) {
		kept := out.Assets[:0]
		for _, a := range out.Assets {
			if keep[a.ID] {
				kept = append(kept, a)
			}
		}
		out.Assets = kept
		if len(out.Assets) == 0 {
			out.Assets = nil
		}
	}

	out.FrameRate = roundTo(out.FrameRate)
	out.InPoint = roundTo(out.InPoint)
	out.OutPoint = roundTo(out.OutPoint)
	out.Width = roundTo(out.Width)
	out.Height = roundTo(out.Height)
	for i := range out.Markers {
		out.Markers[i].Time = roundTo(out.Markers[i].Time)
		out.Markers[i].Duration = roundTo(out.Markers[i].Duration)
	}
	for i := range out.Layers {
		optimizeLayer(&out.Layers[i])
	}
	for i := range out.Assets {
		a := &out.Assets[i]
		a.Width = roundTo(a.Width)
		a.Height = roundTo(a.Height)
		for j := range a.Layers {
			optimizeLayer(&a.Layers[j])
		}
	}
	return out
}

// markAssetRefs records every asset id reachable from the given
// layers, following precomp references through nested layer lists.
func markAssetRefs(layers []Layer, doc *Document, keep map[string]bool) {
	for i := range layers {
		id := layers[i].RefID
		if id == "" || keep[id] {
			continue
		}
		keep[id] = true
		if a := doc.Asset(id); a != nil {
			markAssetRefs(a.Layers, doc, keep)
		}
	}
}

func optimizeLayer(l *Layer) {
	roundTransform(l.Transform)
	l.InPoint = roundTo(l.InPoint)
	l.OutPoint = roundTo(l.OutPoint)
	l.StartTime = roundTo(l.StartTime)
	l.Width = roundTo(l.Width)
	l.Height = roundTo(l.Height)
	for i := range l.Shapes {
		optimizeShape(&l.Shapes[i])
	}
}

func optimizeShape(s *Shape) {
	roundAnimatable(s.Size)
	roundAnimatable(s.Position)
	roundAnimatable(s.Roundness)
	roundAnimatable(s.Color)
	roundAnimatable(s.Opacity)
	roundAnimatable(s.StrokeWidth)
	roundAnimatable(s.AnchorPoint)
	s.MiterLimit = roundTo(s.MiterLimit)
	if s.Path != nil {
		if s.Path.Static != nil {
			simplifyPath(s.Path.Static)
			roundPath(s.Path.Static)
		}
		for i := range s.Path.Keyframes {
			for j := range s.Path.Keyframes[i].Value {
				simplifyPath(&s.Path.Keyframes[i].Value[j])
				roundPath(&s.Path.Keyframes[i].Value[j])
			}
		}
	}
	for i := range s.Shapes {
		optimizeShape(&s.Shapes[i])
	}
}

// simplifyPath drops vertices whose perpendicular distance from the
// line through their neighbors is below vertexTolerance. Endpoint
// vertices always survive; paths at or below three vertices are left
// alone.
func simplifyPath(p *BezierPath) {
	n := len(p.Vertices)
	if n < minSimplifyVertices {
		return
	}
	drop := make([]bool, n)
	for i := 1; i < n-1; i++ {
		if perpendicularDistance(p.Vertices[i], p.Vertices[i-1], p.Vertices[i+1]) < vertexTolerance {
			drop[i] = true
		}
	}
	kept := 0
	for _, d := range drop {
		if !d {
			kept++
		}
	}
	if kept == n || kept < 3 {
		return
	}
	vs := make([][2]float64, 0, kept)
	ins := make([][2]float64, 0, kept)
	outs := make([][2]float64, 0, kept)
	for i := 0; i < n; i++ {
		if drop[i] {
			continue
		}
		vs = append(vs, p.Vertices[i])
		if i < len(p.InTangents) {
			ins = append(ins, p.InTangents[i])
		}
		if i < len(p.OutTangents) {
			outs = append(outs, p.OutTangents[i])
		}
	}
	p.Vertices, p.InTangents, p.OutTangents = vs, ins, outs
}

// perpendicularDistance returns the distance from pt to the line
// through a and b. Degenerate (coincident) neighbors fall back to the
// point-to-point distance.
func perpendicularDistance(pt, a, b [2]float64) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	length := math.Hypot(dx, dy)
	if length == 0 {
		return math.Hypot(pt[0]-a[0], pt[1]-a[1])
	}
	return math.Abs(dy*pt[0]-dx*pt[1]+b[0]*a[1]-b[1]*a[0]) / length
}

func roundTransform(t *Transform) {
	if t == nil {
		return
	}
	roundAnimatable(t.AnchorPoint)
	roundAnimatable(t.Position)
	roundAnimatable(t.Scale)
	roundAnimatable(t.Rotation)
	roundAnimatable(t.Opacity)
	roundAnimatable(t.Skew)
	roundAnimatable(t.SkewAxis)
}

func roundAnimatable(a *Animatable) {
	if a == nil {
		return
	}
	roundValue(a.Static)
	for i := range a.Keyframes {
		a.Keyframes[i].Time = roundTo(a.Keyframes[i].Time)
		roundValue(a.Keyframes[i].Value)
	}
}

func roundValue(v Value) {
	for i := range v {
		v[i] = roundTo(v[i])
	}
}

func roundPath(p *BezierPath) {
	roundPoints(p.Vertices)
	roundPoints(p.InTangents)
	roundPoints(p.OutTangents)
}

func roundPoints(pts [][2]float64) {
	for i := range pts {
		pts[i][0] = roundTo(pts[i][0])
		pts[i][1] = roundTo(pts[i][1])
	}
}

var roundShift = math.Pow(10, roundDecimals)

func roundTo(v float64) float64 {
	return math.Round(v*roundShift) / roundShift
}

// cloneDocument deep-copies a document so Optimize can rewrite leaves
// without touching the original.
func cloneDocument(doc *Document) *Document {
	out := *doc
	out.Layers = cloneLayers(doc.Layers)
	if doc.Assets != nil {
		out.Assets = make([]Asset, len(doc.Assets))
		for i, a := range doc.Assets {
			out.Assets[i] = a
			out.Assets[i].Layers = cloneLayers(a.Layers)
		}
	}
	out.Markers = append([]Marker(nil), doc.Markers...)
	return &out
}

func cloneLayers(layers []Layer) []Layer {
	if layers == nil {
		return nil
	}
	out := make([]Layer, len(layers))
	for i, l := range layers {
		out[i] = l
		out[i].Transform = cloneTransform(l.Transform)
		out[i].Shapes = cloneShapes(l.Shapes)
	}
	return out
}

func cloneShapes(shapes []Shape) []Shape {
	if shapes == nil {
		return nil
	}
	out := make([]Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s
		out[i].Shapes = cloneShapes(s.Shapes)
		out[i].Size = cloneAnimatable(s.Size)
		out[i].Position = cloneAnimatable(s.Position)
		out[i].Roundness = cloneAnimatable(s.Roundness)
		out[i].Color = cloneAnimatable(s.Color)
		out[i].Opacity = cloneAnimatable(s.Opacity)
		out[i].StrokeWidth = cloneAnimatable(s.StrokeWidth)
		out[i].AnchorPoint = cloneAnimatable(s.AnchorPoint)
		out[i].Path = cloneAnimatablePath(s.Path)
	}
	return out
}

func cloneTransform(t *Transform) *Transform {
	if t == nil {
		return nil
	}
	return &Transform{
		AnchorPoint: cloneAnimatable(t.AnchorPoint),
		Position:    cloneAnimatable(t.Position),
		Scale:       cloneAnimatable(t.Scale),
		Rotation:    cloneAnimatable(t.Rotation),
		Opacity:     cloneAnimatable(t.Opacity),
		Skew:        cloneAnimatable(t.Skew),
		SkewAxis:    cloneAnimatable(t.SkewAxis),
	}
}

func cloneAnimatable(a *Animatable) *Animatable {
	if a == nil {
		return nil
	}
	out := &Animatable{Static: a.Static.Clone()}
	if a.Keyframes != nil {
		out.Keyframes = make([]Keyframe, len(a.Keyframes))
		for i, k := range a.Keyframes {
			out.Keyframes[i] = Keyframe{Time: k.Time, Value: k.Value.Clone()}
		}
	}
	return out
}

func cloneAnimatablePath(p *AnimatablePath) *AnimatablePath {
	if p == nil {
		return nil
	}
	out := &AnimatablePath{}
	if p.Static != nil {
		c := p.Static.Clone()
		out.Static = &c
	}
	if p.Keyframes != nil {
		out.Keyframes = make([]PathKeyframe, len(p.Keyframes))
		for i, k := range p.Keyframes {
			vals := make([]BezierPath, len(k.Value))
			for j, bp := range k.Value {
				vals[j] = bp.Clone()
			}
			out.Keyframes[i] = PathKeyframe{Time: k.Time, Value: vals}
		}
	}
	return out
}
