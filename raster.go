package lottie

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/gogpu/gg"
	"github.com/lucasb-eyer/go-colorful"
)

// precompDepthLimit bounds precomposition recursion. One level of
// nesting is resolved; anything deeper logs a diagnostic and paints
// nothing.
const precompDepthLimit = 1

// RasterRenderer is the immediate-mode backend. Every Render call
// clears the surface and repaints the full layer stack onto a
// gg.Context; no per-layer state survives between frames.
type RasterRenderer struct {
	doc    *Document
	layers []*Layer
	dc     *gg.Context
	scale  float64

	lastFrame float64
	destroyed bool
}

var _ Renderer = (*RasterRenderer)(nil)

// NewRasterRenderer creates a raster backend for the document. The
// surface starts at the document's pixel size times the device scale.
func NewRasterRenderer(doc *Document, opts ...RendererOption) *RasterRenderer {
	o := defaultRendererOptions()
	for _, opt := range opts {
		opt(&o)
	}
	w := int(math.Ceil(doc.Width * o.deviceScale))
	h := int(math.Ceil(doc.Height * o.deviceScale))
	return &RasterRenderer{
		doc:    doc,
		layers: sortedLayers(doc.Layers),
		dc:     gg.NewContext(w, h),
		scale:  o.deviceScale,
	}
}

// Render paints the frame. A panic or draw error inside one frame is
// contained: the method logs it, returns a *RenderError, and the
// renderer stays usable (the surface may hold a partially drawn
// frame). Render after Destroy is a no-op.
func (r *RasterRenderer) Render(frame float64) (err error) {
	if r.destroyed {
		Logger().Debug("raster: render after destroy ignored", "frame", frame)
		return nil
	}
	r.lastFrame = frame
	defer func() {
		if rec := recover(); rec != nil {
			err = &RenderError{Frame: frame, Err: fmt.Errorf("panic: %v", rec)}
			Logger().Error("raster: frame paint failed", "frame", frame, "err", err)
		}
	}()

	r.dc.Clear()
	r.dc.Push()
	defer r.dc.Pop()
	// Map composition coordinates onto the surface, which may differ
	// from the document size after Resize or under a device scale.
	r.dc.Scale(float64(r.dc.Width())/r.doc.Width, float64(r.dc.Height())/r.doc.Height)

	for _, layer := range r.layers {
		if derr := r.drawLayer(layer, frame, 1, 0); derr != nil {
			err = &RenderError{Frame: frame, Err: derr}
			Logger().Error("raster: frame paint failed", "frame", frame, "layer", layer.Name, "err", derr)
			return err
		}
	}
	return nil
}

// drawLayer paints one layer inside its own transform scope. alpha is
// the opacity accumulated from enclosing scopes, 0-1.
func (r *RasterRenderer) drawLayer(layer *Layer, frame, alpha float64, depth int) error {
	if layer.Hidden || !layer.VisibleAt(frame) {
		return nil
	}
	r.dc.Push()
	defer r.dc.Pop()

	tr := layer.transform()
	applyTransform(r.dc, tr, frame)
	alpha *= tr.OpacityAt(frame)

	switch layer.Type {
	case LayerShape:
		return r.drawShapeList(layer.Shapes, frame, alpha)
	case LayerPrecomp:
		return r.drawPrecomp(layer, frame, alpha, depth)
	case LayerSolid:
		return r.drawSolid(layer, alpha)
	case LayerImage:
		Logger().Warn("raster: image layers are not rendered", "layer", layer.Name)
		return nil
	case LayerText:
		Logger().Warn("raster: text layers are not rendered", "layer", layer.Name)
		return nil
	default:
		Logger().Warn("raster: unknown layer type skipped", "layer", layer.Name, "type", int(layer.Type))
		return nil
	}
}

// applyTransform applies position, rotation, scale, then subtracts the
// anchor. The anchor subtraction comes last so rotation and scale
// pivot around the anchor point.
func applyTransform(dc *gg.Context, tr *Transform, frame float64) {
	px, py := tr.PositionAt(frame)
	dc.Translate(px, py)
	if rot := tr.RotationAt(frame); rot != 0 {
		dc.Rotate(rot * math.Pi / 180)
	}
	sx, sy := tr.ScaleAt(frame)
	if sx != 1 || sy != 1 {
		dc.Scale(sx, sy)
	}
	if skew, axis := tr.SkewAt(frame); skew != 0 {
		applySkew(dc, skew, axis)
	}
	ax, ay := tr.AnchorAt(frame)
	dc.Translate(-ax, -ay)
}

// applySkew shears along the skew axis: rotate into the axis, shear,
// rotate back.
func applySkew(dc *gg.Context, skew, axis float64) {
	a := axis * math.Pi / 180
	if a != 0 {
		dc.Rotate(-a)
	}
	dc.Shear(math.Tan(-skew*math.Pi/180), 0)
	if a != 0 {
		dc.Rotate(a)
	}
}

// drawPrecomp resolves the layer's asset reference and paints the
// nested layer list at the same frame.
func (r *RasterRenderer) drawPrecomp(layer *Layer, frame, alpha float64, depth int) error {
	if depth >= precompDepthLimit {
		Logger().Warn("raster: precomp nesting beyond one level is not rendered", "layer", layer.Name, "ref", layer.RefID)
		return nil
	}
	asset := r.doc.Asset(layer.RefID)
	if asset == nil {
		Logger().Warn("raster: precomp references unknown asset", "layer", layer.Name, "ref", layer.RefID)
		return nil
	}
	for _, nested := range sortedLayers(asset.Layers) {
		if err := r.drawLayer(nested, frame, alpha, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// drawSolid paints a filled rectangle of the layer's intrinsic size.
func (r *RasterRenderer) drawSolid(layer *Layer, alpha float64) error {
	cr, cg, cb := 0.0, 0.0, 0.0
	if layer.SolidColor != "" {
		if c, err := colorful.Hex(layer.SolidColor); err == nil {
			cr, cg, cb = c.R, c.G, c.B
		} else {
			Logger().Warn("raster: bad solid color", "layer", layer.Name, "color", layer.SolidColor)
		}
	}
	r.dc.SetRGBA(cr, cg, cb, alpha)
	r.dc.DrawRectangle(0, 0, layer.Width, layer.Height)
	return r.dc.Fill()
}

// drawShapeList paints one group scope. Geometry entries accumulate
// in order; each paint entry re-traces the geometry accumulated so
// far and fills or strokes it. tr entries transform the whole scope,
// so they are applied, in order, before anything is drawn.
func (r *RasterRenderer) drawShapeList(shapes []Shape, frame, alpha float64) error {
	r.dc.Push()
	defer r.dc.Pop()

	for i := range shapes {
		if s := &shapes[i]; s.Type == ShapeTransform && !s.Hidden {
			tr := s.GroupTransform()
			applyTransform(r.dc, tr, frame)
			alpha *= tr.OpacityAt(frame)
		}
	}

	var geometry []*Shape
	for i := range shapes {
		s := &shapes[i]
		if s.Hidden {
			continue
		}
		switch s.Type {
		case ShapeGroup:
			if err := r.drawShapeList(s.Shapes, frame, alpha); err != nil {
				return err
			}
		case ShapeRect, ShapeEllipse, ShapePath:
			geometry = append(geometry, s)
		case ShapeFill:
			if err := r.paintGeometry(geometry, s, frame, alpha, false); err != nil {
				return err
			}
		case ShapeStroke:
			if err := r.paintGeometry(geometry, s, frame, alpha, true); err != nil {
				return err
			}
		case ShapeTransform:
			// Applied above, once per scope.
		default:
			Logger().Warn("raster: unknown shape type skipped", "shape", s.Name, "type", string(s.Type))
		}
	}
	return nil
}

// paintGeometry traces every accumulated geometry entry into one path
// and paints it with the given fill or stroke entry.
func (r *RasterRenderer) paintGeometry(geometry []*Shape, paint *Shape, frame, alpha float64, stroke bool) error {
	if len(geometry) == 0 {
		return nil
	}
	r.dc.ClearPath()
	for _, g := range geometry {
		r.traceShape(g, frame)
	}

	cr, cg, cb := paint.Color.ValueAt(frame).RGB()
	opacity := clamp01(paint.Opacity.ScalarAt(frame, 100) / 100)
	r.dc.SetRGBA(cr, cg, cb, alpha*opacity)

	if !stroke {
		return r.dc.Fill()
	}
	r.dc.SetLineWidth(paint.StrokeWidth.ScalarAt(frame, 1))
	r.dc.SetLineCap(lineCapFor(paint.LineCap))
	r.dc.SetLineJoin(lineJoinFor(paint.LineJoin))
	if paint.MiterLimit > 0 {
		r.dc.SetMiterLimit(paint.MiterLimit)
	}
	return r.dc.Stroke()
}

// traceShape appends one geometry entry to the current path.
func (r *RasterRenderer) traceShape(s *Shape, frame float64) {
	switch s.Type {
	case ShapeRect:
		w, h := s.Size.Vec2At(frame, 0, 0)
		cx, cy := s.Position.Vec2At(frame, 0, 0)
		round := s.Roundness.ScalarAt(frame, 0)
		if round > 0 {
			r.dc.DrawRoundedRectangle(cx-w/2, cy-h/2, w, h, round)
		} else {
			r.dc.DrawRectangle(cx-w/2, cy-h/2, w, h)
		}
	case ShapeEllipse:
		w, h := s.Size.Vec2At(frame, 0, 0)
		cx, cy := s.Position.Vec2At(frame, 0, 0)
		r.dc.DrawEllipse(cx, cy, w/2, h/2)
	case ShapePath:
		r.tracePath(s.Path.PathAt(frame))
	}
}

// tracePath traces cubic Bezier segments through consecutive
// vertices. Tangents are offsets from their vertex: segment i runs
// from v[i] with control v[i]+out[i] to v[i+1] with control
// v[i+1]+in[i+1]. A closed path adds the segment from the last vertex
// back to the first.
func (r *RasterRenderer) tracePath(p *BezierPath) {
	if p == nil || len(p.Vertices) == 0 {
		return
	}
	v := p.Vertices
	r.dc.MoveTo(v[0][0], v[0][1])
	for i := 0; i < len(v)-1; i++ {
		c1x, c1y := pathControl(v, p.OutTangents, i)
		c2x, c2y := pathControl(v, p.InTangents, i+1)
		r.dc.CubicTo(c1x, c1y, c2x, c2y, v[i+1][0], v[i+1][1])
	}
	if p.Closed && len(v) > 1 {
		last := len(v) - 1
		c1x, c1y := pathControl(v, p.OutTangents, last)
		c2x, c2y := pathControl(v, p.InTangents, 0)
		r.dc.CubicTo(c1x, c1y, c2x, c2y, v[0][0], v[0][1])
		r.dc.ClosePath()
	}
}

// pathControl returns vertex i plus its tangent offset, falling back
// to the vertex itself when the tangent list is short.
func pathControl(v, tangents [][2]float64, i int) (x, y float64) {
	x, y = v[i][0], v[i][1]
	if i < len(tangents) {
		x += tangents[i][0]
		y += tangents[i][1]
	}
	return x, y
}

// lineCapFor maps the wire format's cap code (1=butt, 2=round,
// 3=square) onto gg.
func lineCapFor(code int) gg.LineCap {
	switch code {
	case 2:
		return gg.LineCapRound
	case 3:
		return gg.LineCapSquare
	default:
		return gg.LineCapButt
	}
}

// lineJoinFor maps the wire format's join code (1=miter, 2=round,
// 3=bevel) onto gg.
func lineJoinFor(code int) gg.LineJoin {
	switch code {
	case 2:
		return gg.LineJoinRound
	case 3:
		return gg.LineJoinBevel
	default:
		return gg.LineJoinMiter
	}
}

// Resize rebuilds the surface at the new pixel dimensions times the
// device scale and repaints the current frame.
func (r *RasterRenderer) Resize(width, height int) error {
	if r.destroyed {
		return ErrDestroyed
	}
	w := int(math.Ceil(float64(width) * r.scale))
	h := int(math.Ceil(float64(height) * r.scale))
	if w <= 0 || h <= 0 {
		return fmt.Errorf("lottie: resize to %dx%d", w, h)
	}
	r.dc = gg.NewContext(w, h)
	return r.Render(r.lastFrame)
}

// Destroy releases the drawing surface. Safe to call more than once.
func (r *RasterRenderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	if r.dc != nil {
		if err := r.dc.Close(); err != nil {
			Logger().Warn("raster: closing surface", "err", err)
		}
		r.dc = nil
	}
}

// Image returns the current surface contents.
func (r *RasterRenderer) Image() image.Image {
	if r.destroyed {
		return nil
	}
	return r.dc.Image()
}

// EncodePNG writes the current surface contents as PNG.
func (r *RasterRenderer) EncodePNG(w io.Writer) error {
	if r.destroyed {
		return ErrDestroyed
	}
	return r.dc.EncodePNG(w)
}

// SavePNG writes the current surface contents to a PNG file.
func (r *RasterRenderer) SavePNG(path string) error {
	if r.destroyed {
		return ErrDestroyed
	}
	return r.dc.SavePNG(path)
}
