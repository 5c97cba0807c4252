package lottie

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/beevik/etree"
	"github.com/lucasb-eyer/go-colorful"
)

// SVGRenderer is the retained-mode backend. Construction builds one
// persistent <g> element per layer under a viewbox-sized <svg> root;
// Render mutates attributes and rebuilds only each layer's child
// paint elements. The viewbox makes Resize a no-op: hosts scale the
// output by sizing the root element.
type SVGRenderer struct {
	doc    *Document
	layers []*Layer

	xml   *etree.Document
	root  *etree.Element
	nodes []*etree.Element // parallel to layers

	lastFrame float64
	destroyed bool
}

var _ Renderer = (*SVGRenderer)(nil)

// NewSVGRenderer creates an SVG backend for the document. Renderer
// options only affect raster surfaces; the SVG backend scales through
// its viewbox.
func NewSVGRenderer(doc *Document, opts ...RendererOption) *SVGRenderer {
	xml := etree.NewDocument()
	root := xml.CreateElement("svg")
	root.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	root.CreateAttr("width", trimFloat(doc.Width))
	root.CreateAttr("height", trimFloat(doc.Height))
	root.CreateAttr("viewBox", fmt.Sprintf("0 0 %s %s", trimFloat(doc.Width), trimFloat(doc.Height)))

	r := &SVGRenderer{
		doc:    doc,
		layers: sortedLayers(doc.Layers),
		xml:    xml,
		root:   root,
	}
	for _, layer := range r.layers {
		node := root.CreateElement("g")
		node.CreateAttr("id", fmt.Sprintf("layer-%d", layer.Index))
		if layer.Name != "" {
			node.CreateAttr("data-name", layer.Name)
		}
		r.nodes = append(r.nodes, node)
		switch layer.Type {
		case LayerImage:
			Logger().Warn("svg: image layers are not rendered", "layer", layer.Name)
		case LayerText:
			Logger().Warn("svg: text layers are not rendered", "layer", layer.Name)
		case LayerPrecomp, LayerSolid, LayerShape:
		default:
			Logger().Warn("svg: unknown layer type", "layer", layer.Name, "type", int(layer.Type))
		}
	}
	return r
}

// Render updates every layer node to the given frame. Render after
// Destroy is a no-op.
func (r *SVGRenderer) Render(frame float64) (err error) {
	if r.destroyed {
		Logger().Debug("svg: render after destroy ignored", "frame", frame)
		return nil
	}
	r.lastFrame = frame
	defer func() {
		if rec := recover(); rec != nil {
			err = &RenderError{Frame: frame, Err: fmt.Errorf("panic: %v", rec)}
			Logger().Error("svg: frame update failed", "frame", frame, "err", err)
		}
	}()

	for i, layer := range r.layers {
		r.updateLayer(r.nodes[i], layer, frame, 0)
	}
	return nil
}

// updateLayer mutates one persistent layer node for the frame.
func (r *SVGRenderer) updateLayer(node *etree.Element, layer *Layer, frame float64, depth int) {
	if layer.Hidden || !layer.VisibleAt(frame) {
		node.CreateAttr("display", "none")
		return
	}
	node.RemoveAttr("display")

	tr := layer.transform()
	if ts := transformString(tr, frame); ts != "" {
		node.CreateAttr("transform", ts)
	} else {
		node.RemoveAttr("transform")
	}
	node.CreateAttr("opacity", trimFloat(tr.OpacityAt(frame)))

	clearChildren(node)
	switch layer.Type {
	case LayerShape:
		r.buildGroup(node, layer.Shapes, frame, "", groupPaint{})
	case LayerPrecomp:
		r.buildPrecomp(node, layer, frame, depth)
	case LayerSolid:
		rect := node.CreateElement("rect")
		rect.CreateAttr("width", trimFloat(layer.Width))
		rect.CreateAttr("height", trimFloat(layer.Height))
		rect.CreateAttr("fill", solidHex(layer))
	case LayerImage, LayerText:
		// Diagnostic already logged at construction; node stays empty.
	default:
	}
}

// buildPrecomp resolves one level of composition nesting, building a
// nested group per referenced layer. This matches the raster backend:
// deeper nesting logs a diagnostic and renders blank.
func (r *SVGRenderer) buildPrecomp(node *etree.Element, layer *Layer, frame float64, depth int) {
	if depth >= precompDepthLimit {
		Logger().Warn("svg: precomp nesting beyond one level is not rendered", "layer", layer.Name, "ref", layer.RefID)
		return
	}
	asset := r.doc.Asset(layer.RefID)
	if asset == nil {
		Logger().Warn("svg: precomp references unknown asset", "layer", layer.Name, "ref", layer.RefID)
		return
	}
	for _, nested := range sortedLayers(asset.Layers) {
		child := node.CreateElement("g")
		child.CreateAttr("id", fmt.Sprintf("%s-layer-%d", layer.RefID, nested.Index))
		r.updateLayer(child, nested, frame, depth+1)
	}
}

// groupPaint carries the paint entries a nested group inherits from
// its enclosing groups.
type groupPaint struct {
	fill   *Shape
	stroke *Shape
}

// buildGroup flattens one group scope into a single child <g>
// carrying the accumulated transform string. Paint entries apply to
// every geometry entry of the flattened node, last-applicable-wins;
// nested groups become their own flattened siblings, inheriting
// transform and paints.
func (r *SVGRenderer) buildGroup(layerNode *etree.Element, shapes []Shape, frame float64, accum string, inherited groupPaint) {
	paints := inherited
	var opacity float64 = 1
	for i := range shapes {
		s := &shapes[i]
		if s.Hidden {
			continue
		}
		switch s.Type {
		case ShapeTransform:
			tr := s.GroupTransform()
			if ts := transformString(tr, frame); ts != "" {
				accum = joinTransforms(accum, ts)
			}
			opacity *= tr.OpacityAt(frame)
		case ShapeFill:
			paints.fill = s
		case ShapeStroke:
			paints.stroke = s
		}
	}

	var node *etree.Element
	ensureNode := func() *etree.Element {
		if node == nil {
			node = layerNode.CreateElement("g")
			if accum != "" {
				node.CreateAttr("transform", accum)
			}
			if opacity != 1 {
				node.CreateAttr("opacity", trimFloat(opacity))
			}
		}
		return node
	}

	for i := range shapes {
		s := &shapes[i]
		if s.Hidden {
			continue
		}
		switch s.Type {
		case ShapeGroup:
			r.buildGroup(layerNode, s.Shapes, frame, accum, paints)
		case ShapeRect:
			el := ensureNode().CreateElement("rect")
			w, h := s.Size.Vec2At(frame, 0, 0)
			cx, cy := s.Position.Vec2At(frame, 0, 0)
			el.CreateAttr("x", trimFloat(cx-w/2))
			el.CreateAttr("y", trimFloat(cy-h/2))
			el.CreateAttr("width", trimFloat(w))
			el.CreateAttr("height", trimFloat(h))
			if round := s.Roundness.ScalarAt(frame, 0); round > 0 {
				el.CreateAttr("rx", trimFloat(round))
			}
			applyPaintAttrs(el, paints, frame)
		case ShapeEllipse:
			el := ensureNode().CreateElement("ellipse")
			w, h := s.Size.Vec2At(frame, 0, 0)
			cx, cy := s.Position.Vec2At(frame, 0, 0)
			el.CreateAttr("cx", trimFloat(cx))
			el.CreateAttr("cy", trimFloat(cy))
			el.CreateAttr("rx", trimFloat(w/2))
			el.CreateAttr("ry", trimFloat(h/2))
			applyPaintAttrs(el, paints, frame)
		case ShapePath:
			if d := pathData(s.Path.PathAt(frame)); d != "" {
				el := ensureNode().CreateElement("path")
				el.CreateAttr("d", d)
				applyPaintAttrs(el, paints, frame)
			}
		case ShapeFill, ShapeStroke, ShapeTransform:
			// Collected above.
		default:
			Logger().Warn("svg: unknown shape type skipped", "shape", s.Name, "type", string(s.Type))
		}
	}
}

// applyPaintAttrs writes fill and stroke attribute strings built from
// the same evaluated values the raster backend paints with.
func applyPaintAttrs(el *etree.Element, paints groupPaint, frame float64) {
	if f := paints.fill; f != nil {
		el.CreateAttr("fill", paintHex(f, frame))
		if o := clamp01(f.Opacity.ScalarAt(frame, 100) / 100); o < 1 {
			el.CreateAttr("fill-opacity", trimFloat(o))
		}
	} else {
		el.CreateAttr("fill", "none")
	}
	if s := paints.stroke; s != nil {
		el.CreateAttr("stroke", paintHex(s, frame))
		el.CreateAttr("stroke-width", trimFloat(s.StrokeWidth.ScalarAt(frame, 1)))
		if o := clamp01(s.Opacity.ScalarAt(frame, 100) / 100); o < 1 {
			el.CreateAttr("stroke-opacity", trimFloat(o))
		}
		el.CreateAttr("stroke-linecap", strokeLinecap(s.LineCap))
		el.CreateAttr("stroke-linejoin", strokeLinejoin(s.LineJoin))
		if s.MiterLimit > 0 {
			el.CreateAttr("stroke-miterlimit", trimFloat(s.MiterLimit))
		}
	}
}

// paintHex serializes a paint entry's evaluated color triple.
func paintHex(paint *Shape, frame float64) string {
	cr, cg, cb := paint.Color.ValueAt(frame).RGB()
	c := colorful.Color{R: clamp01(cr), G: clamp01(cg), B: clamp01(cb)}
	return c.Hex()
}

// solidHex validates a solid layer's intrinsic color.
func solidHex(layer *Layer) string {
	if layer.SolidColor == "" {
		return "#000000"
	}
	c, err := colorful.Hex(layer.SolidColor)
	if err != nil {
		Logger().Warn("svg: bad solid color", "layer", layer.Name, "color", layer.SolidColor)
		return "#000000"
	}
	return c.Hex()
}

// pathData builds an SVG path d attribute from cubic Bezier segments
// through the path's vertices, using the same tangent-offset rules as
// the raster backend.
func pathData(p *BezierPath) string {
	if p == nil || len(p.Vertices) == 0 {
		return ""
	}
	v := p.Vertices
	var b strings.Builder
	fmt.Fprintf(&b, "M%s %s", trimFloat(v[0][0]), trimFloat(v[0][1]))
	for i := 0; i < len(v)-1; i++ {
		c1x, c1y := pathControl(v, p.OutTangents, i)
		c2x, c2y := pathControl(v, p.InTangents, i+1)
		fmt.Fprintf(&b, " C%s %s %s %s %s %s",
			trimFloat(c1x), trimFloat(c1y), trimFloat(c2x), trimFloat(c2y),
			trimFloat(v[i+1][0]), trimFloat(v[i+1][1]))
	}
	if p.Closed && len(v) > 1 {
		last := len(v) - 1
		c1x, c1y := pathControl(v, p.OutTangents, last)
		c2x, c2y := pathControl(v, p.InTangents, 0)
		fmt.Fprintf(&b, " C%s %s %s %s %s %s Z",
			trimFloat(c1x), trimFloat(c1y), trimFloat(c2x), trimFloat(c2y),
			trimFloat(v[0][0]), trimFloat(v[0][1]))
	}
	return b.String()
}

// transformString builds the transform attribute in the same order
// the raster backend applies: position, rotation, scale, negative
// anchor. Identity parts are omitted; an empty string means identity.
func transformString(tr *Transform, frame float64) string {
	var parts []string
	if px, py := tr.PositionAt(frame); px != 0 || py != 0 {
		parts = append(parts, fmt.Sprintf("translate(%s %s)", trimFloat(px), trimFloat(py)))
	}
	if rot := tr.RotationAt(frame); rot != 0 {
		parts = append(parts, fmt.Sprintf("rotate(%s)", trimFloat(rot)))
	}
	if sx, sy := tr.ScaleAt(frame); sx != 1 || sy != 1 {
		parts = append(parts, fmt.Sprintf("scale(%s %s)", trimFloat(sx), trimFloat(sy)))
	}
	if skew, axis := tr.SkewAt(frame); skew != 0 {
		if axis != 0 {
			parts = append(parts, fmt.Sprintf("rotate(%s)", trimFloat(-axis)))
		}
		parts = append(parts, fmt.Sprintf("skewX(%s)", trimFloat(-skew)))
		if axis != 0 {
			parts = append(parts, fmt.Sprintf("rotate(%s)", trimFloat(axis)))
		}
	}
	if ax, ay := tr.AnchorAt(frame); ax != 0 || ay != 0 {
		parts = append(parts, fmt.Sprintf("translate(%s %s)", trimFloat(-ax), trimFloat(-ay)))
	}
	return strings.Join(parts, " ")
}

// strokeLinecap maps the wire format's cap code (1=butt, 2=round,
// 3=square) onto the SVG attribute value.
func strokeLinecap(code int) string {
	switch code {
	case 2:
		return "round"
	case 3:
		return "square"
	default:
		return "butt"
	}
}

// strokeLinejoin maps the wire format's join code (1=miter, 2=round,
// 3=bevel) onto the SVG attribute value.
func strokeLinejoin(code int) string {
	switch code {
	case 2:
		return "round"
	case 3:
		return "bevel"
	default:
		return "miter"
	}
}

func joinTransforms(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " " + b
}

// trimFloat formats a number the way SVG attributes expect: no
// exponent for ordinary magnitudes, no trailing zeros.
func trimFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

func clearChildren(node *etree.Element) {
	for _, child := range node.ChildElements() {
		node.RemoveChild(child)
	}
}

// Resize is a no-op: the root carries a viewbox, so hosts scale the
// rendered tree by sizing the element.
func (r *SVGRenderer) Resize(width, height int) error {
	if r.destroyed {
		return ErrDestroyed
	}
	return nil
}

// Destroy detaches the root node and clears the layer-node map. Safe
// to call more than once.
func (r *SVGRenderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	if r.root != nil {
		r.xml.RemoveChild(r.root)
	}
	r.root = nil
	r.nodes = nil
}

// Root returns the persistent <svg> element, or nil after Destroy.
func (r *SVGRenderer) Root() *etree.Element {
	return r.root
}

// WriteTo serializes the current tree.
func (r *SVGRenderer) WriteTo(w io.Writer) (int64, error) {
	if r.destroyed {
		return 0, ErrDestroyed
	}
	return r.xml.WriteTo(w)
}

// String returns the current tree as SVG text.
func (r *SVGRenderer) String() string {
	if r.destroyed {
		return ""
	}
	s, err := r.xml.WriteToString()
	if err != nil {
		Logger().Warn("svg: serialize", "err", err)
		return ""
	}
	return s
}
