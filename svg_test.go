package lottie

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
)

func TestSVGRoot(t *testing.T) {
	doc := parseRedSquare(t)
	r := NewSVGRenderer(doc)
	defer r.Destroy()

	root := r.Root()
	if root == nil {
		t.Fatal("Root returned nil")
	}
	tests := []struct {
		attr string
		want string
	}{
		{"xmlns", "http://www.w3.org/2000/svg"},
		{"width", "100"},
		{"height", "100"},
		{"viewBox", "0 0 100 100"},
	}
	for _, tt := range tests {
		if got := root.SelectAttrValue(tt.attr, ""); got != tt.want {
			t.Errorf("root %s = %q, want %q", tt.attr, got, tt.want)
		}
	}
	if got := len(root.SelectElements("g")); got != 1 {
		t.Errorf("layer node count = %d, want 1", got)
	}
}

func layerNode(t *testing.T, r *SVGRenderer) *etree.Element {
	t.Helper()
	node := r.Root().SelectElement("g")
	if node == nil {
		t.Fatal("no layer <g> under root")
	}
	return node
}

func TestSVGRedSquare(t *testing.T) {
	doc := parseRedSquare(t)
	r := NewSVGRenderer(doc)
	defer r.Destroy()

	if err := r.Render(0); err != nil {
		t.Fatalf("Render(0): %v", err)
	}
	layer := layerNode(t, r)
	if got := layer.SelectAttrValue("display", ""); got != "" {
		t.Fatalf("layer display = %q, want unset", got)
	}
	if got := layer.SelectAttrValue("transform", ""); got != "translate(50 50)" {
		t.Errorf("layer transform = %q, want %q", got, "translate(50 50)")
	}

	group := layer.SelectElement("g")
	if group == nil {
		t.Fatal("no shape group under layer node")
	}
	rect := group.SelectElement("rect")
	if rect == nil {
		t.Fatal("no <rect> in shape group")
	}
	tests := []struct {
		attr string
		want string
	}{
		{"x", "-10"},
		{"y", "-10"},
		{"width", "20"},
		{"height", "20"},
		{"fill", "#ff0000"},
	}
	for _, tt := range tests {
		if got := rect.SelectAttrValue(tt.attr, ""); got != tt.want {
			t.Errorf("rect %s = %q, want %q", tt.attr, got, tt.want)
		}
	}
}

func TestSVGHiddenOutOfRange(t *testing.T) {
	doc := parseRedSquare(t)
	r := NewSVGRenderer(doc)
	defer r.Destroy()

	// Frame 30 is outside the layer window [0, 30).
	if err := r.Render(30); err != nil {
		t.Fatalf("Render(30): %v", err)
	}
	if got := layerNode(t, r).SelectAttrValue("display", ""); got != "none" {
		t.Errorf("layer display at frame 30 = %q, want %q", got, "none")
	}

	// Coming back into range clears the flag and rebuilds children.
	if err := r.Render(10); err != nil {
		t.Fatalf("Render(10): %v", err)
	}
	layer := layerNode(t, r)
	if got := layer.SelectAttrValue("display", ""); got != "" {
		t.Errorf("layer display at frame 10 = %q, want unset", got)
	}
	if layer.SelectElement("g") == nil {
		t.Error("shape group missing after re-entering layer window")
	}
}

func TestSVGNodesPersistAcrossFrames(t *testing.T) {
	doc := parseRedSquare(t)
	r := NewSVGRenderer(doc)
	defer r.Destroy()

	before := layerNode(t, r)
	for _, frame := range []float64{0, 10, 29, 5} {
		if err := r.Render(frame); err != nil {
			t.Fatalf("Render(%v): %v", frame, err)
		}
	}
	if layerNode(t, r) != before {
		t.Error("layer node was replaced; retained nodes must persist")
	}
}

func TestSVGStrokeAttrs(t *testing.T) {
	doc := parseRedSquare(t)
	doc.Layers[0].Shapes = append(doc.Layers[0].Shapes, Shape{
		Type:        ShapeStroke,
		Color:       &Animatable{Static: Value{0, 0, 1}},
		StrokeWidth: &Animatable{Static: Value{3}},
		LineCap:     2,
		LineJoin:    2,
		MiterLimit:  4,
	})
	r := NewSVGRenderer(doc)
	defer r.Destroy()

	if err := r.Render(0); err != nil {
		t.Fatalf("Render: %v", err)
	}
	rect := layerNode(t, r).FindElement("g/rect")
	if rect == nil {
		t.Fatal("no <rect> in shape group")
	}
	tests := []struct {
		attr string
		want string
	}{
		{"stroke", "#0000ff"},
		{"stroke-width", "3"},
		{"stroke-linecap", "round"},
		{"stroke-linejoin", "round"},
		{"stroke-miterlimit", "4"},
	}
	for _, tt := range tests {
		if got := rect.SelectAttrValue(tt.attr, ""); got != tt.want {
			t.Errorf("rect %s = %q, want %q", tt.attr, got, tt.want)
		}
	}
}

func TestSVGGroupTransformsAccumulate(t *testing.T) {
	doc := parseRedSquare(t)
	doc.Layers[0].Shapes = append(doc.Layers[0].Shapes,
		Shape{Type: ShapeTransform, Position: &Animatable{Static: Value{10, 0}}},
		Shape{Type: ShapeTransform, Position: &Animatable{Static: Value{15, 0}}},
	)
	r := NewSVGRenderer(doc)
	defer r.Destroy()

	if err := r.Render(0); err != nil {
		t.Fatalf("Render: %v", err)
	}
	group := layerNode(t, r).SelectElement("g")
	if group == nil {
		t.Fatal("no shape group under layer node")
	}
	want := "translate(10 0) translate(15 0)"
	if got := group.SelectAttrValue("transform", ""); got != want {
		t.Errorf("group transform = %q, want %q", got, want)
	}
}

func TestSVGGeometryWithoutPaint(t *testing.T) {
	doc := parseRedSquare(t)
	doc.Layers[0].Shapes = doc.Layers[0].Shapes[:1] // drop the fill
	r := NewSVGRenderer(doc)
	defer r.Destroy()

	if err := r.Render(0); err != nil {
		t.Fatalf("Render: %v", err)
	}
	rect := layerNode(t, r).FindElement("g/rect")
	if rect == nil {
		t.Fatal("no <rect> in shape group")
	}
	if got := rect.SelectAttrValue("fill", ""); got != "none" {
		t.Errorf("unpainted geometry fill = %q, want %q", got, "none")
	}
}

func TestSVGNestedGroupInheritsPaint(t *testing.T) {
	doc := parseRedSquare(t)
	// Wrap the rect in a nested group alongside the outer fill.
	outer := doc.Layers[0].Shapes
	doc.Layers[0].Shapes = []Shape{
		{Type: ShapeGroup, Shapes: []Shape{outer[0]}},
		outer[1],
	}
	r := NewSVGRenderer(doc)
	defer r.Destroy()

	if err := r.Render(0); err != nil {
		t.Fatalf("Render: %v", err)
	}
	rect := layerNode(t, r).FindElement("g/rect")
	if rect == nil {
		t.Fatal("no <rect> in nested group")
	}
	if got := rect.SelectAttrValue("fill", ""); got != "#ff0000" {
		t.Errorf("nested rect fill = %q, want inherited %q", got, "#ff0000")
	}
}

func TestSVGSolidLayer(t *testing.T) {
	doc := &Document{
		Version: "1", FrameRate: 30, OutPoint: 10, Width: 40, Height: 40,
		Layers: []Layer{{
			Type: LayerSolid, OutPoint: 10,
			Width: 40, Height: 40, SolidColor: "#00ff00",
		}},
	}
	r := NewSVGRenderer(doc)
	defer r.Destroy()

	if err := r.Render(0); err != nil {
		t.Fatalf("Render: %v", err)
	}
	rect := layerNode(t, r).SelectElement("rect")
	if rect == nil {
		t.Fatal("no <rect> for solid layer")
	}
	if got := rect.SelectAttrValue("fill", ""); got != "#00ff00" {
		t.Errorf("solid fill = %q, want %q", got, "#00ff00")
	}
}

func TestSVGPrecompOneLevel(t *testing.T) {
	doc := parseRedSquare(t)
	doc.Assets = []Asset{{ID: "comp_0", Layers: doc.Layers}}
	doc.Layers = []Layer{{
		Type: LayerPrecomp, RefID: "comp_0", OutPoint: 30,
		Width: 100, Height: 100,
	}}
	r := NewSVGRenderer(doc)
	defer r.Destroy()

	if err := r.Render(0); err != nil {
		t.Fatalf("Render: %v", err)
	}
	rect := layerNode(t, r).FindElement("g/g/rect")
	if rect == nil {
		t.Fatal("no <rect> under precomp nesting")
	}
	if got := rect.SelectAttrValue("fill", ""); got != "#ff0000" {
		t.Errorf("precomp rect fill = %q, want %q", got, "#ff0000")
	}
}

func TestSVGStringOutput(t *testing.T) {
	doc := parseRedSquare(t)
	r := NewSVGRenderer(doc)
	defer r.Destroy()

	if err := r.Render(0); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := r.String()
	for _, want := range []string{"<svg", "viewBox=\"0 0 100 100\"", "<rect", "#ff0000"} {
		if !strings.Contains(out, want) {
			t.Errorf("serialized output missing %q", want)
		}
	}
}

func TestSVGDestroy(t *testing.T) {
	doc := parseRedSquare(t)
	r := NewSVGRenderer(doc)
	r.Destroy()
	r.Destroy() // idempotent

	if r.Root() != nil {
		t.Error("Root after Destroy is not nil")
	}
	if err := r.Render(0); err != nil {
		t.Errorf("Render after Destroy = %v, want silent no-op", err)
	}
	if got := r.String(); got != "" {
		t.Errorf("String after Destroy = %q, want empty", got)
	}
}
