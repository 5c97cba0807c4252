package lottie

import (
	"image"
	"testing"
)

// redSquareDoc is a 100x100 composition with one shape layer: a red
// 20x20 square centered at (50,50), active for frames [0, 30).
const redSquareDoc = `{
	"v": "1", "fr": 30, "ip": 0, "op": 30, "w": 100, "h": 100,
	"layers": [{
		"ind": 0, "ty": 4, "nm": "sq",
		"ks": {
			"p": {"k": [50, 50]}, "s": {"k": [100, 100]}, "r": {"k": 0},
			"o": {"k": 100}, "a": {"k": [0, 0]}
		},
		"ip": 0, "op": 30, "st": 0,
		"shapes": [
			{"ty": "rc", "s": {"k": [20, 20]}, "p": {"k": [0, 0]}, "r": {"k": 0}},
			{"ty": "fl", "c": {"k": [1, 0, 0]}, "o": {"k": 100}}
		]
	}]
}`

func parseRedSquare(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse([]byte(redSquareDoc), FormatAuto)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func rgbaAt(img image.Image, x, y int) (r, g, b, a uint32) {
	r, g, b, a = img.At(x, y).RGBA()
	return r >> 8, g >> 8, b >> 8, a >> 8
}

func TestRasterRedSquare(t *testing.T) {
	doc := parseRedSquare(t)
	r := NewRasterRenderer(doc)
	defer r.Destroy()

	if err := r.Render(0); err != nil {
		t.Fatalf("Render(0): %v", err)
	}
	img := r.Image()

	// Center of the square is opaque red.
	cr, cg, cb, ca := rgbaAt(img, 50, 50)
	if cr < 200 || cg > 50 || cb > 50 || ca < 200 {
		t.Errorf("center pixel = (%d, %d, %d, %d), want opaque red", cr, cg, cb, ca)
	}
	// Inside the square near its edge.
	cr, _, _, ca = rgbaAt(img, 42, 50)
	if cr < 200 || ca < 200 {
		t.Errorf("pixel inside square = (r=%d, a=%d), want opaque red", cr, ca)
	}
	// Outside the square is blank.
	_, _, _, ca = rgbaAt(img, 30, 50)
	if ca != 0 {
		t.Errorf("pixel outside square has alpha %d, want 0", ca)
	}
}

func TestRasterLayerOutOfRange(t *testing.T) {
	doc := parseRedSquare(t)
	r := NewRasterRenderer(doc)
	defer r.Destroy()

	// The layer window is [0, 30): at frame 30 nothing paints.
	if err := r.Render(30); err != nil {
		t.Fatalf("Render(30): %v", err)
	}
	_, _, _, a := rgbaAt(r.Image(), 50, 50)
	if a != 0 {
		t.Errorf("center pixel alpha at frame 30 = %d, want 0", a)
	}
}

func TestRasterLayerOpacity(t *testing.T) {
	doc := parseRedSquare(t)
	doc.Layers[0].Transform.Opacity = &Animatable{Static: Value{50}}
	r := NewRasterRenderer(doc)
	defer r.Destroy()

	if err := r.Render(0); err != nil {
		t.Fatalf("Render: %v", err)
	}
	_, _, _, a := rgbaAt(r.Image(), 50, 50)
	if a < 100 || a > 155 {
		t.Errorf("center pixel alpha = %d, want roughly half (128)", a)
	}
}

func TestRasterAnimatedPosition(t *testing.T) {
	doc := parseRedSquare(t)
	doc.Layers[0].Transform.Position = &Animatable{Keyframes: []Keyframe{
		{Time: 0, Value: Value{20, 50}},
		{Time: 20, Value: Value{80, 50}},
	}}
	r := NewRasterRenderer(doc)
	defer r.Destroy()

	// At frame 10 the square center has interpolated to (50, 50).
	if err := r.Render(10); err != nil {
		t.Fatalf("Render: %v", err)
	}
	cr, _, _, ca := rgbaAt(r.Image(), 50, 50)
	if cr < 200 || ca < 200 {
		t.Errorf("center pixel = (r=%d, a=%d), want opaque red at midpoint", cr, ca)
	}
	_, _, _, a := rgbaAt(r.Image(), 20, 50)
	if a != 0 {
		t.Errorf("start position still painted at frame 10 (alpha %d)", a)
	}
}

func TestRasterGroupTransformsAccumulate(t *testing.T) {
	doc := parseRedSquare(t)
	// Two tr entries in one scope compose: 25 from the layer plus
	// 10 + 15 from the transforms lands the square center at (50, 50).
	doc.Layers[0].Transform.Position = &Animatable{Static: Value{25, 50}}
	doc.Layers[0].Shapes = append(doc.Layers[0].Shapes,
		Shape{Type: ShapeTransform, Position: &Animatable{Static: Value{10, 0}}},
		Shape{Type: ShapeTransform, Position: &Animatable{Static: Value{15, 0}}},
	)
	r := NewRasterRenderer(doc)
	defer r.Destroy()

	if err := r.Render(0); err != nil {
		t.Fatalf("Render: %v", err)
	}
	cr, _, _, ca := rgbaAt(r.Image(), 50, 50)
	if cr < 200 || ca < 200 {
		t.Errorf("center pixel = (r=%d, a=%d), want opaque red at composed offset", cr, ca)
	}
	// A single applied entry would leave the square 15 units short
	// and cover x=30; the composed offset must not.
	_, _, _, a := rgbaAt(r.Image(), 30, 50)
	if a != 0 {
		t.Errorf("square painted at partial offset (alpha %d at x=30)", a)
	}
}

func TestRasterSolidLayer(t *testing.T) {
	doc := &Document{
		Version: "1", FrameRate: 30, OutPoint: 10, Width: 40, Height: 40,
		Layers: []Layer{{
			Type: LayerSolid, OutPoint: 10,
			Width: 40, Height: 40, SolidColor: "#00ff00",
		}},
	}
	r := NewRasterRenderer(doc)
	defer r.Destroy()

	if err := r.Render(0); err != nil {
		t.Fatalf("Render: %v", err)
	}
	_, g, _, a := rgbaAt(r.Image(), 20, 20)
	if g < 200 || a < 200 {
		t.Errorf("solid pixel = (g=%d, a=%d), want opaque green", g, a)
	}
}

func TestRasterPrecompOneLevel(t *testing.T) {
	doc := parseRedSquare(t)
	// Move the square into an asset and reference it from the layer.
	doc.Assets = []Asset{{ID: "comp_0", Layers: doc.Layers}}
	doc.Layers = []Layer{{
		Type: LayerPrecomp, RefID: "comp_0", OutPoint: 30,
		Width: 100, Height: 100,
	}}
	r := NewRasterRenderer(doc)
	defer r.Destroy()

	if err := r.Render(0); err != nil {
		t.Fatalf("Render: %v", err)
	}
	cr, _, _, ca := rgbaAt(r.Image(), 50, 50)
	if cr < 200 || ca < 200 {
		t.Errorf("precomp center pixel = (r=%d, a=%d), want opaque red", cr, ca)
	}
}

func TestRasterImageLayerIsNoop(t *testing.T) {
	doc := &Document{
		Version: "1", FrameRate: 30, OutPoint: 10, Width: 10, Height: 10,
		Layers: []Layer{{Type: LayerImage, RefID: "img_0", OutPoint: 10}},
	}
	r := NewRasterRenderer(doc)
	defer r.Destroy()
	if err := r.Render(0); err != nil {
		t.Fatalf("image layer must not fail the frame: %v", err)
	}
}

func TestRasterDeviceScale(t *testing.T) {
	doc := parseRedSquare(t)
	r := NewRasterRenderer(doc, WithDeviceScale(2))
	defer r.Destroy()

	img := r.Image()
	if w := img.Bounds().Dx(); w != 200 {
		t.Fatalf("surface width = %d, want 200", w)
	}
	if err := r.Render(0); err != nil {
		t.Fatalf("Render: %v", err)
	}
	// Composition coordinates are scaled: (50,50) maps to (100,100).
	cr, _, _, ca := rgbaAt(r.Image(), 100, 100)
	if cr < 200 || ca < 200 {
		t.Errorf("scaled center pixel = (r=%d, a=%d), want opaque red", cr, ca)
	}
}

func TestRasterRenderAfterDestroy(t *testing.T) {
	doc := parseRedSquare(t)
	r := NewRasterRenderer(doc)
	r.Destroy()
	r.Destroy() // idempotent
	if err := r.Render(0); err != nil {
		t.Errorf("Render after Destroy = %v, want silent no-op", err)
	}
	if img := r.Image(); img != nil {
		t.Error("Image after Destroy is not nil")
	}
}

func TestRasterResizeRepaints(t *testing.T) {
	doc := parseRedSquare(t)
	r := NewRasterRenderer(doc)
	defer r.Destroy()

	if err := r.Render(0); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := r.Resize(200, 200); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	img := r.Image()
	if w := img.Bounds().Dx(); w != 200 {
		t.Fatalf("surface width after resize = %d, want 200", w)
	}
	cr, _, _, ca := rgbaAt(img, 100, 100)
	if cr < 200 || ca < 200 {
		t.Errorf("repainted pixel = (r=%d, a=%d), want opaque red", cr, ca)
	}
}
