// Package lottie renders Lottie/bodymovin vector animations.
//
// # Overview
//
// lottie parses a Lottie animation document (plain JSON or the
// .lottie ZIP container), evaluates its time-keyed properties frame by
// frame, and paints the result through one of two interchangeable
// backends: an immediate-mode raster backend built on gogpu/gg, and a
// retained-mode SVG node-tree backend. A Player drives either backend
// with play/pause/seek/segment/speed/direction transport controls.
//
// # Quick Start
//
//	import "github.com/gogpu/lottie"
//
//	data, _ := os.ReadFile("animation.json")
//	doc, err := lottie.Parse(data, lottie.FormatAuto)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r := lottie.NewRasterRenderer(doc)
//	r.Render(0)
//	r.SavePNG("frame0.png")
//
//	p := lottie.NewPlayer(doc, r, lottie.WithLoop(true))
//	p.Play()
//
// # Backends
//
// The raster backend walks the layer tree on every frame and paints
// onto a gg.Context; nothing persists between frames. The SVG backend
// builds one element per layer up front and mutates attributes per
// frame; it suits hosts that composite a DOM-like node tree. Both
// backends evaluate properties through the same keyframe functions, so
// they agree on the value of every animated property at every frame.
//
// # Limitations
//
// Text layers and raster image layers are not rendered; they log a
// diagnostic and paint nothing. Precompositions resolve one level of
// nesting. Keyframe interpolation is linear in frame time; easing
// curves present in a document are ignored.
package lottie
