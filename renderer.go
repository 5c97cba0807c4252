package lottie

// Renderer is the capability both backends implement and the only
// surface the Player drives. Implementations are not safe for
// concurrent use; a Player serializes access for its own renderer.
type Renderer interface {
	// Render paints the scene as evaluated at the given frame.
	// Fractional frames are legal (subframe playback). A failed frame
	// returns a *RenderError and leaves the renderer usable.
	Render(frame float64) error

	// Resize adapts the output surface to new pixel dimensions and
	// repaints the current frame. Backends whose output scales
	// automatically (viewbox-based) treat this as a no-op.
	Resize(width, height int) error

	// Destroy releases the output surface. Destroy is idempotent;
	// Render calls after Destroy are no-ops.
	Destroy()
}

// RendererOption configures a renderer during creation.
type RendererOption func(*rendererOptions)

type rendererOptions struct {
	deviceScale float64
}

func defaultRendererOptions() rendererOptions {
	return rendererOptions{deviceScale: 1}
}

// WithDeviceScale sets the device pixel density factor applied to the
// raster surface, so a 2x display gets a surface twice the document's
// pixel size. The SVG backend ignores it. Values at or below zero
// fall back to 1.
func WithDeviceScale(scale float64) RendererOption {
	return func(o *rendererOptions) {
		if scale > 0 {
			o.deviceScale = scale
		}
	}
}
