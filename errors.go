package lottie

import (
	"errors"
	"fmt"
)

var (
	// ErrOversized reports an input payload above MaxDocumentBytes.
	ErrOversized = errors.New("lottie: document exceeds size ceiling")

	// ErrDestroyed reports a call on a renderer or player after Destroy.
	ErrDestroyed = errors.New("lottie: used after Destroy")

	// ErrNoEntry reports a .lottie container without an animation.json entry.
	ErrNoEntry = errors.New("lottie: container has no animation.json entry")

	// ErrCompressedEntry reports a .lottie entry stored with compression,
	// which this minimal container reader does not support.
	ErrCompressedEntry = errors.New("lottie: compressed container entries are not supported")
)

// ParseError reports a failure to turn raw bytes into a Document.
// Parse never returns a partially-valid Document alongside a ParseError.
type ParseError struct {
	// Stage identifies which decoding stage failed: "container",
	// "json", or "document" (structural validation).
	Stage string

	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("lottie: parse (%s): %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RenderError reports a failure while painting a single frame.
// It is recoverable: the renderer stays usable and the next frame may
// paint cleanly.
type RenderError struct {
	Frame float64
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("lottie: render frame %g: %v", e.Frame, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
