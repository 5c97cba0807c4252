package lottie

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Format is a parse-time hint for the container kind of a payload.
type Format int

const (
	// FormatAuto sniffs the payload: a ZIP magic routes to the .lottie
	// container path, anything else to plain JSON.
	FormatAuto Format = iota

	// FormatJSON forces the plain JSON path.
	FormatJSON

	// FormatLottie forces the .lottie ZIP container path.
	FormatLottie
)

// String returns a human-readable name for the format hint.
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatJSON:
		return "json"
	case FormatLottie:
		return "lottie"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// MaxDocumentBytes is the input size ceiling. Parse rejects larger
// payloads before doing any work so a hostile document cannot balloon
// memory.
const MaxDocumentBytes = 50 << 20

// Parse decodes an animation payload into a Document.
//
// With FormatAuto the payload is routed by its first four bytes: the
// ZIP local-header magic selects the .lottie container path, anything
// else is decoded as JSON directly. Parse either returns a fully
// validated Document or a *ParseError; it never returns a partially
// valid Document.
func Parse(data []byte, format Format) (*Document, error) {
	if len(data) > MaxDocumentBytes {
		return nil, &ParseError{Stage: "document", Err: fmt.Errorf("%w: %d bytes", ErrOversized, len(data))}
	}

	useContainer := false
	switch format {
	case FormatLottie:
		useContainer = true
	case FormatJSON:
		useContainer = false
	case FormatAuto:
		useContainer = isZipContainer(data)
	default:
		return nil, &ParseError{Stage: "document", Err: fmt.Errorf("unknown format hint %d", int(format))}
	}

	if useContainer {
		inner, err := extractContainerEntry(data)
		if err != nil {
			return nil, &ParseError{Stage: "container", Err: err}
		}
		data = inner
	}
	return parseJSON(data)
}

// requiredFields mirrors the document object only deeply enough to
// check field presence before the full decode.
type requiredFields struct {
	V      *string         `json:"v"`
	FR     *float64        `json:"fr"`
	W      json.RawMessage `json:"w"`
	H      json.RawMessage `json:"h"`
	Layers json.RawMessage `json:"layers"`
}

func parseJSON(data []byte) (*Document, error) {
	var req requiredFields
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &ParseError{Stage: "json", Err: err}
	}

	missing := ""
	switch {
	case req.V == nil:
		missing = "v"
	case req.FR == nil:
		missing = "fr"
	case len(req.W) == 0:
		missing = "w"
	case len(req.H) == 0:
		missing = "h"
	case len(req.Layers) == 0:
		missing = "layers"
	}
	if missing != "" {
		return nil, &ParseError{Stage: "document", Err: fmt.Errorf("missing required field %q", missing)}
	}
	if !jsonStartsWith(req.Layers, '[') {
		return nil, &ParseError{Stage: "document", Err: errors.New("layers is not an array")}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		// Reached on type mismatches such as non-numeric w/h.
		return nil, &ParseError{Stage: "document", Err: err}
	}
	if doc.FrameRate <= 0 {
		return nil, &ParseError{Stage: "document", Err: fmt.Errorf("frame rate %g is not positive", doc.FrameRate)}
	}
	if doc.OutPoint <= doc.InPoint {
		return nil, &ParseError{Stage: "document", Err: fmt.Errorf("out point %g not after in point %g", doc.OutPoint, doc.InPoint)}
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return nil, &ParseError{Stage: "document", Err: fmt.Errorf("size %gx%g is not positive", doc.Width, doc.Height)}
	}
	return &doc, nil
}

// jsonStartsWith reports whether the first non-space byte of a raw
// JSON payload is c.
func jsonStartsWith(raw json.RawMessage, c byte) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b == c
		}
	}
	return false
}
