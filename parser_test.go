package lottie

import (
	"errors"
	"strings"
	"testing"
)

const minimalDoc = `{
	"v": "5.7.4", "fr": 30, "ip": 0, "op": 60, "w": 100, "h": 100,
	"layers": []
}`

func TestParseMinimalDocument(t *testing.T) {
	doc, err := Parse([]byte(minimalDoc), FormatAuto)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.FrameRate != 30 || doc.Width != 100 || doc.OutPoint != 60 {
		t.Errorf("parsed document = %+v", doc)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		stage   string
	}{
		{"malformed json", `{"v": `, "json"},
		{"missing version", `{"fr": 30, "ip": 0, "op": 10, "w": 1, "h": 1, "layers": []}`, "document"},
		{"missing width", `{"v": "1", "fr": 30, "ip": 0, "op": 10, "h": 1, "layers": []}`, "document"},
		{"missing layers", `{"v": "1", "fr": 30, "ip": 0, "op": 10, "w": 1, "h": 1}`, "document"},
		{"layers not array", `{"v": "1", "fr": 30, "ip": 0, "op": 10, "w": 1, "h": 1, "layers": {}}`, "document"},
		{"non-numeric width", `{"v": "1", "fr": 30, "ip": 0, "op": 10, "w": "wide", "h": 1, "layers": []}`, "document"},
		{"zero frame rate", `{"v": "1", "fr": 0, "ip": 0, "op": 10, "w": 1, "h": 1, "layers": []}`, "document"},
		{"inverted range", `{"v": "1", "fr": 30, "ip": 10, "op": 10, "w": 1, "h": 1, "layers": []}`, "document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.payload), FormatAuto)
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T, want *ParseError", err)
			}
			if pe.Stage != tt.stage {
				t.Errorf("stage = %q, want %q", pe.Stage, tt.stage)
			}
		})
	}
}

func TestParseOversized(t *testing.T) {
	data := make([]byte, MaxDocumentBytes+1)
	_, err := Parse(data, FormatAuto)
	if !errors.Is(err, ErrOversized) {
		t.Fatalf("error = %v, want ErrOversized", err)
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error %T, want *ParseError", err)
	}
}

func TestParseRoutesNonArchiveToJSON(t *testing.T) {
	// Not a ZIP signature, not valid JSON: the failure must name the
	// JSON stage, not the container.
	_, err := Parse([]byte("hello world"), FormatAuto)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error %T, want *ParseError", err)
	}
	if pe.Stage != "json" {
		t.Errorf("stage = %q, want %q", pe.Stage, "json")
	}
}

func TestParseFormatHints(t *testing.T) {
	// A forced JSON hint must not sniff for the archive path.
	if _, err := Parse([]byte(minimalDoc), FormatJSON); err != nil {
		t.Errorf("Parse(FormatJSON): %v", err)
	}
	// A forced container hint on JSON bytes fails at the container.
	_, err := Parse([]byte(minimalDoc), FormatLottie)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error %T, want *ParseError", err)
	}
	if pe.Stage != "container" {
		t.Errorf("stage = %q, want %q", pe.Stage, "container")
	}
}

func TestParseLayerFields(t *testing.T) {
	payload := `{
		"v": "1", "fr": 30, "ip": 0, "op": 30, "w": 100, "h": 100,
		"layers": [{
			"ind": 2, "ty": 4, "nm": "sq",
			"ks": {"p": {"k": [50, 50]}, "o": {"k": 100}},
			"ip": 0, "op": 30, "st": 0,
			"shapes": [
				{"ty": "rc", "s": {"k": [20, 20]}, "p": {"k": [0, 0]}, "r": {"k": 0}},
				{"ty": "fl", "c": {"k": [1, 0, 0]}, "o": {"k": 100}}
			]
		}]
	}`
	doc, err := Parse([]byte(payload), FormatAuto)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Layers) != 1 {
		t.Fatalf("layer count = %d, want 1", len(doc.Layers))
	}
	l := &doc.Layers[0]
	if l.Type != LayerShape || l.Index != 2 || l.Name != "sq" {
		t.Errorf("layer = %+v", l)
	}
	if len(l.Shapes) != 2 {
		t.Fatalf("shape count = %d, want 2", len(l.Shapes))
	}
	if l.Shapes[0].Type != ShapeRect || l.Shapes[1].Type != ShapeFill {
		t.Errorf("shape types = %s, %s", l.Shapes[0].Type, l.Shapes[1].Type)
	}
	px, py := l.transform().PositionAt(0)
	if px != 50 || py != 50 {
		t.Errorf("position = (%g, %g), want (50, 50)", px, py)
	}
}

func TestParseErrorMessageNamesStage(t *testing.T) {
	_, err := Parse([]byte(`not json`), FormatAuto)
	if err == nil || !strings.Contains(err.Error(), "json") {
		t.Errorf("error %q does not identify the JSON stage", err)
	}
}
