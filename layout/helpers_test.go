package layout

import (
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// fixedMeasurer gives every rune the same advance, which makes wrap points
// exact in tests.
type fixedMeasurer struct {
	charWidth  float64
	lineHeight float64
}

func (m fixedMeasurer) Measure(_ FontSpec, text string) Size {
	return Size{Width: float64(len([]rune(text))) * m.charWidth, Height: m.lineHeight}
}

func (m fixedMeasurer) LineSpacing(FontSpec) float64 {
	return m.lineHeight
}

func testLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func mustDocument(t *testing.T, xml string) *etree.Document {
	t.Helper()

	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		ValidateInput: false,
		Permissive:    true,
	}
	if err := doc.ReadFromString(xml); err != nil {
		t.Fatalf("parse test xml: %v", err)
	}
	return doc
}

// testLine is a LineLayout with simple bounds for breaker tests.
func testLine(right float64) *LineLayout {
	l := &LineLayout{
		PageHorizontalStart: 0,
		PageHorizontalEnd:   right,
		PageVerticalStart:   0,
		PageVerticalEnd:     10000,
	}
	l.Cursor = Position{X: 0, Y: 0}
	return l
}

type emittedLine struct {
	text string
	pos  Position
	size Size
}

func collectLines(dst *[]emittedLine) LineFunc {
	return func(text string, pos Position, size Size) {
		*dst = append(*dst, emittedLine{text: text, pos: pos, size: size})
	}
}
