package layout

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"dxv/wml"
)

// FontSpec selects a face for measurement and painting. Size is in device
// units.
type FontSpec struct {
	Family string
	Size   float64
	Bold   bool
}

// SpecFromSettings derives the measurement spec from resolved text settings.
// The settings are expected to have gone through the full cascade, so font
// and size are set; the fallbacks only guard against malformed input.
func SpecFromSettings(ts *wml.TextSettings, scale float64) FontSpec {
	spec := FontSpec{Family: "Calibri", Size: wml.HalfPointsToDevice(22, scale)}
	if ts.Font != nil {
		spec.Family = *ts.Font
	}
	if ts.FontSize != nil {
		spec.Size = wml.HalfPointsToDevice(float64(*ts.FontSize), scale)
	}
	if ts.Bold != nil {
		spec.Bold = *ts.Bold
	}
	return spec
}

// TextMeasurer is the text measurement capability layout depends on. It is
// treated as a pure function of (spec, text); implementations are free to
// memoize font metrics internally.
type TextMeasurer interface {
	Measure(spec FontSpec, text string) Size
	// LineSpacing is the vertical advance of one empty line in the face.
	LineSpacing(spec FontSpec) float64
}

// BasicMeasurer measures with the fixed 7x13 reference face scaled to the
// requested size. It produces deterministic geometry without loading platform
// fonts, which is exactly what layout needs; a shaping-aware measurer can be
// substituted by the presentation layer.
type BasicMeasurer struct {
	face *basicfont.Face
}

func NewBasicMeasurer() *BasicMeasurer {
	return &BasicMeasurer{face: basicfont.Face7x13}
}

func (m *BasicMeasurer) Measure(spec FontSpec, text string) Size {
	scale := spec.Size / float64(m.face.Height)
	advance := font.MeasureString(m.face, text)
	width := float64(advance.Round()) * scale
	if spec.Bold {
		// the reference face has no bold variant, approximate the wider strokes
		width *= 1.05
	}
	return Size{Width: width, Height: spec.Size}
}

func (m *BasicMeasurer) LineSpacing(spec FontSpec) float64 {
	return spec.Size
}
