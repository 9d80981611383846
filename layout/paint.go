package layout

import (
	"dxv/wml"
)

// Painter is the drawing surface layout paints through while it positions
// nodes. Layout and paint are interleaved rather than being a separate
// retained-mode pass.
type Painter interface {
	PaintRect(color wml.Color, rect Rect)
	PaintText(spec FontSpec, color wml.Color, pos Position, text string)
	BeginClipRegion(rect Rect)
	EndClipRegion()
}

// NopPainter produces geometry only.
type NopPainter struct{}

func (NopPainter) PaintRect(wml.Color, Rect)                        {}
func (NopPainter) PaintText(FontSpec, wml.Color, Position, string)  {}
func (NopPainter) BeginClipRegion(Rect)                             {}
func (NopPainter) EndClipRegion()                                   {}

// PaintedText is one recorded text draw.
type PaintedText struct {
	Text     string
	Position Position
	Color    wml.Color
	Spec     FontSpec
}

// PaintedRect is one recorded rectangle fill.
type PaintedRect struct {
	Rect  Rect
	Color wml.Color
}

// RecordingPainter collects draw calls instead of rendering them. Used by
// the page dump and by tests.
type RecordingPainter struct {
	Texts []PaintedText
	Rects []PaintedRect
}

func (p *RecordingPainter) PaintRect(color wml.Color, rect Rect) {
	p.Rects = append(p.Rects, PaintedRect{Rect: rect, Color: color})
}

func (p *RecordingPainter) PaintText(spec FontSpec, color wml.Color, pos Position, text string) {
	p.Texts = append(p.Texts, PaintedText{Text: text, Position: pos, Color: color, Spec: spec})
}

func (p *RecordingPainter) BeginClipRegion(Rect) {}
func (p *RecordingPainter) EndClipRegion()       {}
