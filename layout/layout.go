package layout

import (
	"dxv/wml"
)

// LineLayout is the running cursor state of the layout pass: the position on
// the current line, the tallest line-height candidate seen on it, the page
// content bounds in device units and the index of the page being filled.
// Positions are relative to the top left of the current page.
type LineLayout struct {
	lineHeight float64
	interLine  float64

	Cursor Position
	Page   int

	PageHorizontalStart float64
	PageHorizontalEnd   float64
	PageVerticalStart   float64
	PageVerticalEnd     float64
}

// NewLineLayout derives the content bounds from the section geometry and
// places the cursor at the top left of the first page.
func NewLineLayout(ps wml.PageSettings, scale, interLine float64) *LineLayout {
	l := &LineLayout{
		interLine:           interLine,
		PageHorizontalStart: wml.TwelfthsToDevice(float64(ps.Margins.Left), scale),
		PageHorizontalEnd:   wml.TwelfthsToDevice(float64(ps.Size.Width-ps.Margins.Right), scale),
		PageVerticalStart:   wml.TwelfthsToDevice(float64(ps.Margins.Top), scale),
		PageVerticalEnd:     wml.TwelfthsToDevice(float64(ps.Size.Height-ps.Margins.Bottom), scale),
	}
	l.Cursor = Position{X: l.PageHorizontalStart, Y: l.PageVerticalStart}
	return l
}

// AddLineHeightCandidate raises the current line height; a smaller candidate
// changes nothing.
func (l *LineLayout) AddLineHeightCandidate(height float64) {
	if height > l.lineHeight {
		l.lineHeight = height
	}
}

// LineHeight is the tallest candidate on the current line.
func (l *LineLayout) LineHeight() float64 {
	return l.lineHeight
}

// AvailableWidth is the horizontal space left on the current line.
func (l *LineLayout) AvailableWidth() float64 {
	return l.PageHorizontalEnd - l.Cursor.X
}

// NewLine moves the cursor to the start of the next line, flowing onto the
// next page when the line would start below the bottom margin.
func (l *LineLayout) NewLine() {
	l.Advance(l.lineHeight + l.interLine)
}

// Advance moves the cursor down by dy and back to the left margin, resetting
// the line height. Crossing the bottom content bound starts the next page.
func (l *LineLayout) Advance(dy float64) {
	y := l.Cursor.Y + dy
	if y >= l.PageVerticalEnd {
		l.Page++
		y = l.PageVerticalStart
	}
	l.Cursor = Position{X: l.PageHorizontalStart, Y: y}
	l.lineHeight = 0
}

// NextPage forces a page break regardless of the cursor position.
func (l *LineLayout) NextPage() {
	l.Page++
	l.Cursor = Position{X: l.PageHorizontalStart, Y: l.PageVerticalStart}
	l.lineHeight = 0
}

// ResetLineHeight clears the running candidate at a paragraph boundary.
func (l *LineLayout) ResetLineHeight() {
	l.lineHeight = 0
}
