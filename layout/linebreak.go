package layout

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/words"

	"dxv/wml"
)

// BreakResult tells whether the whole string was placed on the line it
// started on.
type BreakResult int

const (
	// EndReached means the text ran out before the line did.
	EndReached BreakResult = iota
	// RestWasCutOff means at least one wrap happened mid-string.
	RestWasCutOff
)

// LineFunc receives each positioned line segment as it is finalized.
type LineFunc func(text string, pos Position, size Size)

// segment is one word-boundary unit of the input; whitespace runs are their
// own units.
type segment struct {
	start      int
	end        int
	whitespace bool
}

func splitWords(text string) []segment {
	var segs []segment
	off := 0
	tokens := words.FromString(text)
	for tokens.Next() {
		tok := tokens.Value()
		segs = append(segs, segment{
			start:      off,
			end:        off + len(tok),
			whitespace: strings.TrimSpace(tok) == "",
		})
		off += len(tok)
	}
	return segs
}

// BreakText greedily wraps text starting at the current cursor, emitting
// positioned line segments and growing the line-height candidate. Every word
// ends up on exactly one line; a word wider than the whole content width is
// placed anyway rather than split. The cursor is left after the last emitted
// segment.
func BreakText(text string, ll *LineLayout, justify wml.Justification, spec FontSpec, m TextMeasurer, emit LineFunc) BreakResult {
	segs := splitWords(text)
	if len(segs) == 0 {
		return EndReached
	}

	result := EndReached
	start := 0
	for start < len(segs) {
		if ll.AvailableWidth() < 0 {
			ll.NewLine()
			result = RestWasCutOff
		}

		lineEnd, size, next := fitLine(text, segs, start, ll, spec, m)
		if next == start {
			// the first word does not fit after the current cursor but would
			// fit a fresh line: wrap and rescan the same segment. The rescan
			// starts at the left margin, so it always makes progress.
			if ll.LineHeight() == 0 {
				ll.AddLineHeightCandidate(m.LineSpacing(spec))
			}
			ll.NewLine()
			result = RestWasCutOff
			continue
		}
		pos := placeLine(ll, justify, size.Width)
		emit(text[segs[start].start:lineEnd], pos, size)

		ll.AddLineHeightCandidate(size.Height)
		ll.Cursor.X = pos.X + size.Width

		if next < len(segs) {
			ll.NewLine()
			result = RestWasCutOff
		}
		start = next
	}
	return result
}

// fitLine grows a candidate from the start segment one word boundary at a
// time until the next unit would overflow the line. It returns the byte end
// of the finished line, its measured size, and the index of the segment the
// next line starts with. Whitespace that triggered the break is consumed but
// dropped. A first unit that overflows only because the cursor sits mid-line
// reports no progress (next == start) so the caller wraps before rescanning;
// a word no line could hold is placed whole as accepted overflow.
func fitLine(text string, segs []segment, start int, ll *LineLayout, spec FontSpec, m TextMeasurer) (lineEnd int, size Size, next int) {
	lineStart := segs[start].start

	for i := start; i < len(segs); i++ {
		cand := text[lineStart:segs[i].end]
		sz := m.Measure(spec, cand)
		if ll.Cursor.X+sz.Width > ll.PageHorizontalEnd {
			if i == start {
				if ll.Cursor.X > ll.PageHorizontalStart &&
					ll.PageHorizontalStart+sz.Width <= ll.PageHorizontalEnd {
					return lineStart, Size{}, start
				}
				return segs[i].end, sz, i + 1
			}
			if segs[i].whitespace {
				return lineEnd, size, i + 1
			}
			return lineEnd, size, i
		}
		lineEnd, size = segs[i].end, sz
	}
	return lineEnd, size, len(segs)
}

// placeLine positions a finished line within the page's horizontal bounds
// according to the paragraph justification. Start-justified lines continue
// from the cursor so consecutive runs share a line.
func placeLine(ll *LineLayout, justify wml.Justification, width float64) Position {
	x := ll.Cursor.X
	switch justify {
	case wml.JustifyCenter:
		x = ll.PageHorizontalStart + (ll.PageHorizontalEnd-ll.PageHorizontalStart-width)/2
	case wml.JustifyEnd:
		x = ll.PageHorizontalEnd - width
	}
	return Position{X: x, Y: ll.Cursor.Y}
}
