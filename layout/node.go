// Package layout converts a loaded document into a paginated, positioned
// node tree that a presentation layer can paint and hit-test.
package layout

import (
	"go.uber.org/zap"

	"dxv/docpkg"
	"dxv/wml"
)

// NodeKind is the closed set of node types the tree can contain.
type NodeKind int

const (
	KindDocument NodeKind = iota
	KindParagraph
	KindTextRun
	KindTextPart
	KindHyperlink
	// KindNumberingParent is an invisible parent holding the synthesized
	// numbering text, so the level's text settings can layer over the
	// paragraph's without affecting body runs.
	KindNumberingParent
	KindStructuredDocumentTag
	KindDrawing
	KindBreak
	KindTable
	KindTableRow
	KindTableCell
)

var nodeKindNames = map[NodeKind]string{
	KindDocument:              "Document",
	KindParagraph:             "Paragraph",
	KindTextRun:               "TextRun",
	KindTextPart:              "TextPart",
	KindHyperlink:             "Hyperlink",
	KindNumberingParent:       "NumberingParent",
	KindStructuredDocumentTag: "StructuredDocumentTag",
	KindDrawing:               "Drawing",
	KindBreak:                 "Break",
	KindTable:                 "Table",
	KindTableRow:              "TableRow",
	KindTableCell:             "TableCell",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Position in device units, relative to the top left of the node's first
// page.
type Position struct {
	X float64
	Y float64
}

// Size in device units.
type Size struct {
	Width  float64
	Height float64
}

// Rect is an axis-aligned box in device units.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

func RectFromPositionAndSize(pos Position, size Size) Rect {
	return Rect{
		Left:   pos.X,
		Top:    pos.Y,
		Right:  pos.X + size.Width,
		Bottom: pos.Y + size.Height,
	}
}

// ContainsInclusive reports whether the point lies inside the rectangle,
// edges included.
func (r Rect) ContainsInclusive(p Position) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Union grows the rectangle to cover other. A zero rectangle is treated as
// empty and simply replaced.
func (r Rect) Union(other Rect) Rect {
	if r == (Rect{}) {
		return other
	}
	if other == (Rect{}) {
		return r
	}
	if other.Left < r.Left {
		r.Left = other.Left
	}
	if other.Top < r.Top {
		r.Top = other.Top
	}
	if other.Right > r.Right {
		r.Right = other.Right
	}
	if other.Bottom > r.Bottom {
		r.Bottom = other.Bottom
	}
	return r
}

// BreakType distinguishes the explicit break elements a run can contain.
type BreakType int

const (
	BreakTextWrapping BreakType = iota
	BreakColumn
	BreakPage
)

func (b BreakType) String() string {
	switch b {
	case BreakColumn:
		return "column"
	case BreakPage:
		return "page"
	default:
		return "textWrapping"
	}
}

// ParseBreakType maps a br type attribute to its kind. An absent value means
// a plain line break; unknown values degrade to a line break with a warning.
func ParseBreakType(val string, log *zap.Logger) BreakType {
	switch val {
	case "", "textWrapping":
		return BreakTextWrapping
	case "column":
		return BreakColumn
	case "page":
		return BreakPage
	default:
		log.Warn("Unknown break type, treating as line break", zap.String("type", val))
		return BreakTextWrapping
	}
}

// Node is one element of the finished tree. The tree is rebuilt from scratch
// on every load; node identity is not stable across rebuilds.
type Node struct {
	Kind     NodeKind
	Children []*Node

	// Inclusive page range the node's geometry spans, from zero. Content
	// straddling a page boundary is not split, so the two stay equal in
	// practice; the range form is reserved.
	PageFirst int
	PageLast  int

	Position Position
	Size     Size
	Settings wml.TextSettings

	Hovered bool

	// Kind-specific payloads.
	Text         string               // TextPart
	Relationship *docpkg.Relationship // Hyperlink
	Break        BreakType            // Break
}

// NewNode creates a detached node of the given kind.
func NewNode(kind NodeKind) *Node {
	return &Node{Kind: kind}
}

// AppendChild creates a child inheriting the parent's settings, position and
// current page, mirroring how the tree is grown during layout.
func (n *Node) AppendChild(kind NodeKind) *Node {
	child := &Node{
		Kind:      kind,
		PageFirst: n.PageLast,
		PageLast:  n.PageLast,
		Position:  n.Position,
		Settings:  *n.Settings.Clone(),
	}
	n.Children = append(n.Children, child)
	return child
}

// WalkDepth runs fn on the node and all descendants, parents first.
func (n *Node) WalkDepth(fn func(node *Node, depth int)) {
	n.walkDepth(fn, 0)
}

func (n *Node) walkDepth(fn func(node *Node, depth int), depth int) {
	fn(n, depth)
	for _, child := range n.Children {
		child.walkDepth(fn, depth+1)
	}
}

// HitTest recurses depth first, children before self. A TextPart leaf matches
// when its box contains the point, edges inclusive. On the first match the
// callback fires for the leaf and then for every enclosing node on the way
// back up, so ancestors like hyperlinks see the event too. Returns false
// without calling the callback when nothing matches.
func (n *Node) HitTest(p Position, callback func(*Node)) bool {
	for _, child := range n.Children {
		if child.HitTest(p, callback) {
			callback(n)
			return true
		}
	}

	if n.Kind == KindTextPart {
		if RectFromPositionAndSize(n.Position, n.Size).ContainsInclusive(p) {
			callback(n)
			return true
		}
	}
	return false
}

// UpdatePageLast recomputes page_last bottom-up from the children and returns
// the subtree's last page.
func (n *Node) UpdatePageLast() int {
	last := n.PageLast
	for _, child := range n.Children {
		if childLast := child.UpdatePageLast(); childLast > last {
			last = childLast
		}
	}
	n.ProposeLastPage(last)
	return last
}

// ProposeLastPage raises page_last, never lowers it.
func (n *Node) ProposeLastPage(page int) {
	if n.PageLast < page {
		n.PageLast = page
	}
}
