package render

import (
	"dxv/config"
	"dxv/layout"
	"dxv/utils/debug"
)

// dumpTree returns a readable tree of a finished layout pass. It exists
// solely for manual inspection during debugging.
func dumpTree(res *layout.Result, mode config.TreeDumpMode) string {
	if res == nil || res.Root == nil {
		return "<nil layout>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Layout: %d page(s)", len(res.Surfaces))
	dumpNode(tw, res.Root, 0, mode)
	return tw.String()
}

func dumpNode(tw *debug.TreeWriter, n *layout.Node, depth int, mode config.TreeDumpMode) {
	if n.PageFirst == n.PageLast {
		tw.Line(depth, "%s page[%d]", n.Kind, n.PageFirst)
	} else {
		tw.Line(depth, "%s pages[%d-%d]", n.Kind, n.PageFirst, n.PageLast)
	}

	if mode >= config.TreeDumpModeFull {
		tw.Line(depth+1, "at(%.1f, %.1f) size(%.1f x %.1f)", n.Position.X, n.Position.Y, n.Size.Width, n.Size.Height)
		if n.Settings.Font != nil {
			tw.Line(depth+1, "font[%s]", *n.Settings.Font)
		}
		if n.Settings.FontSize != nil {
			tw.Line(depth+1, "size[%d half-points]", *n.Settings.FontSize)
		}
		if n.Kind == layout.KindBreak {
			tw.Line(depth+1, "break[%s]", n.Break)
		}
		if n.Relationship != nil {
			tw.Line(depth+1, "target[%s]", n.Relationship.Target)
		}
		if len(n.Text) > 0 {
			tw.TextBlock(depth+1, "text", n.Text)
		}
	} else if len(n.Text) > 0 {
		tw.TextBlock(depth+1, "text", n.Text)
	}

	for _, c := range n.Children {
		dumpNode(tw, c, depth+1, mode)
	}
}

// dumpPages lists page surfaces with their device dimensions.
func dumpPages(res *layout.Result) string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "Pages: %d", len(res.Surfaces))
	for _, s := range res.Surfaces {
		tw.Line(1, "page[%d] size(%.1f x %.1f)", s.Index, s.Size.Width, s.Size.Height)
	}
	return tw.String()
}
