package render

import (
	"strings"
	"testing"

	"dxv/config"
	"dxv/layout"
)

func testResult() *layout.Result {
	root := layout.NewNode(layout.KindDocument)
	para := root.AppendChild(layout.KindParagraph)
	run := para.AppendChild(layout.KindTextRun)
	part := run.AppendChild(layout.KindTextPart)
	part.Text = "Hello world"
	part.Position = layout.Position{X: 160, Y: 120}
	part.Size = layout.Size{Width: 110, Height: 20}

	brk := para.AppendChild(layout.KindBreak)
	brk.Break = layout.BreakPage
	brk.PageLast = 1

	root.UpdatePageLast()
	return &layout.Result{
		Root: root,
		Surfaces: []layout.PageSurface{
			{Index: 0, Size: layout.Size{Width: 1360, Height: 1760}},
			{Index: 1, Size: layout.Size{Width: 1360, Height: 1760}},
		},
	}
}

func TestDumpTree_Summary(t *testing.T) {
	out := dumpTree(testResult(), config.TreeDumpModeSummary)

	for _, want := range []string{
		"Layout: 2 page(s)",
		"Document pages[0-1]",
		"TextPart page[0]",
		`text: "Hello world"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary dump missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "at(") {
		t.Error("summary dump should not carry geometry")
	}
}

func TestDumpTree_Full(t *testing.T) {
	out := dumpTree(testResult(), config.TreeDumpModeFull)

	for _, want := range []string{
		"at(160.0, 120.0) size(110.0 x 20.0)",
		"break[page]",
		`text: "Hello world"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("full dump missing %q:\n%s", want, out)
		}
	}
}

func TestDumpTree_Nil(t *testing.T) {
	if got := dumpTree(nil, config.TreeDumpModeFull); got != "<nil layout>" {
		t.Errorf("dumpTree(nil) = %q", got)
	}
}

func TestDumpPages(t *testing.T) {
	out := dumpPages(testResult())
	for _, want := range []string{
		"Pages: 2",
		"page[0] size(1360.0 x 1760.0)",
		"page[1] size(1360.0 x 1760.0)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("pages dump missing %q:\n%s", want, out)
		}
	}
}
