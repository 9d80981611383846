package layout

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"dxv/config"
	"dxv/document"
	"dxv/wml"
)

// Engine walks the document body top-down and grows the node tree bottom-up,
// painting through as it goes. One engine performs exactly one pass; the
// counter table and cursor state are not reusable.
type Engine struct {
	doc      *document.Document
	measurer TextMeasurer
	painter  Painter
	cfg      config.RenderConfig
	log      *zap.Logger

	defaults *wml.TextSettings
	counters *wml.Counters
	ll       *LineLayout
	field    fieldState
}

// fieldState follows the begin/separate/end structure of a complex field
// across the runs that make it up.
type fieldState struct {
	active      bool
	separated   bool
	instruction strings.Builder
}

// Result is one finished layout pass: the tree root and the per-page
// surfaces.
type Result struct {
	Root     *Node
	Surfaces []PageSurface
}

// ProcessDocument lays out the whole body and returns the finished tree with
// its page surfaces. Fatal structural problems abort without a partial tree.
func ProcessDocument(d *document.Document, m TextMeasurer, p Painter, cfg config.RenderConfig, log *zap.Logger) (*Result, error) {
	e := &Engine{
		doc:      d,
		measurer: m,
		painter:  p,
		cfg:      cfg,
		log:      log,
		defaults: d.Styles.DefaultTextSettings(),
		counters: wml.NewCounters(),
		ll:       NewLineLayout(d.Pages, cfg.DeviceScale, cfg.InterLineSpacing),
	}

	root := NewNode(KindDocument)
	root.Settings = *e.defaults.Clone()

	if err := e.processBlockChildren(root, d.Body); err != nil {
		return nil, err
	}

	count := root.UpdatePageLast() + 1
	return &Result{
		Root:     root,
		Surfaces: PageSurfaces(d.Pages, cfg.DeviceScale, count),
	}, nil
}

// processBlockChildren handles block-level content: the body, a table cell
// or a block structured document tag's content.
func (e *Engine) processBlockChildren(parent *Node, el *etree.Element) error {
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "p":
			if err := e.processParagraph(parent, child); err != nil {
				return err
			}
		case "tbl":
			if err := e.processTable(parent, child); err != nil {
				return err
			}
		case "sdt":
			if err := e.processSDT(parent, child); err != nil {
				return err
			}
		case "sectPr":
			// section geometry was consumed at load time
		default:
			e.log.Debug("Ignoring body element", zap.String("tag", child.Tag))
		}
	}
	return nil
}

func (e *Engine) processParagraph(parent *Node, el *etree.Element) error {
	node := parent.AppendChild(KindParagraph)
	node.PageFirst, node.PageLast = e.ll.Page, e.ll.Page
	node.Position = e.ll.Cursor

	settings := &wml.TextSettings{}
	var markProps *etree.Element
	if pPr := el.SelectElement("pPr"); pPr != nil {
		// The returned paragraph-mark run properties affect only the mark;
		// they are deliberately not merged into run content.
		var err error
		if markProps, err = e.doc.Styles.ApplyParagraphProperties(pPr, settings); err != nil {
			return err
		}
	}
	settings.InheritFrom(e.defaults)
	node.Settings = *settings

	e.ll.ResetLineHeight()
	if settings.IndentationLeft != nil {
		e.ll.Cursor.X = e.ll.PageHorizontalStart +
			wml.TwelfthsToDevice(float64(*settings.IndentationLeft), e.cfg.DeviceScale)
	}

	if settings.Numbering != nil {
		e.processNumbering(node, settings, markProps)
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "pPr":
			// handled above
		case "r":
			if err := e.processRun(node, child, settings); err != nil {
				return err
			}
		case "hyperlink":
			if err := e.processHyperlink(node, child, settings); err != nil {
				return err
			}
		case "sdt":
			if err := e.processSDT(node, child); err != nil {
				return err
			}
		case "bookmarkStart", "bookmarkEnd", "proofErr":
			// markers without geometry
		default:
			e.log.Debug("Ignoring paragraph element", zap.String("tag", child.Tag))
		}
	}

	// A paragraph always advances at least one line, even when no run
	// produced a line-height candidate (the empty paragraph case).
	probe := e.measurer.LineSpacing(SpecFromSettings(settings, e.cfg.DeviceScale))
	height := math.Max(e.ll.LineHeight(), probe)

	var spacing float64
	if settings.SpacingBelowParagraph != nil {
		spacing = wml.TwelfthsToDevice(*settings.SpacingBelowParagraph, e.cfg.DeviceScale)
	}
	e.ll.Advance(height + spacing)

	node.ProposeLastPage(e.ll.Page)
	node.Size = Size{
		Width:  e.ll.PageHorizontalEnd - e.ll.PageHorizontalStart,
		Height: height,
	}
	return nil
}

func (e *Engine) processRun(parent *Node, el *etree.Element, paragraph *wml.TextSettings) error {
	node := parent.AppendChild(KindTextRun)
	node.PageFirst, node.PageLast = e.ll.Page, e.ll.Page
	node.Position = e.ll.Cursor

	settings := &wml.TextSettings{}
	if rPr := el.SelectElement("rPr"); rPr != nil {
		if err := settings.ApplyRunProperties(rPr, e.doc.Styles, e.log); err != nil {
			return err
		}
	}
	settings.InheritFrom(paragraph)
	node.Settings = *settings

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "rPr":
			// handled above
		case "t":
			if e.field.active && e.field.separated {
				// cached field result, superseded by our own resolution
				break
			}
			e.layoutText(node, child.Text(), settings)
		case "fldChar":
			e.processFieldChar(node, child, settings)
		case "instrText":
			if e.field.active && !e.field.separated {
				e.field.instruction.WriteString(child.Text())
			} else {
				e.log.Debug("Ignoring instruction text outside a field")
			}
		case "br":
			e.processBreak(node, child)
		case "drawing":
			if err := e.processDrawing(node, child, settings); err != nil {
				return err
			}
		case "tab":
			e.layoutText(node, "\t", settings)
		default:
			e.log.Debug("Ignoring run element", zap.String("tag", child.Tag))
		}
	}

	node.ProposeLastPage(e.ll.Page)
	return nil
}

// layoutText breaks one text fragment into positioned TextPart leaves,
// painting each as it is placed.
func (e *Engine) layoutText(parent *Node, text string, settings *wml.TextSettings) {
	if len(text) == 0 {
		return
	}
	spec := SpecFromSettings(settings, e.cfg.DeviceScale)

	BreakText(text, e.ll, settings.EffectiveJustify(), spec, e.measurer, func(line string, pos Position, size Size) {
		part := parent.AppendChild(KindTextPart)
		part.Text = line
		part.Position = pos
		part.Size = size
		part.PageFirst, part.PageLast = e.ll.Page, e.ll.Page

		if settings.Highlight != nil {
			e.painter.PaintRect(*settings.Highlight, RectFromPositionAndSize(pos, size))
		}
		e.painter.PaintText(spec, settings.EffectiveColor(), pos, line)
	})
}

func (e *Engine) processHyperlink(parent *Node, el *etree.Element, paragraph *wml.TextSettings) error {
	node := parent.AppendChild(KindHyperlink)
	node.PageFirst, node.PageLast = e.ll.Page, e.ll.Page
	node.Position = e.ll.Cursor

	if id, ok := drawingAttr(el, "id"); ok {
		if node.Relationship = e.doc.Relationships.Find(id); node.Relationship == nil {
			e.log.Warn("Hyperlink references unknown relationship", zap.String("id", id))
		}
	} else {
		e.log.Warn("Hyperlink without relationship id")
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "r":
			if err := e.processRun(node, child, paragraph); err != nil {
				return err
			}
		default:
			e.log.Debug("Ignoring hyperlink element", zap.String("tag", child.Tag))
		}
	}

	// the hyperlink's own box is the union of everything painted inside it,
	// so hit-testing can register the whole clickable region
	var bounds Rect
	node.WalkDepth(func(n *Node, _ int) {
		if n.Kind == KindTextPart {
			bounds = bounds.Union(RectFromPositionAndSize(n.Position, n.Size))
		}
	})
	if bounds != (Rect{}) {
		node.Position = Position{X: bounds.Left, Y: bounds.Top}
		node.Size = Size{Width: bounds.Width(), Height: bounds.Height()}
	}
	node.ProposeLastPage(e.ll.Page)
	return nil
}

// processNumbering synthesizes the list prefix under an invisible parent so
// the level's settings layer over the paragraph's without leaking into body
// runs. The paragraph-mark run properties format the glyph, below the level's
// own formatting.
func (e *Engine) processNumbering(paragraph *Node, settings *wml.TextSettings, markProps *etree.Element) {
	text, level, err := e.doc.Numbering.NumberingText(settings.Numbering, e.counters, e.log)
	if err != nil {
		e.log.Warn("Unable to synthesize numbering text", zap.Error(err))
		return
	}

	node := paragraph.AppendChild(KindNumberingParent)
	node.PageFirst, node.PageLast = e.ll.Page, e.ll.Page

	merged := level.Settings.Clone()
	if markProps != nil {
		mark := &wml.TextSettings{}
		if err := mark.ApplyRunProperties(markProps, e.doc.Styles, e.log); err != nil {
			e.log.Warn("Ignoring malformed paragraph mark properties", zap.Error(err))
		} else {
			merged.InheritFrom(mark)
		}
	}
	merged.InheritFrom(settings)
	node.Settings = *merged

	// the number hangs to the left of the paragraph body text
	x := e.ll.Cursor.X
	if merged.IndentationLeft != nil {
		x = e.ll.PageHorizontalStart +
			wml.TwelfthsToDevice(float64(*merged.IndentationLeft), e.cfg.DeviceScale)
		e.ll.Cursor.X = x
	}
	if merged.IndentationHanging != nil {
		x -= wml.TwelfthsToDevice(float64(*merged.IndentationHanging), e.cfg.DeviceScale)
	}

	if len(text) == 0 {
		return
	}
	spec := SpecFromSettings(merged, e.cfg.DeviceScale)
	size := e.measurer.Measure(spec, text)
	pos := Position{X: x, Y: e.ll.Cursor.Y}

	part := node.AppendChild(KindTextPart)
	part.Text = text
	part.Position = pos
	part.Size = size
	part.PageFirst, part.PageLast = e.ll.Page, e.ll.Page

	e.ll.AddLineHeightCandidate(size.Height)
	e.painter.PaintText(spec, merged.EffectiveColor(), pos, text)
}

// processFieldChar tracks the begin/separate/end markers of a complex field.
// The instruction resolves once, at the separator (or at the end when no
// separator exists); the cached result stored in the document is discarded in
// favor of the fresh resolution.
func (e *Engine) processFieldChar(parent *Node, el *etree.Element, settings *wml.TextSettings) {
	val, _ := drawingAttr(el, "fldCharType")
	switch val {
	case "begin":
		e.field = fieldState{active: true}
	case "separate":
		if e.field.active && !e.field.separated {
			e.resolveField(parent, settings)
			e.field.separated = true
		}
	case "end":
		if e.field.active && !e.field.separated {
			e.resolveField(parent, settings)
		}
		e.field = fieldState{}
	default:
		e.log.Warn("Unknown field character type", zap.String("type", val))
	}
}

func (e *Engine) resolveField(parent *Node, settings *wml.TextSettings) {
	f := ParseFieldInstruction(e.field.instruction.String(), e.log)
	if text := f.Resolve(time.Now()); len(text) != 0 {
		e.layoutText(parent, text, settings)
	}
}

func (e *Engine) processBreak(parent *Node, el *etree.Element) {
	val, _ := drawingAttr(el, "type")
	kind := ParseBreakType(val, e.log)

	node := parent.AppendChild(KindBreak)
	node.Break = kind
	node.Position = e.ll.Cursor
	node.PageFirst, node.PageLast = e.ll.Page, e.ll.Page

	switch kind {
	case BreakPage:
		e.ll.NextPage()
	default:
		// column breaks degrade to line breaks in single-column layout
		if e.ll.LineHeight() == 0 {
			spec := SpecFromSettings(&parent.Settings, e.cfg.DeviceScale)
			e.ll.AddLineHeightCandidate(e.measurer.LineSpacing(spec))
		}
		e.ll.NewLine()
	}
}

func (e *Engine) processDrawing(parent *Node, el *etree.Element, settings *wml.TextSettings) error {
	info, err := parseDrawing(el, e.doc.Relationships, e.cfg.DeviceScale, e.log)
	if err != nil {
		return fmt.Errorf("drawing: %w", err)
	}

	node := parent.AppendChild(KindDrawing)
	node.Relationship = info.rel
	node.Position = e.ll.Cursor
	node.Size = info.size
	node.PageFirst, node.PageLast = e.ll.Page, e.ll.Page
	node.Settings = *settings.Clone()

	e.ll.AddLineHeightCandidate(info.size.Height)
	e.ll.Cursor.X += info.size.Width
	return nil
}

// processSDT unwraps a structured document tag and lays out its content in
// place.
func (e *Engine) processSDT(parent *Node, el *etree.Element) error {
	node := parent.AppendChild(KindStructuredDocumentTag)
	node.PageFirst, node.PageLast = e.ll.Page, e.ll.Page
	node.Position = e.ll.Cursor

	content := el.SelectElement("sdtContent")
	if content == nil {
		e.log.Debug("Structured document tag without content")
		return nil
	}
	if err := e.processBlockChildren(node, content); err != nil {
		return err
	}
	node.ProposeLastPage(e.ll.Page)
	return nil
}

// processTable lays out table content structurally: rows and cells become
// nodes and cell paragraphs flow as regular block content. Column geometry
// is not computed.
func (e *Engine) processTable(parent *Node, el *etree.Element) error {
	table := parent.AppendChild(KindTable)
	table.PageFirst, table.PageLast = e.ll.Page, e.ll.Page
	table.Position = e.ll.Cursor

	for _, rowEl := range el.ChildElements() {
		if rowEl.Tag != "tr" {
			if rowEl.Tag != "tblPr" && rowEl.Tag != "tblGrid" {
				e.log.Debug("Ignoring table element", zap.String("tag", rowEl.Tag))
			}
			continue
		}
		row := table.AppendChild(KindTableRow)
		row.PageFirst, row.PageLast = e.ll.Page, e.ll.Page
		row.Position = e.ll.Cursor

		for _, cellEl := range rowEl.ChildElements() {
			if cellEl.Tag != "tc" {
				continue
			}
			cell := row.AppendChild(KindTableCell)
			cell.PageFirst, cell.PageLast = e.ll.Page, e.ll.Page
			cell.Position = e.ll.Cursor

			if err := e.processBlockChildren(cell, cellEl); err != nil {
				return err
			}
			cell.ProposeLastPage(e.ll.Page)
		}
		row.ProposeLastPage(e.ll.Page)
	}
	table.ProposeLastPage(e.ll.Page)
	return nil
}
