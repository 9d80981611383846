package wml

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Justification of a paragraph within the horizontal content bounds.
type Justification int

const (
	JustifyStart Justification = iota
	JustifyCenter
	JustifyEnd
)

func (j Justification) String() string {
	switch j {
	case JustifyCenter:
		return "center"
	case JustifyEnd:
		return "end"
	default:
		return "start"
	}
}

// ParseJustification maps a w:jc value. The non-conformant but common
// "right" and "left" spellings are accepted as end/start.
func ParseJustification(val string) (Justification, error) {
	switch val {
	case "start", "left":
		return JustifyStart, nil
	case "center":
		return JustifyCenter, nil
	case "end", "right":
		return JustifyEnd, nil
	}
	return JustifyStart, fmt.Errorf("%q is not a supported justification", val)
}

// NumberingRef attaches a paragraph to a numbering definition instance level.
type NumberingRef struct {
	NumID int
	Level int
}

// TextSettings is one cascade layer of formatting. Every field is optional:
// nil means "inherit". Lengths are twelfths of a point, font size is in half
// points.
type TextSettings struct {
	Bold      *bool
	Underline *bool
	Font      *string
	Color     *Color
	Highlight *Color

	SpacingBelowParagraph *float64
	FontSize              *int
	Justify               *Justification

	Numbering *NumberingRef

	IndentationLeft    *int
	IndentationHanging *int
}

func inherit[T any](dst **T, src *T) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

// InheritFrom fills fields that are still unset from parent. Fields already
// set are never touched, so merging most-specific-first keeps the most
// specific value. The operation is idempotent.
func (ts *TextSettings) InheritFrom(parent *TextSettings) {
	if parent == nil {
		return
	}
	inherit(&ts.Bold, parent.Bold)
	inherit(&ts.Underline, parent.Underline)
	inherit(&ts.Font, parent.Font)
	inherit(&ts.Color, parent.Color)
	inherit(&ts.Highlight, parent.Highlight)
	inherit(&ts.SpacingBelowParagraph, parent.SpacingBelowParagraph)
	inherit(&ts.FontSize, parent.FontSize)
	inherit(&ts.Justify, parent.Justify)
	inherit(&ts.Numbering, parent.Numbering)
	inherit(&ts.IndentationLeft, parent.IndentationLeft)
	inherit(&ts.IndentationHanging, parent.IndentationHanging)
}

// Clone returns an independent copy.
func (ts *TextSettings) Clone() *TextSettings {
	out := &TextSettings{}
	out.InheritFrom(ts)
	return out
}

// EffectiveColor is the paint color with the document-wide default applied.
func (ts *TextSettings) EffectiveColor() Color {
	if ts.Color != nil {
		return *ts.Color
	}
	return Black
}

// EffectiveJustify defaults to start-aligned.
func (ts *TextSettings) EffectiveJustify() Justification {
	if ts.Justify != nil {
		return *ts.Justify
	}
	return JustifyStart
}

// toggle implements the on/off property rule: the first application turns
// the property on, a repeated application inverts the previous state.
func toggle(field **bool) {
	if *field == nil {
		v := true
		*field = &v
		return
	}
	v := !**field
	*field = &v
}

// ApplyRunProperties layers an rPr element over the settings. Referenced
// character styles resolve through the style manager, which may be nil when
// the caller knows no rStyle can occur (docDefaults).
func (ts *TextSettings) ApplyRunProperties(el *etree.Element, styles *StyleManager, log *zap.Logger) error {
	for _, prop := range el.ChildElements() {
		switch prop.Tag {
		case "b":
			toggle(&ts.Bold)
		case "u":
			// value kinds (dash, dotted, ...) all render as a plain underline
			toggle(&ts.Underline)
		case "color":
			val, ok := attrValue(prop, "val")
			if !ok {
				return fmt.Errorf("color without val attribute")
			}
			if val == "auto" {
				break
			}
			c, err := ParseHexColor(val)
			if err != nil {
				return err
			}
			ts.Color = &c
		case "highlight":
			val, ok := attrValue(prop, "val")
			if !ok {
				return fmt.Errorf("highlight without val attribute")
			}
			c, err := ParseHighlightColor(val)
			if err != nil {
				log.Warn("Ignoring unsupported highlight color", zap.String("val", val))
				break
			}
			ts.Highlight = &c
		case "rFonts":
			if val, ok := attrValue(prop, "ascii"); ok {
				ts.Font = &val
			}
		case "rStyle":
			val, ok := attrValue(prop, "val")
			if !ok {
				return fmt.Errorf("rStyle without val attribute")
			}
			if styles == nil {
				break
			}
			if err := styles.ApplyCharacterStyle(val, ts); err != nil {
				if errors.Is(err, ErrStyleNotFound) {
					log.Warn("Character style not found, run stays unstyled", zap.String("style", val))
					break
				}
				return err
			}
		case "sz":
			val, ok := attrValue(prop, "val")
			if !ok {
				return fmt.Errorf("sz without val attribute")
			}
			size, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("sz value %q: %w", val, err)
			}
			ts.FontSize = &size
		default:
			log.Debug("Ignoring run property", zap.String("tag", prop.Tag))
		}
	}
	return nil
}

// ApplyIndentation parses a w:ind element. The w:left attribute is an
// MSOFFICE quirk, the standard spells it w:start; both are taken.
func (ts *TextSettings) ApplyIndentation(el *etree.Element) error {
	for _, key := range []string{"left", "start"} {
		if val, ok := attrValue(el, key); ok {
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("ind %s value %q: %w", key, val, err)
			}
			ts.IndentationLeft = &n
			break
		}
	}
	if val, ok := attrValue(el, "hanging"); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("ind hanging value %q: %w", val, err)
		}
		ts.IndentationHanging = &n
	}
	return nil
}

// attrValue finds an attribute by local name regardless of its namespace
// prefix (w:val and val both match).
func attrValue(el *etree.Element, key string) (string, bool) {
	for _, a := range el.Attr {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
