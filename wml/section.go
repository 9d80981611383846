package wml

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Size in twelfths of a point.
type Size struct {
	Width  int
	Height int
}

// Margins in twelfths of a point.
type Margins struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// PageSettings is the section geometry, parsed once per document. Layout
// cannot proceed without a page size, so a sectPr without usable pgSz
// numbers is a structural error.
type PageSettings struct {
	Size         Size
	Margins      Margins
	HeaderOffset int
	FooterOffset int
}

// ContentWidth is the horizontal span between the margins.
func (p PageSettings) ContentWidth() int {
	return p.Size.Width - p.Margins.Left - p.Margins.Right
}

// ParsePageSettings reads the body's sectPr element.
func ParsePageSettings(el *etree.Element, log *zap.Logger) (PageSettings, error) {
	var (
		ps      PageSettings
		gotSize bool
	)

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "pgSz":
			w, err := requiredIntAttr(child, "w")
			if err != nil {
				return ps, fmt.Errorf("pgSz: %w", err)
			}
			h, err := requiredIntAttr(child, "h")
			if err != nil {
				return ps, fmt.Errorf("pgSz: %w", err)
			}
			ps.Size = Size{Width: w, Height: h}
			gotSize = true
		case "pgMar":
			var err error
			if ps.Margins.Left, err = optionalIntAttr(child, "left"); err != nil {
				return ps, fmt.Errorf("pgMar: %w", err)
			}
			if ps.Margins.Right, err = optionalIntAttr(child, "right"); err != nil {
				return ps, fmt.Errorf("pgMar: %w", err)
			}
			if ps.Margins.Top, err = optionalIntAttr(child, "top"); err != nil {
				return ps, fmt.Errorf("pgMar: %w", err)
			}
			if ps.Margins.Bottom, err = optionalIntAttr(child, "bottom"); err != nil {
				return ps, fmt.Errorf("pgMar: %w", err)
			}
			if ps.HeaderOffset, err = optionalIntAttr(child, "header"); err != nil {
				return ps, fmt.Errorf("pgMar: %w", err)
			}
			if ps.FooterOffset, err = optionalIntAttr(child, "footer"); err != nil {
				return ps, fmt.Errorf("pgMar: %w", err)
			}
		default:
			log.Debug("Ignoring section property", zap.String("tag", child.Tag))
		}
	}

	if !gotSize {
		return ps, fmt.Errorf("sectPr without page size")
	}
	return ps, nil
}

func requiredIntAttr(el *etree.Element, key string) (int, error) {
	val, ok := attrValue(el, key)
	if !ok {
		return 0, fmt.Errorf("missing required %s attribute", key)
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s value %q: %w", key, val, err)
	}
	return n, nil
}

func optionalIntAttr(el *etree.Element, key string) (int, error) {
	val, ok := attrValue(el, key)
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s value %q: %w", key, val, err)
	}
	return n, nil
}
