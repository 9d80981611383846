package wml

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

var (
	// ErrStyleNotFound reports a reference to a style id the document never
	// declares. Recoverable: the referencing paragraph or run stays
	// unstyled.
	ErrStyleNotFound = errors.New("style not found")

	// ErrStyleCycle reports a basedOn (or rStyle) chain that reaches a style
	// already being resolved. Fatal, the document is malformed.
	ErrStyleCycle = errors.New("style inheritance cycle")
)

// StyleManager resolves named styles into TextSettings. Style bodies are
// parsed lazily on first use so forward basedOn references cost nothing
// extra; resolved chains are cached. A "currently resolving" set rejects
// cycles instead of looping.
type StyleManager struct {
	raw       map[string]*etree.Element
	resolved  map[string]*TextSettings
	resolving map[string]bool
	defaults  *TextSettings
	log       *zap.Logger
}

// NewStyleManager indexes the styles part. docDefaults parse eagerly into
// the default settings record; the configured fallback font family and size
// fill whatever docDefaults leaves unset.
func NewStyleManager(doc *etree.Document, defaultFont string, defaultSize int, log *zap.Logger) (*StyleManager, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil styles document")
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("styles document has no root element")
	}
	if root.Tag != "styles" {
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}

	m := &StyleManager{
		raw:       make(map[string]*etree.Element),
		resolved:  make(map[string]*TextSettings),
		resolving: make(map[string]bool),
		defaults:  &TextSettings{},
		log:       log,
	}

	for _, el := range root.ChildElements() {
		switch el.Tag {
		case "docDefaults":
			if err := m.parseDocDefaults(el); err != nil {
				return nil, fmt.Errorf("docDefaults: %w", err)
			}
		case "style":
			id, ok := attrValue(el, "styleId")
			if !ok {
				log.Warn("Style without styleId attribute, ignoring")
				continue
			}
			m.raw[id] = el
		case "latentStyles":
			// latent styles carry no formatting of their own
		default:
			log.Debug("Ignoring element in styles part", zap.String("tag", el.Tag))
		}
	}

	if m.defaults.Font == nil {
		m.defaults.Font = &defaultFont
	}
	if m.defaults.FontSize == nil {
		m.defaults.FontSize = &defaultSize
	}
	return m, nil
}

func (m *StyleManager) parseDocDefaults(el *etree.Element) error {
	for _, def := range el.ChildElements() {
		switch def.Tag {
		case "rPrDefault":
			for _, child := range def.ChildElements() {
				if child.Tag != "rPr" {
					continue
				}
				// no rStyle can occur here, the manager is still empty
				if err := m.defaults.ApplyRunProperties(child, nil, m.log); err != nil {
					return err
				}
			}
		case "pPrDefault":
			for _, child := range def.ChildElements() {
				if child.Tag != "pPr" {
					continue
				}
				for _, prop := range child.ChildElements() {
					if prop.Tag != "spacing" {
						continue
					}
					if val, ok := attrValue(prop, "after"); ok {
						after, err := strconv.ParseFloat(val, 64)
						if err != nil {
							return fmt.Errorf("spacing after value %q: %w", val, err)
						}
						m.defaults.SpacingBelowParagraph = &after
					}
				}
			}
		default:
			m.log.Debug("Ignoring docDefaults element", zap.String("tag", def.Tag))
		}
	}
	return nil
}

// DefaultTextSettings returns a copy of the docDefaults layer. Callers merge
// it last so more specific layers win.
func (m *StyleManager) DefaultTextSettings() *TextSettings {
	return m.defaults.Clone()
}

// resolve produces the fully layered settings for a style id, root-most base
// first so each derived style's explicit fields win over its base.
func (m *StyleManager) resolve(id string) (*TextSettings, error) {
	if ts, ok := m.resolved[id]; ok {
		return ts, nil
	}
	if m.resolving[id] {
		return nil, fmt.Errorf("style %q: %w", id, ErrStyleCycle)
	}
	el, ok := m.raw[id]
	if !ok {
		return nil, fmt.Errorf("style %q: %w", id, ErrStyleNotFound)
	}

	m.resolving[id] = true
	defer delete(m.resolving, id)

	own := &TextSettings{}
	var basedOn string
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "basedOn":
			val, ok := attrValue(child, "val")
			if !ok {
				return nil, fmt.Errorf("style %q: basedOn without val attribute", id)
			}
			basedOn = val
		case "rPr":
			if err := own.ApplyRunProperties(child, m, m.log); err != nil {
				return nil, fmt.Errorf("style %q: %w", id, err)
			}
		case "pPr":
			if _, err := m.ApplyParagraphProperties(child, own); err != nil {
				return nil, fmt.Errorf("style %q: %w", id, err)
			}
		default:
			m.log.Debug("Ignoring style element", zap.String("style", id), zap.String("tag", child.Tag))
		}
	}

	if len(basedOn) > 0 {
		base, err := m.resolve(basedOn)
		switch {
		case err == nil:
			own.InheritFrom(base)
		case errors.Is(err, ErrStyleNotFound):
			m.log.Warn("Base style not found, chain truncated",
				zap.String("style", id), zap.String("basedOn", basedOn))
		default:
			return nil, err
		}
	}

	m.resolved[id] = own
	return own, nil
}

// ApplyParagraphStyle merges the resolved style chain into settings.
// Already-set fields in settings always win.
func (m *StyleManager) ApplyParagraphStyle(id string, ts *TextSettings) error {
	style, err := m.resolve(id)
	if err != nil {
		return err
	}
	ts.InheritFrom(style)
	return nil
}

// ApplyCharacterStyle is ApplyParagraphStyle for run-level rStyle
// references.
func (m *StyleManager) ApplyCharacterStyle(id string, ts *TextSettings) error {
	style, err := m.resolve(id)
	if err != nil {
		return err
	}
	ts.InheritFrom(style)
	return nil
}

// ApplyParagraphProperties layers a pPr element over settings. Direct
// properties assign, referenced styles merge, so direct formatting wins
// regardless of element order. The paragraph-mark run properties (pPr/rPr)
// are returned instead of applied: they format the mark only and must not
// leak into run content.
func (m *StyleManager) ApplyParagraphProperties(el *etree.Element, ts *TextSettings) (markProps *etree.Element, err error) {
	for _, prop := range el.ChildElements() {
		switch prop.Tag {
		case "pStyle":
			val, ok := attrValue(prop, "val")
			if !ok {
				return nil, fmt.Errorf("pStyle without val attribute")
			}
			if err := m.ApplyParagraphStyle(val, ts); err != nil {
				if errors.Is(err, ErrStyleNotFound) {
					m.log.Warn("Paragraph style not found, paragraph stays unstyled", zap.String("style", val))
					break
				}
				return nil, err
			}
		case "jc":
			val, ok := attrValue(prop, "val")
			if !ok {
				return nil, fmt.Errorf("jc without val attribute")
			}
			j, err := ParseJustification(val)
			if err != nil {
				m.log.Warn("Ignoring unsupported justification", zap.String("val", val))
				break
			}
			ts.Justify = &j
		case "spacing":
			if val, ok := attrValue(prop, "after"); ok {
				after, parseErr := strconv.ParseFloat(val, 64)
				if parseErr != nil {
					return nil, fmt.Errorf("spacing after value %q: %w", val, parseErr)
				}
				ts.SpacingBelowParagraph = &after
			}
		case "ind":
			if err := ts.ApplyIndentation(prop); err != nil {
				return nil, err
			}
		case "numPr":
			ref, parseErr := parseNumberingRef(prop)
			if parseErr != nil {
				return nil, parseErr
			}
			ts.Numbering = ref
		case "rPr":
			markProps = prop
		default:
			m.log.Debug("Ignoring paragraph property", zap.String("tag", prop.Tag))
		}
	}
	return markProps, nil
}

func parseNumberingRef(el *etree.Element) (*NumberingRef, error) {
	ref := &NumberingRef{}
	for _, child := range el.ChildElements() {
		val, ok := attrValue(child, "val")
		if !ok {
			return nil, fmt.Errorf("numPr %s without val attribute", child.Tag)
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("numPr %s value %q: %w", child.Tag, val, err)
		}
		switch child.Tag {
		case "ilvl":
			ref.Level = n
		case "numId":
			ref.NumID = n
		}
	}
	return ref, nil
}
