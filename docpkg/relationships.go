package docpkg

import (
	"fmt"
	"path"

	"github.com/beevik/etree"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
)

// RelationshipType classifies a relationship by the purpose URI recorded in
// the rels part.
type RelationshipType int

const (
	TypeUnknown RelationshipType = iota
	TypeImage
	TypeHyperlink
	TypeStyles
	TypeNumbering
	TypeFontTable
	TypeSettings
	TypeWebSettings
	TypeTheme
	TypeCoreProperties
	TypeExtendedProperties
	TypeCustomXML
	TypeFootnotes
	TypeEndnotes
)

const relTypePrefix = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"

var relTypeNames = map[string]RelationshipType{
	relTypePrefix + "image":        TypeImage,
	relTypePrefix + "hyperlink":    TypeHyperlink,
	relTypePrefix + "styles":       TypeStyles,
	relTypePrefix + "numbering":    TypeNumbering,
	relTypePrefix + "fontTable":    TypeFontTable,
	relTypePrefix + "settings":     TypeSettings,
	relTypePrefix + "webSettings":  TypeWebSettings,
	relTypePrefix + "theme":        TypeTheme,
	relTypePrefix + "customXml":    TypeCustomXML,
	relTypePrefix + "footnotes":    TypeFootnotes,
	relTypePrefix + "endnotes":     TypeEndnotes,
	"http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties": TypeCoreProperties,
	"http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties": TypeExtendedProperties,
}

func (t RelationshipType) String() string {
	switch t {
	case TypeImage:
		return "image"
	case TypeHyperlink:
		return "hyperlink"
	case TypeStyles:
		return "styles"
	case TypeNumbering:
		return "numbering"
	case TypeFontTable:
		return "fontTable"
	case TypeSettings:
		return "settings"
	case TypeWebSettings:
		return "webSettings"
	case TypeTheme:
		return "theme"
	case TypeCoreProperties:
		return "coreProperties"
	case TypeExtendedProperties:
		return "extendedProperties"
	case TypeCustomXML:
		return "customXml"
	case TypeFootnotes:
		return "footnotes"
	case TypeEndnotes:
		return "endnotes"
	default:
		return "unknown"
	}
}

// Relationship is a single named reference from the document part to another
// part or to an external resource. For image relationships Payload holds the
// referenced part bytes, read eagerly at load time.
type Relationship struct {
	ID       string
	Type     RelationshipType
	Target   string
	External bool
	Payload  []byte
}

// Relationships is an immutable ID-keyed set built once per document load.
type Relationships struct {
	byID map[string]*Relationship
}

// EmptyRelationships substitutes for a missing rels part. Documents without
// hyperlinks or images load fine without one.
func EmptyRelationships() *Relationships {
	return &Relationships{byID: make(map[string]*Relationship)}
}

// Find returns relationship registered under id or nil.
func (r *Relationships) Find(id string) *Relationship {
	return r.byID[id]
}

// Len returns number of loaded relationships.
func (r *Relationships) Len() int {
	return len(r.byID)
}

// LoadRelationships walks the parsed rels part and builds the resolver.
// baseDir is the directory of the part the rels belong to ("word" for
// word/_rels/document.xml.rels), relative targets resolve against it.
// Unrecognized type URIs are kept as TypeUnknown with a warning, never an
// error.
func LoadRelationships(doc *etree.Document, pkg *Package, baseDir string, log *zap.Logger) (*Relationships, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil relationships document")
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("relationships document has no root element")
	}
	if root.Tag != "Relationships" {
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}

	rels := EmptyRelationships()
	for _, child := range root.ChildElements() {
		if child.Tag != "Relationship" {
			log.Warn("Unexpected tag in Relationships, ignoring", zap.String("parent", root.Tag), zap.String("tag", child.Tag))
			continue
		}

		rel := &Relationship{
			ID:       child.SelectAttrValue("Id", ""),
			Target:   child.SelectAttrValue("Target", ""),
			External: child.SelectAttrValue("TargetMode", "") == "External",
		}
		if len(rel.ID) == 0 {
			return nil, fmt.Errorf("relationship without Id (target %q)", rel.Target)
		}
		if _, exists := rels.byID[rel.ID]; exists {
			return nil, fmt.Errorf("duplicate relationship id %q", rel.ID)
		}

		typeURI := child.SelectAttrValue("Type", "")
		var known bool
		if rel.Type, known = relTypeNames[typeURI]; !known {
			rel.Type = TypeUnknown
			log.Warn("Unknown relationship type", zap.String("id", rel.ID), zap.String("type", typeURI))
		}

		if rel.Type == TypeImage && !rel.External {
			data, err := pkg.ReadPart(resolveTarget(baseDir, rel.Target))
			if err != nil {
				return nil, fmt.Errorf("relationship %q: %w", rel.ID, err)
			}
			rel.Payload = data
			if kind, err := filetype.Match(data); err == nil {
				log.Debug("Loaded image relationship",
					zap.String("id", rel.ID),
					zap.String("target", rel.Target),
					zap.String("type", kind.MIME.Value),
					zap.Int("size", len(data)))
			}
		}
		rels.byID[rel.ID] = rel
	}
	return rels, nil
}

// resolveTarget maps a relationship target to a package part name.
func resolveTarget(baseDir, target string) string {
	if path.IsAbs(target) {
		return normalizePartName(target)
	}
	return path.Join(baseDir, target)
}
