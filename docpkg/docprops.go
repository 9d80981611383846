package docpkg

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DocumentProperties holds the Dublin Core metadata from docProps/core.xml.
// The part is optional, absent fields stay empty.
type DocumentProperties struct {
	Creator     string
	Title       string
	Description string
	Language    language.Tag
}

// ParseDocumentProperties walks the parsed core properties part. Unknown
// children are ignored with a debug note, the part carries plenty of fields
// the viewer has no use for.
func ParseDocumentProperties(doc *etree.Document, log *zap.Logger) (*DocumentProperties, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil core properties document")
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("core properties document has no root element")
	}
	if root.Tag != "coreProperties" {
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}

	props := &DocumentProperties{Language: language.Und}
	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "creator":
			props.Creator = strings.TrimSpace(child.Text())
		case "title":
			props.Title = strings.TrimSpace(child.Text())
		case "description":
			props.Description = strings.TrimSpace(child.Text())
		case "language":
			props.Language = parseDocLang(child.Text(), log)
		default:
			log.Debug("Ignoring core property", zap.String("tag", child.Tag))
		}
	}
	return props, nil
}

func parseDocLang(in string, log *zap.Logger) language.Tag {
	lang := strings.TrimSpace(in)
	if lang == "" {
		return language.Und
	}

	tag, err := language.Parse(lang)
	if err == nil {
		return tag
	}

	// last resort - try names directly
	for _, supportedTag := range display.Supported.Tags() {
		if strings.EqualFold(display.Self.Name(supportedTag), lang) {
			return supportedTag
		}
	}
	log.Warn("Unable to parse document language", zap.String("lang", lang))
	return language.Und
}
