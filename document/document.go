// Package document loads a WordprocessingML package into the parsed parts the
// layout engine consumes.
package document

import (
	"context"
	"fmt"
	"path"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"dxv/docpkg"
	"dxv/state"
	"dxv/wml"
)

const (
	mainPartName      = "word/document.xml"
	stylesPartName    = "word/styles.xml"
	numberingPartName = "word/numbering.xml"
	relsPartName      = "word/_rels/document.xml.rels"
	corePropsPartName = "docProps/core.xml"
)

// Document holds everything parsed out of one package. The main part and the
// styles part are required, the rest substitute empty equivalents when
// absent.
type Document struct {
	SrcName string
	ID      uuid.UUID

	Package *docpkg.Package
	Doc     *etree.Document
	Body    *etree.Element

	Styles        *wml.StyleManager
	Numbering     *wml.NumberingManager
	Relationships *docpkg.Relationships
	Properties    *docpkg.DocumentProperties
	Pages         wml.PageSettings
}

// Close releases the underlying container.
func (d *Document) Close() error {
	if d == nil {
		return nil
	}
	return d.Package.Close()
}

// Load opens the package at srcName and parses the document parts. The
// returned document owns the container until Close.
func Load(ctx context.Context, srcName string, log *zap.Logger) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to generate document load id: %w", err)
	}
	log = log.With(zap.Stringer("document", id))

	pkg, err := docpkg.Open(srcName)
	if err != nil {
		return nil, err
	}

	d := &Document{
		SrcName: srcName,
		ID:      id,
		Package: pkg,
	}
	if err := d.parseParts(env, log); err != nil {
		pkg.Close()
		return nil, err
	}

	log.Debug("Document loaded",
		zap.String("source", srcName),
		zap.Int("parts", len(pkg.Parts())),
		zap.Int("relationships", d.Relationships.Len()))
	return d, nil
}

func (d *Document) parseParts(env *state.LocalEnv, log *zap.Logger) error {
	var err error

	d.Doc, err = d.readXMLPart(env, mainPartName)
	if err != nil {
		return err
	}
	root := d.Doc.Root()
	if root == nil || root.Tag != "document" {
		return fmt.Errorf("%s: unexpected root element", mainPartName)
	}
	d.Body = root.SelectElement("body")
	if d.Body == nil {
		return fmt.Errorf("%s: document has no body", mainPartName)
	}

	stylesDoc, err := d.readXMLPart(env, stylesPartName)
	if err != nil {
		return err
	}
	d.Styles, err = wml.NewStyleManager(stylesDoc,
		env.Cfg.Render.DefaultFontFamily, env.Cfg.Render.DefaultFontSize, log)
	if err != nil {
		return fmt.Errorf("%s: %w", stylesPartName, err)
	}

	if d.Package.HasPart(numberingPartName) {
		numberingDoc, err := d.readXMLPart(env, numberingPartName)
		if err != nil {
			return err
		}
		if d.Numbering, err = wml.ParseNumbering(numberingDoc, log); err != nil {
			return fmt.Errorf("%s: %w", numberingPartName, err)
		}
	} else {
		d.Numbering = wml.NewNumberingManager()
	}

	if d.Package.HasPart(relsPartName) {
		relsDoc, err := d.readXMLPart(env, relsPartName)
		if err != nil {
			return err
		}
		if d.Relationships, err = docpkg.LoadRelationships(relsDoc, d.Package, "word", log); err != nil {
			return fmt.Errorf("%s: %w", relsPartName, err)
		}
	} else {
		d.Relationships = docpkg.EmptyRelationships()
	}

	if d.Package.HasPart(corePropsPartName) {
		propsDoc, err := d.readXMLPart(env, corePropsPartName)
		if err != nil {
			return err
		}
		if d.Properties, err = docpkg.ParseDocumentProperties(propsDoc, log); err != nil {
			return fmt.Errorf("%s: %w", corePropsPartName, err)
		}
	} else {
		d.Properties = &docpkg.DocumentProperties{}
	}

	sectPr := d.Body.SelectElement("sectPr")
	if sectPr == nil {
		return fmt.Errorf("%s: document body has no section properties", mainPartName)
	}
	if d.Pages, err = wml.ParsePageSettings(sectPr, log); err != nil {
		return fmt.Errorf("%s: %w", mainPartName, err)
	}
	return nil
}

// readXMLPart reads and parses one part, keeping a copy in the report when
// one is collected.
func (d *Document) readXMLPart(env *state.LocalEnv, name string) (*etree.Document, error) {
	data, err := d.Package.ReadPart(name)
	if err != nil {
		return nil, err
	}
	if env.Rpt != nil {
		env.Rpt.StoreData(path.Join("documents", d.ID.String(), name), data)
	}

	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		ValidateInput: false,
		Permissive:    true,
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("unable to parse %q: %w", name, err)
	}
	return doc, nil
}
