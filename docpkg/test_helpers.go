package docpkg

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
)

func mustDocument(t *testing.T, xml string) *etree.Document {
	t.Helper()

	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		ValidateInput: false,
		Permissive:    true,
	}
	if err := doc.ReadFromString(xml); err != nil {
		t.Fatalf("parse test xml: %v", err)
	}
	return doc
}

func writeTestPackage(t *testing.T, parts map[string][]byte) string {
	t.Helper()

	name := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(name)
	if err != nil {
		t.Fatalf("Failed to create package file: %v", err)
	}

	w := zip.NewWriter(f)
	for part, data := range parts {
		pw, err := w.Create(part)
		if err != nil {
			t.Fatalf("Failed to create part %s: %v", part, err)
		}
		if _, err := pw.Write(data); err != nil {
			t.Fatalf("Failed to write part %s: %v", part, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finalize package: %v", err)
	}
	f.Close()
	return name
}
