package wml

import (
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
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

func mustElement(t *testing.T, xml string) *etree.Element {
	t.Helper()

	root := mustDocument(t, xml).Root()
	if root == nil {
		t.Fatal("test xml has no root element")
	}
	return root
}

func testLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func boolPtr(v bool) *bool                      { return &v }
func intPtr(v int) *int                         { return &v }
func strPtr(v string) *string                   { return &v }
func justifyPtr(v Justification) *Justification { return &v }
