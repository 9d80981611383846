package wml

import (
	"testing"
)

const numberingXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:numbering xmlns:w="wpml">
  <w:num w:numId="1">
    <w:abstractNumId w:val="0"/>
  </w:num>
  <w:num w:numId="2">
    <w:abstractNumId w:val="0"/>
  </w:num>
  <w:abstractNum w:abstractNumId="0">
    <w:lvl w:ilvl="0">
      <w:start w:val="1"/>
      <w:numFmt w:val="decimal"/>
      <w:lvlText w:val="%1."/>
      <w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr>
    </w:lvl>
    <w:lvl w:ilvl="1">
      <w:start w:val="1"/>
      <w:numFmt w:val="lowerLetter"/>
      <w:lvlText w:val="%1.%2)"/>
    </w:lvl>
  </w:abstractNum>
</w:numbering>`

func mustNumbering(t *testing.T, xml string) *NumberingManager {
	t.Helper()

	m, err := ParseNumbering(mustDocument(t, xml), testLogger(t))
	if err != nil {
		t.Fatalf("ParseNumbering() error = %v", err)
	}
	return m
}

func TestParseNumbering_OrderIndependent(t *testing.T) {
	// instances precede the abstract definition in the fixture
	m := mustNumbering(t, numberingXML)

	for _, id := range []int{1, 2} {
		inst := m.FindDefinitionInstance(id)
		if inst == nil {
			t.Fatalf("instance %d not found", id)
		}
		if inst.Abstract == nil || inst.Abstract.ID != 0 {
			t.Errorf("instance %d not linked to abstract 0", id)
		}
	}
	if m.FindDefinitionInstance(99) != nil {
		t.Error("unknown numId should yield nil")
	}
}

func TestParseNumbering_DuplicateIDs(t *testing.T) {
	dupAbstract := `<w:numbering xmlns:w="wpml">
  <w:abstractNum w:abstractNumId="0"/>
  <w:abstractNum w:abstractNumId="0"/>
</w:numbering>`
	if _, err := ParseNumbering(mustDocument(t, dupAbstract), testLogger(t)); err == nil {
		t.Error("Expected error for duplicate abstractNumId")
	}

	dupNum := `<w:numbering xmlns:w="wpml">
  <w:abstractNum w:abstractNumId="0"/>
  <w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
  <w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
</w:numbering>`
	if _, err := ParseNumbering(mustDocument(t, dupNum), testLogger(t)); err == nil {
		t.Error("Expected error for duplicate numId")
	}
}

func TestParseNumbering_UnknownAbstractTolerated(t *testing.T) {
	xml := `<w:numbering xmlns:w="wpml">
  <w:num w:numId="5"><w:abstractNumId w:val="7"/></w:num>
</w:numbering>`
	m := mustNumbering(t, xml)

	inst := m.FindDefinitionInstance(5)
	if inst == nil {
		t.Fatal("instance should be registered despite the dangling reference")
	}
	if inst.Abstract != nil {
		t.Error("dangling abstract reference should stay unresolved")
	}
}

func TestParseNumbering_LevelDetails(t *testing.T) {
	m := mustNumbering(t, numberingXML)

	abs := m.FindDefinitionInstance(1).Abstract
	lvl0 := abs.Levels[0]
	if lvl0 == nil {
		t.Fatal("level 0 missing")
	}
	if lvl0.Format != FormatDecimal || lvl0.StartingValue != 1 || lvl0.TextTemplate != "%1." {
		t.Errorf("level 0 = %+v", lvl0)
	}
	if lvl0.Settings.IndentationLeft == nil || *lvl0.Settings.IndentationLeft != 720 {
		t.Errorf("level 0 indentation = %v, want 720", lvl0.Settings.IndentationLeft)
	}
	if lvl0.Settings.IndentationHanging == nil || *lvl0.Settings.IndentationHanging != 360 {
		t.Errorf("level 0 hanging = %v, want 360", lvl0.Settings.IndentationHanging)
	}

	lvl1 := abs.Levels[1]
	if lvl1 == nil || lvl1.Format != FormatLowerLetter {
		t.Errorf("level 1 = %+v, want lowerLetter", lvl1)
	}
}

func TestNumberingText_Sequence(t *testing.T) {
	m := mustNumbering(t, numberingXML)
	log := testLogger(t)
	counters := NewCounters()
	ref := &NumberingRef{NumID: 1, Level: 0}

	for i, want := range []string{"1.", "2.", "3."} {
		got, lvl, err := m.NumberingText(ref, counters, log)
		if err != nil {
			t.Fatalf("NumberingText() error = %v", err)
		}
		if got != want {
			t.Errorf("item %d = %q, want %q", i, got, want)
		}
		if lvl == nil || lvl.Index != 0 {
			t.Errorf("item %d returned level %+v", i, lvl)
		}
	}
}

func TestNumberingText_MultiLevelTemplate(t *testing.T) {
	m := mustNumbering(t, numberingXML)
	log := testLogger(t)
	counters := NewCounters()

	// advance the outer level twice, then number within it
	top := &NumberingRef{NumID: 1, Level: 0}
	if _, _, err := m.NumberingText(top, counters, log); err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.NumberingText(top, counters, log); err != nil {
		t.Fatal(err)
	}

	sub := &NumberingRef{NumID: 1, Level: 1}
	got, _, err := m.NumberingText(sub, counters, log)
	if err != nil {
		t.Fatalf("NumberingText() error = %v", err)
	}
	if got != "2.a)" {
		t.Errorf("nested item = %q, want 2.a)", got)
	}

	got, _, err = m.NumberingText(sub, counters, log)
	if err != nil {
		t.Fatalf("NumberingText() error = %v", err)
	}
	if got != "2.b)" {
		t.Errorf("nested item = %q, want 2.b)", got)
	}
}

func TestNumberingText_InstancesCountIndependently(t *testing.T) {
	// both instances share abstract 0, but each keeps its own counters
	m := mustNumbering(t, numberingXML)
	log := testLogger(t)
	counters := NewCounters()

	first := &NumberingRef{NumID: 1, Level: 0}
	second := &NumberingRef{NumID: 2, Level: 0}

	for range 3 {
		if _, _, err := m.NumberingText(first, counters, log); err != nil {
			t.Fatal(err)
		}
	}
	got, _, err := m.NumberingText(second, counters, log)
	if err != nil {
		t.Fatalf("NumberingText() error = %v", err)
	}
	if got != "1." {
		t.Errorf("second list starts at %q, want 1.", got)
	}
}

func TestNumberingText_EmptyTemplate(t *testing.T) {
	xml := `<w:numbering xmlns:w="wpml">
  <w:abstractNum w:abstractNumId="0">
    <w:lvl w:ilvl="0"><w:numFmt w:val="upperRoman"/><w:start w:val="4"/></w:lvl>
  </w:abstractNum>
  <w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
</w:numbering>`
	m := mustNumbering(t, xml)

	got, _, err := m.NumberingText(&NumberingRef{NumID: 1}, NewCounters(), testLogger(t))
	if err != nil {
		t.Fatalf("NumberingText() error = %v", err)
	}
	if got != "IV." {
		t.Errorf("empty template fallback = %q, want IV.", got)
	}
}

func TestNumberingText_LegalNumbering(t *testing.T) {
	xml := `<w:numbering xmlns:w="wpml">
  <w:abstractNum w:abstractNumId="0">
    <w:lvl w:ilvl="0"><w:numFmt w:val="upperRoman"/><w:lvlText w:val="%1."/></w:lvl>
    <w:lvl w:ilvl="1"><w:isLgl/><w:numFmt w:val="lowerLetter"/><w:lvlText w:val="%1.%2"/></w:lvl>
  </w:abstractNum>
  <w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
</w:numbering>`
	m := mustNumbering(t, xml)
	log := testLogger(t)
	counters := NewCounters()

	if _, _, err := m.NumberingText(&NumberingRef{NumID: 1, Level: 0}, counters, log); err != nil {
		t.Fatal(err)
	}
	got, _, err := m.NumberingText(&NumberingRef{NumID: 1, Level: 1}, counters, log)
	if err != nil {
		t.Fatalf("NumberingText() error = %v", err)
	}
	// isLgl forces decimal for every substituted level
	if got != "1.1" {
		t.Errorf("legal numbering = %q, want 1.1", got)
	}
}

func TestNumberingText_Errors(t *testing.T) {
	m := mustNumbering(t, numberingXML)
	log := testLogger(t)
	counters := NewCounters()

	if _, _, err := m.NumberingText(&NumberingRef{NumID: 42}, counters, log); err == nil {
		t.Error("Expected error for unknown instance")
	}
	if _, _, err := m.NumberingText(&NumberingRef{NumID: 1, Level: 8}, counters, log); err == nil {
		t.Error("Expected error for undefined level")
	}
}

func TestCounters(t *testing.T) {
	lvl := &LevelDefinition{Index: 0, StartingValue: 5}
	c := NewCounters()

	if got := c.Current(1, lvl); got != 5 {
		t.Errorf("Current before Next = %d, want starting value 5", got)
	}
	if got := c.Next(1, lvl); got != 5 {
		t.Errorf("first Next = %d, want 5", got)
	}
	if got := c.Next(1, lvl); got != 6 {
		t.Errorf("second Next = %d, want 6", got)
	}
	if got := c.Current(1, lvl); got != 6 {
		t.Errorf("Current after Next = %d, want 6", got)
	}
}

func TestRenderFormatted(t *testing.T) {
	tests := []struct {
		format   NumberingFormat
		value    int
		expected string
	}{
		{FormatDecimal, 7, "7"},
		{FormatDecimalZero, 7, "07"},
		{FormatDecimalZero, 12, "12"},
		{FormatLowerRoman, 14, "xiv"},
		{FormatUpperRoman, 1999, "MCMXCIX"},
		{FormatLowerLetter, 2, "b"},
		{FormatUpperLetter, 26, "Z"},
		{FormatUpperLetter, 27, "AA"},
		{FormatUpperLetter, 54, "BB"},
		{FormatOrdinal, 1, "1st"},
		{FormatOrdinal, 2, "2nd"},
		{FormatOrdinal, 3, "3rd"},
		{FormatOrdinal, 11, "11th"},
		{FormatOrdinal, 13, "13th"},
		{FormatOrdinal, 21, "21st"},
		{FormatNumberInDash, 3, "- 3 -"},
		{FormatBullet, 1, ""},
		{FormatNone, 1, ""},
		// no native rendering, decimal fallback
		{FormatHebrew1, 9, "9"},
	}

	log := testLogger(t)
	for _, tt := range tests {
		if got := renderFormatted(tt.format, "", tt.value, log); got != tt.expected {
			t.Errorf("renderFormatted(%s, %d) = %q, want %q", tt.format.name(), tt.value, got, tt.expected)
		}
	}
}

func TestParseNumberingFormat(t *testing.T) {
	f, err := ParseNumberingFormat("lowerRoman")
	if err != nil {
		t.Fatalf("ParseNumberingFormat() error = %v", err)
	}
	if f != FormatLowerRoman {
		t.Errorf("ParseNumberingFormat(lowerRoman) = %v", f)
	}
	if _, err := ParseNumberingFormat("nope"); err == nil {
		t.Error("Expected error for unknown format name")
	}
}
