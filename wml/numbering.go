package wml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// NumberingFormat enumerates ST_NumberFormat (17.18.59). Only a handful
// render natively, the rest fall back to decimal at synthesis time.
type NumberingFormat int

const (
	FormatDecimal NumberingFormat = iota
	FormatAiueo
	FormatAiueoFullWidth
	FormatArabicAbjad
	FormatArabicAlpha
	FormatBahtText
	FormatBullet
	FormatCardinalText
	FormatChicago
	FormatChineseCounting
	FormatChineseCountingThousand
	FormatChineseLegalSimplified
	FormatChosung
	FormatCustom
	FormatDecimalEnclosedCircle
	FormatDecimalEnclosedCircleChinese
	FormatDecimalEnclosedFullstop
	FormatDecimalEnclosedParen
	FormatDecimalFullWidth
	FormatDecimalHalfWidth
	FormatDecimalZero
	FormatDollarText
	FormatGanada
	FormatHebrew1
	FormatHebrew2
	FormatHex
	FormatHindiConsonants
	FormatHindiCounting
	FormatHindiNumbers
	FormatHindiVowels
	FormatIdeographDigital
	FormatIdeographEnclosedCircle
	FormatIdeographLegalTraditional
	FormatIdeographTraditional
	FormatIdeographZodiac
	FormatIdeographZodiacTraditional
	FormatIroha
	FormatIrohaFullWidth
	FormatJapaneseCounting
	FormatJapaneseDigitalTenThousand
	FormatJapaneseLegal
	FormatKoreanCounting
	FormatKoreanDigital
	FormatKoreanDigital2
	FormatKoreanLegal
	FormatLowerLetter
	FormatLowerRoman
	FormatNone
	FormatNumberInDash
	FormatOrdinal
	FormatOrdinalText
	FormatRussianLower
	FormatRussianUpper
	FormatTaiwaneseCounting
	FormatTaiwaneseCountingThousand
	FormatTaiwaneseDigital
	FormatThaiCounting
	FormatThaiLetters
	FormatThaiNumbers
	FormatUpperLetter
	FormatUpperRoman
	FormatVietnameseCounting
)

var numberingFormatNames = map[string]NumberingFormat{
	"aiueo":                        FormatAiueo,
	"aiueoFullWidth":               FormatAiueoFullWidth,
	"arabicAbjad":                  FormatArabicAbjad,
	"arabicAlpha":                  FormatArabicAlpha,
	"bahtText":                     FormatBahtText,
	"bullet":                       FormatBullet,
	"cardinalText":                 FormatCardinalText,
	"chicago":                      FormatChicago,
	"chineseCounting":              FormatChineseCounting,
	"chineseCountingThousand":      FormatChineseCountingThousand,
	"chineseLegalSimplified":       FormatChineseLegalSimplified,
	"chosung":                      FormatChosung,
	"decimal":                      FormatDecimal,
	"decimalEnclosedCircle":        FormatDecimalEnclosedCircle,
	"decimalEnclosedCircleChinese": FormatDecimalEnclosedCircleChinese,
	"decimalEnclosedFullstop":      FormatDecimalEnclosedFullstop,
	"decimalEnclosedParen":         FormatDecimalEnclosedParen,
	"decimalFullWidth":             FormatDecimalFullWidth,
	"decimalHalfWidth":             FormatDecimalHalfWidth,
	"decimalZero":                  FormatDecimalZero,
	"dollarText":                   FormatDollarText,
	"ganada":                       FormatGanada,
	"hebrew1":                      FormatHebrew1,
	"hebrew2":                      FormatHebrew2,
	"hex":                          FormatHex,
	"hindiConsonants":              FormatHindiConsonants,
	"hindiCounting":                FormatHindiCounting,
	"hindiNumbers":                 FormatHindiNumbers,
	"hindiVowels":                  FormatHindiVowels,
	"ideographDigital":             FormatIdeographDigital,
	"ideographEnclosedCircle":      FormatIdeographEnclosedCircle,
	"ideographLegalTraditional":    FormatIdeographLegalTraditional,
	"ideographTraditional":         FormatIdeographTraditional,
	"ideographZodiac":              FormatIdeographZodiac,
	"ideographZodiacTraditional":   FormatIdeographZodiacTraditional,
	"iroha":                        FormatIroha,
	"irohaFullWidth":               FormatIrohaFullWidth,
	"japaneseCounting":             FormatJapaneseCounting,
	"japaneseDigitalTenThousand":   FormatJapaneseDigitalTenThousand,
	"japaneseLegal":                FormatJapaneseLegal,
	"koreanCounting":               FormatKoreanCounting,
	"koreanDigital":                FormatKoreanDigital,
	"koreanDigital2":               FormatKoreanDigital2,
	"koreanLegal":                  FormatKoreanLegal,
	"lowerLetter":                  FormatLowerLetter,
	"lowerRoman":                   FormatLowerRoman,
	"none":                         FormatNone,
	"numberInDash":                 FormatNumberInDash,
	"ordinal":                      FormatOrdinal,
	"ordinalText":                  FormatOrdinalText,
	"russianLower":                 FormatRussianLower,
	"russianUpper":                 FormatRussianUpper,
	"taiwaneseCounting":            FormatTaiwaneseCounting,
	"taiwaneseCountingThousand":    FormatTaiwaneseCountingThousand,
	"taiwaneseDigital":             FormatTaiwaneseDigital,
	"thaiCounting":                 FormatThaiCounting,
	"thaiLetters":                  FormatThaiLetters,
	"thaiNumbers":                  FormatThaiNumbers,
	"upperLetter":                  FormatUpperLetter,
	"upperRoman":                   FormatUpperRoman,
	"vietnameseCounting":           FormatVietnameseCounting,
}

// ParseNumberingFormat maps a numFmt w:val to its format.
func ParseNumberingFormat(val string) (NumberingFormat, error) {
	if f, ok := numberingFormatNames[val]; ok {
		return f, nil
	}
	return FormatDecimal, fmt.Errorf("%q is not a valid numbering format", val)
}

// LevelDefinition describes one level of an abstract numbering shape.
type LevelDefinition struct {
	Index         int
	Format        NumberingFormat
	CustomFormat  string
	StartingValue int
	// TextTemplate is the lvlText value: literal text with %1..%9
	// placeholders for the current values of levels one through nine.
	TextTemplate string
	Settings     TextSettings
	// DisplayAllLevelsArabic is the isLgl "legal numbering" flag: every
	// substituted level renders as decimal regardless of its own format.
	DisplayAllLevelsArabic bool
}

func parseLevelDefinition(el *etree.Element, log *zap.Logger) (*LevelDefinition, error) {
	idxVal, ok := attrValue(el, "ilvl")
	if !ok {
		return nil, fmt.Errorf("lvl without ilvl attribute")
	}
	idx, err := strconv.Atoi(idxVal)
	if err != nil {
		return nil, fmt.Errorf("ilvl value %q: %w", idxVal, err)
	}

	def := &LevelDefinition{
		Index:         idx,
		Format:        FormatDecimal,
		StartingValue: 1,
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "isLgl":
			def.DisplayAllLevelsArabic = true
		case "lvlText":
			val, ok := attrValue(child, "val")
			if !ok {
				return nil, fmt.Errorf("lvlText without val attribute")
			}
			def.TextTemplate = val
		case "numFmt":
			val, ok := attrValue(child, "val")
			if !ok {
				return nil, fmt.Errorf("numFmt without val attribute")
			}
			if val == "custom" {
				format, ok := attrValue(child, "format")
				if !ok {
					return nil, fmt.Errorf("custom numFmt without format attribute")
				}
				def.Format = FormatCustom
				def.CustomFormat = format
				break
			}
			f, err := ParseNumberingFormat(val)
			if err != nil {
				return nil, err
			}
			def.Format = f
		case "start":
			val, ok := attrValue(child, "val")
			if !ok {
				return nil, fmt.Errorf("start without val attribute")
			}
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("start value %q: %w", val, err)
			}
			def.StartingValue = n
		case "pPr":
			for _, prop := range child.ChildElements() {
				if prop.Tag == "ind" {
					if err := def.Settings.ApplyIndentation(prop); err != nil {
						return nil, err
					}
				}
			}
		case "rPr":
			if err := def.Settings.ApplyRunProperties(child, nil, log); err != nil {
				return nil, err
			}
		case "lvlJc", "suff", "lvlRestart", "pStyle":
			// presentation details the node tree does not model yet
		default:
			log.Debug("Ignoring level element", zap.Int("level", idx), zap.String("tag", child.Tag))
		}
	}
	return def, nil
}

// RenderValue produces the display text for a counter value in this level's
// format. Formats without a native rendering fall back to decimal with a
// warning.
func (d *LevelDefinition) RenderValue(value int, log *zap.Logger) string {
	return renderFormatted(d.Format, d.CustomFormat, value, log)
}

func renderFormatted(format NumberingFormat, custom string, value int, log *zap.Logger) string {
	switch format {
	case FormatDecimal:
		return strconv.Itoa(value)
	case FormatDecimalZero:
		if value >= 0 && value < 10 {
			return "0" + strconv.Itoa(value)
		}
		return strconv.Itoa(value)
	case FormatLowerRoman:
		return strings.ToLower(romanUpper(value))
	case FormatUpperRoman:
		return romanUpper(value)
	case FormatLowerLetter:
		return strings.ToLower(letterUpper(value))
	case FormatUpperLetter:
		return letterUpper(value)
	case FormatOrdinal:
		return ordinal(value)
	case FormatNumberInDash:
		return "- " + strconv.Itoa(value) + " -"
	case FormatBullet, FormatNone:
		// bullets take their glyph from the level text, none renders nothing
		return ""
	default:
		name := custom
		if format != FormatCustom {
			name = format.name()
		}
		log.Warn("Unsupported numbering format, rendering as decimal", zap.String("format", name))
		return strconv.Itoa(value)
	}
}

func (f NumberingFormat) name() string {
	for name, v := range numberingFormatNames {
		if v == f {
			return name
		}
	}
	return fmt.Sprintf("NumberingFormat(%d)", int(f))
}

var romanDigits = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func romanUpper(value int) string {
	if value <= 0 {
		return strconv.Itoa(value)
	}
	var sb strings.Builder
	for _, d := range romanDigits {
		for value >= d.value {
			sb.WriteString(d.symbol)
			value -= d.value
		}
	}
	return sb.String()
}

// letterUpper renders 1..26 as A..Z, then doubles: 27 is AA, 28 is BB.
func letterUpper(value int) string {
	if value <= 0 {
		return strconv.Itoa(value)
	}
	repeat := (value-1)/26 + 1
	letter := byte('A' + (value-1)%26)
	return strings.Repeat(string(letter), repeat)
}

func ordinal(value int) string {
	suffix := "th"
	switch {
	case value%100 >= 11 && value%100 <= 13:
	case value%10 == 1:
		suffix = "st"
	case value%10 == 2:
		suffix = "nd"
	case value%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(value) + suffix
}

// AbstractNumberingDefinition is the reusable list shape shared by
// instances.
type AbstractNumberingDefinition struct {
	ID     int
	Levels map[int]*LevelDefinition
}

// NumberingDefinitionInstance is one logical list in the document. Without a
// resolved abstract reference it cannot produce numbering text.
type NumberingDefinitionInstance struct {
	ID       int
	Abstract *AbstractNumberingDefinition
}

// NumberingManager holds the two indirection tables built once per load.
type NumberingManager struct {
	abstracts map[int]*AbstractNumberingDefinition
	instances map[int]*NumberingDefinitionInstance
}

// NewNumberingManager substitutes for a missing numbering part.
func NewNumberingManager() *NumberingManager {
	return &NumberingManager{
		abstracts: make(map[int]*AbstractNumberingDefinition),
		instances: make(map[int]*NumberingDefinitionInstance),
	}
}

// ParseNumbering builds the manager in two independent passes, abstract
// definitions first, so an instance may reference an abstract definition
// that appears later in the part. Duplicate ids are a format violation and
// abort the load.
func ParseNumbering(doc *etree.Document, log *zap.Logger) (*NumberingManager, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil numbering document")
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("numbering document has no root element")
	}
	if root.Tag != "numbering" {
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}

	m := NewNumberingManager()

	for _, el := range root.ChildElements() {
		if el.Tag != "abstractNum" {
			continue
		}
		def, err := parseAbstractDefinition(el, log)
		if err != nil {
			return nil, err
		}
		if _, exists := m.abstracts[def.ID]; exists {
			return nil, fmt.Errorf("duplicate abstractNumId %d", def.ID)
		}
		m.abstracts[def.ID] = def
	}

	for _, el := range root.ChildElements() {
		switch el.Tag {
		case "abstractNum":
			// first pass
		case "num":
			inst, err := m.parseInstance(el, log)
			if err != nil {
				return nil, err
			}
			if _, exists := m.instances[inst.ID]; exists {
				return nil, fmt.Errorf("duplicate numId %d", inst.ID)
			}
			m.instances[inst.ID] = inst
		default:
			log.Debug("Ignoring element in numbering part", zap.String("tag", el.Tag))
		}
	}
	return m, nil
}

func parseAbstractDefinition(el *etree.Element, log *zap.Logger) (*AbstractNumberingDefinition, error) {
	idVal, ok := attrValue(el, "abstractNumId")
	if !ok {
		return nil, fmt.Errorf("abstractNum without abstractNumId attribute")
	}
	id, err := strconv.Atoi(idVal)
	if err != nil {
		return nil, fmt.Errorf("abstractNumId value %q: %w", idVal, err)
	}

	def := &AbstractNumberingDefinition{
		ID:     id,
		Levels: make(map[int]*LevelDefinition),
	}
	for _, child := range el.ChildElements() {
		if child.Tag != "lvl" {
			continue
		}
		lvl, err := parseLevelDefinition(child, log)
		if err != nil {
			return nil, fmt.Errorf("abstractNum %d: %w", id, err)
		}
		def.Levels[lvl.Index] = lvl
	}
	return def, nil
}

func (m *NumberingManager) parseInstance(el *etree.Element, log *zap.Logger) (*NumberingDefinitionInstance, error) {
	idVal, ok := attrValue(el, "numId")
	if !ok {
		return nil, fmt.Errorf("num without numId attribute")
	}
	id, err := strconv.Atoi(idVal)
	if err != nil {
		return nil, fmt.Errorf("numId value %q: %w", idVal, err)
	}

	inst := &NumberingDefinitionInstance{ID: id}
	for _, child := range el.ChildElements() {
		if child.Tag != "abstractNumId" {
			continue
		}
		val, ok := attrValue(child, "val")
		if !ok {
			return nil, fmt.Errorf("num %d: abstractNumId without val attribute", id)
		}
		ref, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("num %d: abstractNumId value %q: %w", id, val, err)
		}
		abs, exists := m.abstracts[ref]
		if !exists {
			log.Warn("Numbering instance references unknown abstract definition",
				zap.Int("numId", id), zap.Int("abstractNumId", ref))
			continue
		}
		inst.Abstract = abs
	}
	return inst, nil
}

// FindDefinitionInstance returns the instance registered under numID or nil.
func (m *NumberingManager) FindDefinitionInstance(numID int) *NumberingDefinitionInstance {
	return m.instances[numID]
}

// counterKey addresses one list level's running counter.
type counterKey struct {
	numID int
	level int
}

// Counters keeps the mutable per-(instance, level) counter state outside the
// shared definitions, so abstract shapes reused by several instances never
// interfere. Owned by a single layout pass.
type Counters struct {
	values map[counterKey]int
}

func NewCounters() *Counters {
	return &Counters{values: make(map[counterKey]int)}
}

// Next advances the counter for (numID, level) and returns the new value.
// The first call yields the level's starting value.
func (c *Counters) Next(numID int, level *LevelDefinition) int {
	key := counterKey{numID: numID, level: level.Index}
	if v, ok := c.values[key]; ok {
		c.values[key] = v + 1
		return v + 1
	}
	c.values[key] = level.StartingValue
	return level.StartingValue
}

// Current returns the counter without advancing; before the first Next it
// reports the starting value.
func (c *Counters) Current(numID int, level *LevelDefinition) int {
	if v, ok := c.values[counterKey{numID: numID, level: level.Index}]; ok {
		return v
	}
	return level.StartingValue
}

// NumberingText advances the counter for the referenced level and renders
// its display text. Placeholders %1..%9 in the level text substitute the
// current values of levels one through nine; an empty template falls back
// to "value." in the level's own format.
func (m *NumberingManager) NumberingText(ref *NumberingRef, counters *Counters, log *zap.Logger) (string, *LevelDefinition, error) {
	inst := m.FindDefinitionInstance(ref.NumID)
	if inst == nil {
		return "", nil, fmt.Errorf("no numbering definition instance %d", ref.NumID)
	}
	if inst.Abstract == nil {
		return "", nil, fmt.Errorf("numbering instance %d has no abstract definition", ref.NumID)
	}
	level, ok := inst.Abstract.Levels[ref.Level]
	if !ok {
		return "", nil, fmt.Errorf("numbering instance %d has no level %d", ref.NumID, ref.Level)
	}

	value := counters.Next(ref.NumID, level)

	if len(level.TextTemplate) == 0 {
		return level.RenderValue(value, log) + ".", level, nil
	}

	var sb strings.Builder
	tmpl := level.TextTemplate
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' || i+1 >= len(tmpl) {
			sb.WriteByte(tmpl[i])
			continue
		}
		d := tmpl[i+1]
		if d < '1' || d > '9' {
			sb.WriteByte(tmpl[i])
			continue
		}
		i++
		refIdx := int(d - '1')
		refLevel, ok := inst.Abstract.Levels[refIdx]
		if !ok {
			log.Warn("Level text references undefined level",
				zap.Int("numId", ref.NumID), zap.Int("level", refIdx))
			continue
		}
		refValue := counters.Current(ref.NumID, refLevel)
		if refIdx == level.Index {
			refValue = value
		}
		if level.DisplayAllLevelsArabic {
			sb.WriteString(strconv.Itoa(refValue))
			continue
		}
		sb.WriteString(refLevel.RenderValue(refValue, log))
	}
	return sb.String(), level, nil
}
