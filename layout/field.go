package layout

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// FieldKind is the set of field instruction codes the engine resolves itself.
type FieldKind int

const (
	FieldUnknown FieldKind = iota
	FieldDate
)

// Field is one parsed complex-field instruction: the instrText content
// collected between the begin and separate field characters.
type Field struct {
	Kind        FieldKind
	Instruction string
}

// ParseFieldInstruction reads the field code from an instruction string.
// Formatting switches are not interpreted. Unknown codes produce a
// FieldUnknown that resolves to nothing.
func ParseFieldInstruction(in string, log *zap.Logger) Field {
	f := Field{Instruction: strings.TrimSpace(in)}
	parts := strings.Fields(in)
	if len(parts) == 0 {
		log.Warn("Empty field instruction")
		return f
	}
	switch parts[0] {
	case "DATE":
		f.Kind = FieldDate
	default:
		log.Warn("Unknown field instruction", zap.String("code", parts[0]))
	}
	return f
}

// Resolve produces the field's display text. DATE renders day-month-year.
func (f Field) Resolve(now time.Time) string {
	if f.Kind == FieldDate {
		return now.Format("02-01-2006")
	}
	return ""
}
