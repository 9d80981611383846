package config

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"
)

// Specification of requested layout tree dump detail.
type TreeDumpMode int

const (
	TreeDumpModeNone TreeDumpMode = iota
	TreeDumpModeSummary
	TreeDumpModeFull
)

var treeDumpModeNames = map[TreeDumpMode]string{
	TreeDumpModeNone:    "none",
	TreeDumpModeSummary: "summary",
	TreeDumpModeFull:    "full",
}

func (m TreeDumpMode) IsValid() bool {
	_, ok := treeDumpModeNames[m]
	return ok
}

func (m TreeDumpMode) String() string {
	if s, ok := treeDumpModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("TreeDumpMode(%d)", int(m))
}

func ParseTreeDumpMode(name string) (TreeDumpMode, error) {
	for m, s := range treeDumpModeNames {
		if s == name {
			return m, nil
		}
	}
	return TreeDumpMode(0), fmt.Errorf("%s is not a valid TreeDumpMode", name)
}

func (m TreeDumpMode) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("%d is not a valid TreeDumpMode", int(m))
	}
	return []byte(m.String()), nil
}

func (m *TreeDumpMode) UnmarshalText(text []byte) error {
	val, err := ParseTreeDumpMode(string(text))
	if err != nil {
		return err
	}
	*m = val
	return nil
}

// yaml.v3 does not recognize encoding.TextMarshaler, it needs its own
// interfaces to round-trip the symbolic names.
func (m TreeDumpMode) MarshalYAML() (any, error) {
	data, err := m.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *TreeDumpMode) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	return m.UnmarshalText([]byte(name))
}
