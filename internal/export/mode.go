package export

import (
	"fmt"
	"strings"
)

// Mode is the convention used to expose a unit's top-level names.
type Mode uint8

const (
	ModeNone     Mode = iota
	ModeList          // export { a, b };
	ModeProperty      // ns.a = a;
)

// DefaultNamespace is the shared export record used by property mode when
// no namespace path is configured.
const DefaultNamespace = "module.exports"

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeList:
		return "list"
	case ModeProperty:
		return "property-assignment"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode accepts the canonical names plus the module-format aliases
// es6/esm (list) and commonjs/cjs/global (property).
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ModeNone, true
	case "list", "es6", "es2015", "esm":
		return ModeList, true
	case "property-assignment", "property", "commonjs", "cjs", "global":
		return ModeProperty, true
	}
	return ModeNone, false
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, ok := ParseMode(string(text))
	if !ok {
		return fmt.Errorf("unknown export mode %q", text)
	}
	*m = parsed
	return nil
}
