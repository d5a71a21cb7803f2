package llvm

import (
	"fmt"
	"strings"

	"rill/internal/mir"
)

// TempName returns the canonical value name for a MIR temporary.
func TempName(id mir.TempID) string {
	return fmt.Sprintf("%%t%d", id)
}

func localPtrName(id mir.LocalID) string {
	return fmt.Sprintf("%%local_%d", id)
}

func globalName(id mir.GlobalID) string {
	return fmt.Sprintf("@g%d", id)
}

func blockLabelHint(id mir.BlockID) string {
	return fmt.Sprintf("bb%d", id)
}

func ensurePrefix(name string, prefix byte) string {
	if name == "" {
		return string(prefix)
	}
	if name[0] == prefix {
		return name
	}
	return string(prefix) + name
}

func formatLabelOperand(label string) string {
	if strings.HasPrefix(label, "%") {
		return label
	}
	return "%" + label
}

// sanitizeHint reduces a human-readable hint to an identifier-safe base name.
func sanitizeHint(hint, fallback string) string {
	base := hint
	if base == "" {
		base = fallback
	}
	var sb strings.Builder
	sb.Grow(len(base))
	for i := 0; i < len(base); i++ {
		ch := base[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z',
			ch >= '0' && ch <= '9', ch == '_', ch == '.':
			sb.WriteByte(ch)
		default:
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if out == "" {
		return fallback
	}
	return out
}

// escapeStringLiteral renders raw bytes in LLVM c"..." syntax. Printable
// bytes pass through; everything else becomes a two-digit uppercase hex
// escape.
func escapeStringLiteral(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch ch {
		case '\\':
			sb.WriteString(`\5C`)
		case '"':
			sb.WriteString(`\22`)
		case '\n':
			sb.WriteString(`\0A`)
		case '\r':
			sb.WriteString(`\0D`)
		case '\t':
			sb.WriteString(`\09`)
		default:
			if ch >= 0x20 && ch < 0x7F {
				sb.WriteByte(ch)
			} else {
				fmt.Fprintf(&sb, `\%02X`, ch)
			}
		}
	}
	return sb.String()
}
