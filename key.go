package cadence

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Code identifies a key in a platform-neutral way. Printable keys use their
// uppercase Unicode codepoint; special keys live above CodeSpecial so they
// can never collide with text input.
type Code uint32

// CodeSpecial is the base of the non-printable key range.
const CodeSpecial Code = 0x0100_0000

const (
	CodeEscape Code = CodeSpecial + iota
	CodeTab
	CodeBackspace
	CodeReturn
	CodeInsert
	CodeDelete
	CodeHome
	CodeEnd
	CodeLeft
	CodeUp
	CodeRight
	CodeDown
	CodePageUp
	CodePageDown
	CodeShift
	CodeControl
	CodeMeta
	CodeAlt
	CodeF1
	CodeF2
	CodeF3
	CodeF4
	CodeF5
	CodeF6
	CodeF7
	CodeF8
	CodeF9
	CodeF10
	CodeF11
	CodeF12
)

// Printable keys referenced by name in bindings.
const (
	CodeSpace        Code = 0x20
	CodePlus         Code = 0x2B
	CodeComma        Code = 0x2C
	CodeMinus        Code = 0x2D
	CodePeriod       Code = 0x2E
	CodeSlash        Code = 0x2F
	CodeEqual        Code = 0x3D
	CodeBracketLeft  Code = 0x5B
	CodeBracketRight Code = 0x5D
)

// IsModifier reports whether the code is a bare modifier key. Modifier
// presses never start or end a binding on their own.
func (c Code) IsModifier() bool {
	switch c {
	case CodeShift, CodeControl, CodeMeta, CodeAlt:
		return true
	}
	return false
}

// String returns a readable name for the code: the canonical name for
// special keys, the character itself for printable ones, hex otherwise.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	if c > 0x20 && c < 0x7F {
		return string(rune(c))
	}
	return fmt.Sprintf("0x%X", uint32(c))
}

var codeNames = map[Code]string{
	CodeSpace:     "Space",
	CodeEscape:    "Escape",
	CodeTab:       "Tab",
	CodeBackspace: "Backspace",
	CodeReturn:    "Return",
	CodeInsert:    "Insert",
	CodeDelete:    "Delete",
	CodeHome:      "Home",
	CodeEnd:       "End",
	CodeLeft:      "Left",
	CodeUp:        "Up",
	CodeRight:     "Right",
	CodeDown:      "Down",
	CodePageUp:    "PageUp",
	CodePageDown:  "PageDown",
	CodeShift:     "Shift",
	CodeControl:   "Control",
	CodeMeta:      "Meta",
	CodeAlt:       "Alt",
	CodeF1:        "F1",
	CodeF2:        "F2",
	CodeF3:        "F3",
	CodeF4:        "F4",
	CodeF5:        "F5",
	CodeF6:        "F6",
	CodeF7:        "F7",
	CodeF8:        "F8",
	CodeF9:        "F9",
	CodeF10:       "F10",
	CodeF11:       "F11",
	CodeF12:       "F12",
}

// codeNameMap maps binding names (lowercase) to codes.
var codeNameMap = map[string]Code{
	"space":        CodeSpace,
	"plus":         CodePlus,
	"minus":        CodeMinus,
	"equal":        CodeEqual,
	"equals":       CodeEqual,
	"comma":        CodeComma,
	"period":       CodePeriod,
	"dot":          CodePeriod,
	"slash":        CodeSlash,
	"bracketleft":  CodeBracketLeft,
	"bracketright": CodeBracketRight,
	"escape":       CodeEscape,
	"esc":          CodeEscape,
	"tab":          CodeTab,
	"backspace":    CodeBackspace,
	"return":       CodeReturn,
	"enter":        CodeReturn,
	"insert":       CodeInsert,
	"delete":       CodeDelete,
	"del":          CodeDelete,
	"home":         CodeHome,
	"end":          CodeEnd,
	"left":         CodeLeft,
	"up":           CodeUp,
	"right":        CodeRight,
	"down":         CodeDown,
	"pageup":       CodePageUp,
	"pagedown":     CodePageDown,
	"f1":           CodeF1,
	"f2":           CodeF2,
	"f3":           CodeF3,
	"f4":           CodeF4,
	"f5":           CodeF5,
	"f6":           CodeF6,
	"f7":           CodeF7,
	"f8":           CodeF8,
	"f9":           CodeF9,
	"f10":          CodeF10,
	"f11":          CodeF11,
	"f12":          CodeF12,
}

// Modifier is a bitmask of held modifier keys.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModAlt indicates the Alt key (Option on macOS).
	ModAlt

	// ModMeta indicates the Meta key (Cmd on macOS, Win on Windows).
	ModMeta
)

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// With returns a new Modifier with the specified modifier added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns a new Modifier with the specified modifier removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// IsEmpty returns true if no modifiers are set.
func (m Modifier) IsEmpty() bool {
	return m == ModNone
}

// String returns a representation like "Ctrl+Alt".
func (m Modifier) String() string {
	if m == ModNone {
		return ""
	}

	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	if m.Has(ModMeta) {
		parts = append(parts, "Meta")
	}
	return strings.Join(parts, "+")
}

// modifierNameMap maps modifier names (lowercase) to Modifier values.
var modifierNameMap = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"shift":   ModShift,
	"meta":    ModMeta,
	"cmd":     ModMeta,
	"command": ModMeta,
	"win":     ModMeta,
	"super":   ModMeta,
}

// ModifierFromName returns the Modifier for a given name (case-insensitive).
// Returns ModNone if the name is not recognized.
func ModifierFromName(name string) Modifier {
	if m, ok := modifierNameMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m
	}
	return ModNone
}

// Combo pairs a key code with the exact modifier set that must be held for
// a binding to match.
type Combo struct {
	Code Code
	Mods Modifier
}

// String returns a representation like "Ctrl+Shift+Plus".
func (c Combo) String() string {
	if c.Mods == ModNone {
		return c.Code.String()
	}
	return c.Mods.String() + "+" + c.Code.String()
}

// Event is a single key edge reported by the host. Repeat marks events
// synthesized by OS auto-repeat rather than a fresh physical press.
type Event struct {
	Code   Code
	Mods   Modifier
	Repeat bool
}

// ParseCombo parses a binding spec like "ctrl+plus", "shift+e" or "0x5B".
// The last segment names the key; everything before it must be modifier
// names. Single characters map to their codepoint, and numeric segments
// (decimal or 0x-hex) are accepted for keys without a name. A trailing "+"
// binds the plus key itself, so "ctrl++" works.
func ParseCombo(spec string) (Combo, error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return Combo{}, fmt.Errorf("empty key combo")
	}

	keyPart := s
	var modPart string
	if i := strings.LastIndex(s, "+"); i > 0 && i < len(s)-1 {
		modPart, keyPart = s[:i], s[i+1:]
	} else if strings.HasSuffix(s, "+") && len(s) > 1 {
		keyPart = "+"
		modPart = strings.TrimSuffix(s[:len(s)-1], "+")
	}

	var mods Modifier
	if modPart != "" {
		for _, part := range strings.Split(modPart, "+") {
			mod := ModifierFromName(part)
			if mod == ModNone {
				return Combo{}, fmt.Errorf("unknown modifier %q in combo %q", part, spec)
			}
			mods = mods.With(mod)
		}
	}

	code, err := parseCode(keyPart)
	if err != nil {
		return Combo{}, fmt.Errorf("invalid key in combo %q: %w", spec, err)
	}
	return Combo{Code: code, Mods: mods}, nil
}

func parseCode(name string) (Code, error) {
	name = strings.TrimSpace(name)
	if c, ok := codeNameMap[strings.ToLower(name)]; ok {
		return c, nil
	}
	if r := []rune(name); len(r) == 1 {
		return Code(unicode.ToUpper(r[0])), nil
	}
	if n, err := strconv.ParseUint(name, 0, 32); err == nil {
		return Code(n), nil
	}
	return 0, fmt.Errorf("unknown key name %q", name)
}
