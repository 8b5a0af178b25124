package cadence

import (
	"testing"
)

func TestParseCombo(t *testing.T) {
	tests := []struct {
		spec string
		want Combo
	}{
		{"ctrl+plus", Combo{Code: CodePlus, Mods: ModCtrl}},
		{"Ctrl+Shift+E", Combo{Code: 'E', Mods: ModCtrl | ModShift}},
		{"meta+minus", Combo{Code: CodeMinus, Mods: ModMeta}},
		{"plus", Combo{Code: CodePlus}},
		{"e", Combo{Code: 'E'}},
		{"ctrl++", Combo{Code: CodePlus, Mods: ModCtrl}},
		{"shift+=", Combo{Code: CodeEqual, Mods: ModShift}},
		{"0x5B", Combo{Code: CodeBracketLeft}},
		{"91", Combo{Code: CodeBracketLeft}},
		{"f5", Combo{Code: CodeF5}},
		{"alt+escape", Combo{Code: CodeEscape, Mods: ModAlt}},
		{" ctrl+plus ", Combo{Code: CodePlus, Mods: ModCtrl}},
	}

	for _, tt := range tests {
		got, err := ParseCombo(tt.spec)
		if err != nil {
			t.Errorf("ParseCombo(%q) returned error: %v", tt.spec, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCombo(%q) = %+v, want %+v", tt.spec, got, tt.want)
		}
	}
}

func TestParseCombo_Errors(t *testing.T) {
	for _, spec := range []string{"", "   ", "bogus+e", "ctrl+notakey"} {
		if _, err := ParseCombo(spec); err == nil {
			t.Errorf("ParseCombo(%q) expected error", spec)
		}
	}
}

func TestComboString(t *testing.T) {
	tests := []struct {
		combo Combo
		want  string
	}{
		{Combo{Code: CodePlus, Mods: ModCtrl}, "Ctrl++"},
		{Combo{Code: CodeF5, Mods: ModCtrl | ModShift}, "Ctrl+Shift+F5"},
		{Combo{Code: CodePlus}, "+"},
		{Combo{Code: CodeEscape, Mods: ModAlt}, "Alt+Escape"},
		{Combo{Code: 'E'}, "E"},
	}

	for _, tt := range tests {
		if got := tt.combo.String(); got != tt.want {
			t.Errorf("Combo(%+v).String() = %q, want %q", tt.combo, got, tt.want)
		}
	}
}

func TestCodeIsModifier(t *testing.T) {
	for _, code := range []Code{CodeShift, CodeControl, CodeAlt, CodeMeta} {
		if !code.IsModifier() {
			t.Errorf("expected %s to be a modifier", code)
		}
	}
	for _, code := range []Code{CodePlus, CodeEscape, 'E', CodeF1} {
		if code.IsModifier() {
			t.Errorf("expected %s not to be a modifier", code)
		}
	}
}

func TestModifierHas(t *testing.T) {
	tests := []struct {
		mod    Modifier
		check  Modifier
		expect bool
	}{
		{ModNone, ModCtrl, false},
		{ModCtrl, ModCtrl, true},
		{ModCtrl | ModAlt, ModCtrl, true},
		{ModCtrl | ModAlt, ModAlt, true},
		{ModCtrl | ModAlt, ModShift, false},
		{ModCtrl | ModAlt | ModShift | ModMeta, ModMeta, true},
	}

	for _, tt := range tests {
		if got := tt.mod.Has(tt.check); got != tt.expect {
			t.Errorf("Modifier(%d).Has(%d) = %v, want %v", tt.mod, tt.check, got, tt.expect)
		}
	}
}

func TestModifierWithWithout(t *testing.T) {
	mod := ModNone.With(ModCtrl).With(ModAlt)
	if !mod.Has(ModCtrl) || !mod.Has(ModAlt) {
		t.Error("expected With to accumulate modifiers")
	}

	mod = mod.Without(ModAlt)
	if mod.Has(ModAlt) {
		t.Error("expected Without to remove Alt")
	}
	if !mod.Has(ModCtrl) {
		t.Error("expected Without to keep Ctrl")
	}
	if !ModNone.IsEmpty() || mod.IsEmpty() {
		t.Error("IsEmpty mismatch")
	}
}

func TestModifierString(t *testing.T) {
	tests := []struct {
		mod  Modifier
		want string
	}{
		{ModNone, ""},
		{ModCtrl, "Ctrl"},
		{ModCtrl | ModAlt, "Ctrl+Alt"},
		{ModCtrl | ModAlt | ModShift | ModMeta, "Ctrl+Alt+Shift+Meta"},
	}

	for _, tt := range tests {
		if got := tt.mod.String(); got != tt.want {
			t.Errorf("Modifier(%d).String() = %q, want %q", tt.mod, got, tt.want)
		}
	}
}

func TestModifierFromName(t *testing.T) {
	tests := []struct {
		name string
		want Modifier
	}{
		{"ctrl", ModCtrl},
		{"Control", ModCtrl},
		{"alt", ModAlt},
		{"option", ModAlt},
		{"shift", ModShift},
		{"meta", ModMeta},
		{"cmd", ModMeta},
		{"super", ModMeta},
		{"unknown", ModNone},
		{"", ModNone},
	}

	for _, tt := range tests {
		if got := ModifierFromName(tt.name); got != tt.want {
			t.Errorf("ModifierFromName(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestCodeString(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CodePlus, "+"},
		{CodeSpace, "Space"},
		{CodeF12, "F12"},
		{'E', "E"},
		{Code(0x07), "0x7"},
	}

	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("Code(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}
