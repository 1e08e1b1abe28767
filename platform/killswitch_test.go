package platform

import (
	"reflect"
	"testing"
)

func TestParseCombo(t *testing.T) {
	tests := []struct {
		combo string
		want  []string
	}{
		{"ctrl+shift+q", []string{"q", "ctrl", "shift"}},
		{"CTRL+Q", []string{"q", "ctrl"}},
		{"control+alt+delete", []string{"delete", "ctrl", "alt"}},
		{"f9", []string{"f9"}},
		{"cmd + space", []string{"space", "cmd"}},
		{"win+x", []string{"x", "cmd"}},
	}

	for _, tt := range tests {
		got, err := parseCombo(tt.combo)
		if err != nil {
			t.Errorf("parseCombo(%q) error = %v", tt.combo, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseCombo(%q) = %v, want %v", tt.combo, got, tt.want)
		}
	}
}

func TestParseComboErrors(t *testing.T) {
	for _, combo := range []string{"", "ctrl+shift", "a+b", "++"} {
		if _, err := parseCombo(combo); err == nil {
			t.Errorf("parseCombo(%q) = nil error, want failure", combo)
		}
	}
}
