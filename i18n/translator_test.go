package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("invalid_type", nil); msg == "invalid_type" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("invalid_type", nil); msg == "invalid type" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_Placeholders(t *testing.T) {
	cases := []struct {
		code string
		data map[string]string
		want string
	}{
		{"required", map[string]string{"field": "title"}, "required field title missing"},
		{"required", nil, "required field missing"},
		{"invalid_format", map[string]string{"kind": "field name", "value": `"2x"`}, `invalid field name "2x"`},
		{"no_such_code", nil, "no_such_code"},
	}
	for _, c := range cases {
		if got := T(c.code, c.data); got != c.want {
			t.Errorf("T(%q, %v) = %q, want %q", c.code, c.data, got, c.want)
		}
	}
}

type fixed string

func (f fixed) Message(string, map[string]string) string { return string(f) }

func TestSetTranslator_CustomAndReset(t *testing.T) {
	SetTranslator(fixed("custom"))
	if got := T("required", nil); got != "custom" {
		t.Fatalf("custom translator not used: %q", got)
	}
	SetTranslator(nil)
	if got := T("unknown_key", nil); got != "unknown key" {
		t.Fatalf("reset to en failed: %q", got)
	}
}
