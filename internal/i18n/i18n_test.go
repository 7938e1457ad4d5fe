package i18n

import (
	"encoding/json"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		text Text
		lang Lang
		want string
	}{
		{"plain string", Text{Plain: "Cooldown 12s -> 16s"}, TR, "Cooldown 12s -> 16s"},
		{"empty plain en", Text{}, EN, "No details available"},
		{"empty plain tr", Text{}, TR, "Detay yok"},
		{"map exact", Text{ByLang: map[string]string{"en": "faster", "tr": "daha hızlı"}}, TR, "daha hızlı"},
		{"map falls back to en", Text{ByLang: map[string]string{"en": "faster", "de": "schneller"}}, TR, "faster"},
		{"map falls back to tr", Text{ByLang: map[string]string{"tr": "daha hızlı"}}, EN, "daha hızlı"},
		{"map without known languages", Text{ByLang: map[string]string{"de": "schneller"}}, TR, "Detay yok"},
		{"empty map", Text{ByLang: map[string]string{}}, EN, "No details available"},
		{"empty value skipped", Text{ByLang: map[string]string{"tr": "", "en": "faster"}}, TR, "faster"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := Resolve(tt.text, tt.lang)
			if first != tt.want {
				t.Errorf("Resolve() = %q, want %q", first, tt.want)
			}
			if second := Resolve(tt.text, tt.lang); second != first {
				t.Errorf("Resolve() not idempotent: %q then %q", first, second)
			}
		})
	}
}

func TestTextUnmarshal(t *testing.T) {
	var c struct {
		Details Text `json:"details"`
	}

	if err := json.Unmarshal([]byte(`{"details":"plain"}`), &c); err != nil {
		t.Fatal(err)
	}
	if c.Details.Localized() || c.Details.Plain != "plain" {
		t.Errorf("plain: got %+v", c.Details)
	}

	if err := json.Unmarshal([]byte(`{"details":{"en":"a","tr":"b","n":3}}`), &c); err != nil {
		t.Fatal(err)
	}
	if !c.Details.Localized() || c.Details.ByLang["tr"] != "b" {
		t.Errorf("map: got %+v", c.Details)
	}
	if _, ok := c.Details.ByLang["n"]; ok {
		t.Error("non-string values should be skipped")
	}

	c.Details = Text{Plain: "stale"}
	if err := c.Details.UnmarshalJSON([]byte("null")); err != nil {
		t.Fatal(err)
	}
	if c.Details.Plain != "" || c.Details.Localized() {
		t.Errorf("null: got %+v", c.Details)
	}

	if err := json.Unmarshal([]byte(`{"details":42}`), &c); err == nil {
		t.Error("expected error for numeric details")
	}
}

func TestMatch(t *testing.T) {
	tests := map[string]Lang{
		"en":    EN,
		"en-US": EN,
		"tr":    TR,
		"tr-TR": TR,
		"":      EN,
		"!!":    EN,
		"ja":    EN,
	}
	for in, want := range tests {
		if got := Match(in); got != want {
			t.Errorf("Match(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	if got := FormatTime("not a date", EN); got != "not a date" {
		t.Errorf("FormatTime passthrough = %q", got)
	}
	if got := FormatTime("2025-03-04T10:20:30Z", TR); len(got) != len("04.03.2025 10:20:30") {
		t.Errorf("FormatTime(tr) = %q", got)
	}
}

func TestTFallsBackToEnglish(t *testing.T) {
	if got := T(Lang("de"), LatestPatch); got != "Latest Patch" {
		t.Errorf("T(de) = %q", got)
	}
	if got := Heading(TR, LatestDataFor, "Valorant"); got != "Valorant için Son Veri" {
		t.Errorf("Heading(tr) = %q", got)
	}
	if got := Heading(EN, ArchiveDataFor, "Roblox"); got != "Archive Data for Roblox" {
		t.Errorf("Heading(en) = %q", got)
	}
}
