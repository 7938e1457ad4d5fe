package patch

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode_UnknownTypeGroupedUnderOther(t *testing.T) {
	payload := `{
  "impact_score": 7.5,
  "impact_label": "Büyük",
  "changes": [
    {"type": "buff", "target": "Jett", "ability": "Updraft", "details": "cooldown 16s -> 12s"},
    {"type": "ultra_rare_type", "target": "Sunset", "details": {"en": "new map", "tr": "yeni harita"}},
    {"type": "NERF", "target": "Operator", "details": "falloff"},
    {"target": "Melee", "details": "crash fix"},
    {"type": null, "target": "Spike", "details": ""}
  ]
}`
	s, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(s.Changes) != 5 {
		t.Fatalf("expected 5 changes, got %d", len(s.Changes))
	}
	if s.ImpactLabel != ImpactHigh {
		t.Errorf("impact label = %q, want High", s.ImpactLabel)
	}
	if !s.HasImpact() || *s.ImpactScore != 7.5 {
		t.Errorf("impact score = %v", s.ImpactScore)
	}

	groups := s.Group()
	got := map[ChangeType][]string{}
	for typ, list := range groups {
		for _, c := range list {
			got[typ] = append(got[typ], c.Target)
		}
	}
	want := map[ChangeType][]string{
		Buff:  {"Jett"},
		Nerf:  {"Operator"},
		Other: {"Sunset", "Melee", "Spike"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}

	total := 0
	for _, list := range groups {
		total += len(list)
	}
	if total != len(s.Changes) {
		t.Errorf("grouping dropped changes: %d of %d", total, len(s.Changes))
	}

	if string(s.Raw) != payload {
		t.Error("raw payload not retained")
	}
}

func TestDecode_MissingImpact(t *testing.T) {
	s, err := Decode([]byte(`{"changes": []}`))
	if err != nil {
		t.Fatal(err)
	}
	if s.HasImpact() {
		t.Error("expected no impact score")
	}
	if s.ImpactLabel != ImpactNone {
		t.Errorf("expected no impact label, got %q", s.ImpactLabel)
	}
}

func TestDecode_EmptyPayload(t *testing.T) {
	for _, payload := range []string{"null", "  null\n", "", " "} {
		s, err := Decode([]byte(payload))
		if !errors.Is(err, ErrEmpty) {
			t.Errorf("Decode(%q) err = %v, want ErrEmpty", payload, err)
		}
		if s != nil {
			t.Errorf("Decode(%q) = %+v, want nil", payload, s)
		}
	}
}

func TestParseImpactLabel(t *testing.T) {
	tests := map[string]ImpactLabel{
		"":        ImpactNone,
		"Küçük":   ImpactLow,
		"low":     ImpactLow,
		"Orta":    ImpactMedium,
		"MEDIUM":  ImpactMedium,
		"Büyük":   ImpactHigh,
		"High":    ImpactHigh,
		"unknown": ImpactLow,
	}
	for in, want := range tests {
		if got := ParseImpactLabel(in); got != want {
			t.Errorf("ParseImpactLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecodeArchiveIndex(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
		wantErr bool
	}{
		{"empty list", `{"archives": []}`, 0, false},
		{"missing field", `{}`, 0, false},
		{"null", `{"archives": null}`, 0, false},
		{"two entries", `{"archives": [{"key":"b","date":"2025-02-01T00:00:00Z"},{"key":"a","date":"2025-03-01T00:00:00Z","size":1024}]}`, 2, false},
		{"malformed", `{"archives": "nope"}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := DecodeArchiveIndex([]byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if idx == nil {
				t.Fatal("index must be non-nil on success")
			}
			if len(idx) != tt.want {
				t.Errorf("len = %d, want %d", len(idx), tt.want)
			}
		})
	}
}

func TestArchiveIndex_KeepsBackendOrder(t *testing.T) {
	idx, err := DecodeArchiveIndex([]byte(`{"archives": [{"key":"older","date":"2024-01-01T00:00:00Z"},{"key":"newer","date":"2025-01-01T00:00:00Z"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if idx[0].Key != "older" || idx[1].Key != "newer" {
		t.Errorf("order changed: %+v", idx)
	}
	if _, ok := idx.Find("newer"); !ok {
		t.Error("Find(newer) failed")
	}
	if _, ok := idx.Find("missing"); ok {
		t.Error("Find(missing) succeeded")
	}
}

func TestStatsByGame(t *testing.T) {
	s := Stats{RequestsByGame: map[string]int{"roblox": 3, "valorant": 10, "fortnite": 3}}
	got := s.ByGame()
	want := []GameCount{{"valorant", 10}, {"fortnite", 3}, {"roblox", 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ByGame mismatch (-want +got):\n%s", diff)
	}
}
