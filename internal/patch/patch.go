package patch

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/marcin-skalski/patchwatch/internal/i18n"
)

type ChangeType string

const (
	Buff  ChangeType = "buff"
	Nerf  ChangeType = "nerf"
	New   ChangeType = "new"
	Fix   ChangeType = "fix"
	Other ChangeType = "other"
)

// ChangeTypes is the fixed group order used for display.
var ChangeTypes = []ChangeType{Buff, Nerf, New, Fix, Other}

// ParseChangeType folds anything outside the known set to Other.
func ParseChangeType(s string) ChangeType {
	switch t := ChangeType(strings.ToLower(strings.TrimSpace(s))); t {
	case Buff, Nerf, New, Fix:
		return t
	default:
		return Other
	}
}

func (t *ChangeType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// null, numbers and the like are still a change, just unclassified.
		*t = Other
		return nil
	}
	*t = ParseChangeType(s)
	return nil
}

type Change struct {
	Type    ChangeType `json:"type"`
	Target  string     `json:"target"`
	Ability string     `json:"ability,omitempty"`
	Details i18n.Text  `json:"details"`
}

// Snapshot is one analyzed patch record, either the latest one for a game
// or an archived one. It is never mutated after decoding.
type Snapshot struct {
	Game         string      `json:"game,omitempty"`
	PatchVersion string      `json:"patch_version,omitempty"`
	Date         string      `json:"date,omitempty"`
	ImpactScore  *float64    `json:"impact_score,omitempty"`
	ImpactLabel  ImpactLabel `json:"impact_label,omitempty"`
	Changes      []Change    `json:"changes"`

	// Raw is the payload as received, kept for the raw JSON view.
	Raw json.RawMessage `json:"-"`
}

// ErrEmpty is returned by Decode for a blank or null payload.
var ErrEmpty = errors.New("empty response")

// Decode parses a snapshot payload and retains the raw bytes.
func Decode(data []byte) (*Snapshot, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmpty
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	for i := range s.Changes {
		if s.Changes[i].Type == "" {
			s.Changes[i].Type = Other
		}
	}
	s.Raw = append(json.RawMessage(nil), data...)
	return &s, nil
}

// Group buckets changes by type, preserving backend order inside each
// group. Every change lands in exactly one group.
func (s *Snapshot) Group() map[ChangeType][]Change {
	groups := make(map[ChangeType][]Change, len(ChangeTypes))
	for _, c := range s.Changes {
		t := ParseChangeType(string(c.Type))
		groups[t] = append(groups[t], c)
	}
	return groups
}

// HasImpact reports whether the snapshot carries an impact score.
func (s *Snapshot) HasImpact() bool {
	return s.ImpactScore != nil
}
