package patch

import (
	"encoding/json"
	"sort"
)

// ArchiveEntry points at one stored snapshot. Key is opaque.
type ArchiveEntry struct {
	Key          string   `json:"key"`
	Date         string   `json:"date"`
	ImpactLabel  string   `json:"impact_label,omitempty"`
	PatchVersion string   `json:"patch_version,omitempty"`
	Size         *float64 `json:"size,omitempty"`
}

// ArchiveIndex is kept in backend order, which is display order.
type ArchiveIndex []ArchiveEntry

type archiveEnvelope struct {
	Archives ArchiveIndex `json:"archives"`
}

// DecodeArchiveIndex parses a history payload. A missing or null
// "archives" field is an empty index, not an error.
func DecodeArchiveIndex(data []byte) (ArchiveIndex, error) {
	var env archiveEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Archives == nil {
		return ArchiveIndex{}, nil
	}
	return env.Archives, nil
}

// Find returns the entry with the given key.
func (idx ArchiveIndex) Find(key string) (ArchiveEntry, bool) {
	for _, e := range idx {
		if e.Key == key {
			return e, true
		}
	}
	return ArchiveEntry{}, false
}

// Stats is the backend's usage summary. Message is set instead of the
// counters when the backend has too little data.
type Stats struct {
	TotalRequestsAnalyzed int            `json:"total_requests_analyzed"`
	TotalErrors           int            `json:"total_errors"`
	MostPopularGame       string         `json:"most_popular_game"`
	RequestsByGame        map[string]int `json:"requests_by_game"`
	Message               string         `json:"message,omitempty"`
}

type GameCount struct {
	Game  string
	Count int
}

// ByGame returns per-game counts, busiest first. Ties sort by name so the
// order is stable across refreshes.
func (s *Stats) ByGame() []GameCount {
	out := make([]GameCount, 0, len(s.RequestsByGame))
	for g, n := range s.RequestsByGame {
		out = append(out, GameCount{Game: g, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Game < out[j].Game
	})
	return out
}
