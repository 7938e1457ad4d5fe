package patch

import (
	"encoding/json"
	"strings"
)

type ImpactLabel string

const (
	ImpactNone   ImpactLabel = ""
	ImpactLow    ImpactLabel = "Low"
	ImpactMedium ImpactLabel = "Medium"
	ImpactHigh   ImpactLabel = "High"
)

// ParseImpactLabel accepts the backend's Turkish labels and English ones.
// Unrecognized non-empty labels read as Low, which is what the backend
// means when it omits the scale word.
func ParseImpactLabel(s string) ImpactLabel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ImpactNone
	case "büyük", "high":
		return ImpactHigh
	case "orta", "medium":
		return ImpactMedium
	default:
		return ImpactLow
	}
}

func (l *ImpactLabel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*l = ImpactNone
		return nil
	}
	*l = ParseImpactLabel(s)
	return nil
}
