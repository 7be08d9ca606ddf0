// Package domain holds the civic complaint types shared by every layer.
package domain

import "fmt"

// ProblemCategory is the closed set of civic problem types.
// The declaration order is the classifier's tie-break order.
type ProblemCategory int

const (
	PotholeRoadDamage ProblemCategory = iota
	StreetlightElectrical
	WaterLeakage
	GarbageSanitation
	Drainage
	TrafficSignal
	ParkPublicSpace
	PublicTransport
	Other
)

var categoryLabels = [...]string{
	PotholeRoadDamage:     "Pothole / Road Damage",
	StreetlightElectrical: "Streetlight / Electrical Issue",
	WaterLeakage:          "Water Leakage / Pipeline Issue",
	GarbageSanitation:     "Garbage / Sanitation Issue",
	Drainage:              "Drainage Issue",
	TrafficSignal:         "Traffic / Signal Issue",
	ParkPublicSpace:       "Park / Public Space Issue",
	PublicTransport:       "Public Transport Issue",
	Other:                 "Other Civic Issue",
}

// Categories returns every category in declaration order, Other last.
func Categories() []ProblemCategory {
	out := make([]ProblemCategory, 0, len(categoryLabels))
	for c := range categoryLabels {
		out = append(out, ProblemCategory(c))
	}
	return out
}

// String returns the human-readable label. Unknown values render as Other.
func (c ProblemCategory) String() string {
	if c < 0 || int(c) >= len(categoryLabels) {
		return categoryLabels[Other]
	}
	return categoryLabels[c]
}

// MarshalText encodes the category as its label.
func (c ProblemCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a label produced by MarshalText.
func (c *ProblemCategory) UnmarshalText(text []byte) error {
	label := string(text)
	for i, l := range categoryLabels {
		if l == label {
			*c = ProblemCategory(i)
			return nil
		}
	}
	return fmt.Errorf("unknown problem category %q", label)
}
