package classifier

import "github.com/jonesrussell/north-cloud/civic-classifier/internal/domain"

// CatalogEntry lists the trigger phrases for one category.
type CatalogEntry struct {
	Category domain.ProblemCategory
	Triggers []string
}

// DefaultCatalog returns the built-in keyword catalog. Entry order is the
// tie-break order when two categories score the same.
func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{
			Category: domain.PotholeRoadDamage,
			Triggers: []string{
				"pothole", "potholes", "road damage", "road broken", "road crack", "road hole",
				"sadak", "rasta", "sarak", "gaddha", "hole", "holes", "crack", "damage",
				"road has", "road with", "broken road", "damaged road",
			},
		},
		{
			Category: domain.StreetlightElectrical,
			Triggers: []string{
				"streetlight", "street light", "light", "bulb", "electricity", "electrical",
				"power", "bijli", "light broken", "light not working", "dark", "andhera",
			},
		},
		{
			Category: domain.WaterLeakage,
			Triggers: []string{
				"water leak", "water leakage", "pipeline", "pipe leak", "tap leak", "pani", "jal",
				"water supply", "water problem", "no water", "water pressure",
			},
		},
		{
			Category: domain.GarbageSanitation,
			Triggers: []string{
				"garbage", "trash", "waste", "dustbin", "kooda", "sanitation", "clean", "dirty",
				"ganda", "saf", "hygiene", "toilet", "shouchalaya",
			},
		},
		{
			Category: domain.Drainage,
			Triggers: []string{
				"drainage", "drain", "nala", "gutter", "sewer", "water logging", "flood",
				"water accumulation", "blocked drain",
			},
		},
		{
			Category: domain.TrafficSignal,
			Triggers: []string{
				"traffic signal", "traffic light", "signal broken", "signal not working",
				"traffic management", "road safety", "accident", "congestion", "jam",
			},
		},
		{
			Category: domain.ParkPublicSpace,
			Triggers: []string{
				"park", "garden", "public space", "playground", "bagicha", "recreation",
				"benches", "trees", "plants",
			},
		},
		{
			Category: domain.PublicTransport,
			Triggers: []string{
				"bus", "train", "transport", "public transport", "station", "stop", "bus stop",
				"metro", "auto", "rickshaw",
			},
		},
	}
}

// DefaultUrgencyKeywords returns the phrases that force HIGH priority.
func DefaultUrgencyKeywords() []string {
	return []string{
		"urgent", "emergency", "dangerous", "hazardous", "critical", "serious", "jaldi",
		"danger", "risk", "accident", "injury", "fire", "electrical", "water", "gas", "leak",
		"broken", "falling",
	}
}
