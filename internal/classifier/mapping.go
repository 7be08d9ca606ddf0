package classifier

import (
	"strings"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/domain"
)

const (
	defaultDepartment   = "General Complaints Department"
	defaultCategoryCode = "OTHER"
	defaultTitle        = "Civic Issue Reported"
	titleCaptionWords   = 3
)

// MapDepartment returns the municipal department that owns category.
func MapDepartment(category domain.ProblemCategory) string {
	switch category {
	case domain.PotholeRoadDamage:
		return "Roads Department"
	case domain.StreetlightElectrical:
		return "Electrical Department"
	case domain.WaterLeakage:
		return "Water Department"
	case domain.GarbageSanitation:
		return "Sanitation Department"
	case domain.Drainage:
		return "Drainage Department"
	case domain.TrafficSignal:
		return "Traffic Department"
	case domain.ParkPublicSpace:
		return "Parks & Recreation Department"
	case domain.PublicTransport:
		return "Transport Department"
	default:
		return defaultDepartment
	}
}

// MapCategoryCode returns the short machine code for category.
func MapCategoryCode(category domain.ProblemCategory) string {
	switch category {
	case domain.PotholeRoadDamage:
		return "ROAD"
	case domain.StreetlightElectrical:
		return "STREETLIGHT"
	case domain.WaterLeakage:
		return "WATER"
	case domain.GarbageSanitation:
		return "SANITATION"
	case domain.Drainage:
		return "DRAINAGE"
	case domain.TrafficSignal:
		return "TRAFFIC"
	case domain.ParkPublicSpace:
		return "PUBLIC_SPACE"
	case domain.PublicTransport:
		return "TRANSPORT"
	default:
		return defaultCategoryCode
	}
}

func baseTitle(category domain.ProblemCategory) string {
	switch category {
	case domain.PotholeRoadDamage:
		return "Road Damage Issue"
	case domain.StreetlightElectrical:
		return "Street Light Problem"
	case domain.WaterLeakage:
		return "Water Supply Issue"
	case domain.GarbageSanitation:
		return "Sanitation Problem"
	case domain.Drainage:
		return "Drainage Problem"
	case domain.TrafficSignal:
		return "Traffic Management Issue"
	case domain.ParkPublicSpace:
		return "Public Space Issue"
	case domain.PublicTransport:
		return "Transport Issue"
	default:
		return defaultTitle
	}
}

// GenerateTitle builds the ticket title. A real caption contributes its
// first three words as a suffix; placeholders contribute nothing.
func GenerateTitle(category domain.ProblemCategory, caption string) string {
	title := baseTitle(category)
	if caption == domain.CaptionNoImage || caption == domain.CaptionFailed {
		return title
	}

	words := strings.Fields(caption)
	if len(words) == 0 {
		return title
	}
	if len(words) > titleCaptionWords {
		words = words[:titleCaptionWords]
	}
	return title + " - " + strings.Join(words, " ")
}
