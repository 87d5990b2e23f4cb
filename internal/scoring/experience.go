package scoring

import (
	"regexp"
	"strconv"

	"github.com/spigell/tutormatch/internal/tutor"
)

// yearsPattern matches the first integer followed by a "years" token in normalized text
// ("8 anos", "5 years", "3+ yrs", "1 ano").
var yearsPattern = regexp.MustCompile(`(\d+)\s*\+?\s*(?:anos?|years?|yrs?)\b`)

// ParseYears extracts a year count from a free-text experience descriptor.
// ok is false when the text is blank. Text without a recognizable count yields 0 years.
func ParseYears(text *string) (years int, ok bool) {
	if text == nil {
		return 0, false
	}
	normalized := Normalize(*text)
	if normalized == "" {
		return 0, false
	}

	m := yearsPattern.FindStringSubmatch(normalized)
	if m == nil {
		return 0, true
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, true
	}
	return n, true
}

// experienceScore maps a year count onto a band. Each band has three tiers:
//
//	beginner:     1-3 -> 1.0, 0 or 4-5 -> 0.6, >5 -> 0.4
//	intermediate: 2-5 -> 1.0, 1 or 6-8 -> 0.7, 0 or >8 -> 0.4
//	expert:       >=5 -> 1.0, 3-4 -> 0.6, 0-2 -> 0.2
func experienceScore(band tutor.ExperienceBand, years int) float64 {
	switch band.Normalized() {
	case tutor.ExperienceBeginner:
		switch {
		case years >= 1 && years <= 3:
			return 1.0
		case years <= 5:
			return 0.6
		default:
			return 0.4
		}
	case tutor.ExperienceIntermediate:
		switch {
		case years >= 2 && years <= 5:
			return 1.0
		case years == 1 || (years >= 6 && years <= 8):
			return 0.7
		default:
			return 0.4
		}
	case tutor.ExperienceExpert:
		switch {
		case years >= 5:
			return 1.0
		case years >= 3:
			return 0.6
		default:
			return 0.2
		}
	default:
		return 1.0
	}
}
