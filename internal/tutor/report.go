package tutor

import (
	"fmt"
	"strconv"
	"strings"
)

const unknownCity = "unknown"

// ReportByCity groups match results by the candidate's primary city.
func ReportByCity(results []MatchResult) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, r := range results {
		key := r.Candidate.City()
		if key == "" {
			key = unknownCity
		}

		entry := map[string]string{
			"id":       r.Candidate.ID,
			"name":     r.Candidate.Name,
			"subjects": strings.Join(r.Candidate.Subjects, ", "),
			"score":    strconv.FormatFloat(r.OverallScore, 'f', 2, 64),
		}
		if r.Candidate.HourlyPrice != nil {
			entry["price"] = strconv.FormatFloat(*r.Candidate.HourlyPrice, 'f', 0, 64)
		}
		if r.Candidate.Rating != nil {
			entry["rating"] = fmt.Sprintf("%.1f", *r.Candidate.Rating)
		}
		if len(r.Reasons) > 0 {
			entry["reasons"] = strings.Join(r.Reasons, "; ")
		}

		report[key] = append(report[key], entry)
	}
	return report
}
