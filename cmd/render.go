package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spigell/tutormatch/internal/tutor"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("36")).
			Padding(0, 1)

	insightStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			Italic(true).
			Foreground(lipgloss.Color("#EE6FF8"))

	scoreStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	reasonStyle = lipgloss.NewStyle().PaddingLeft(2)
)

func render(w io.Writer, output string, results []tutor.MatchResult) error {
	if output == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("No tutors match your request."))
		return err
	}

	blocks := make([]string, 0, len(results)+1)
	blocks = append(blocks, titleStyle.Render(fmt.Sprintf("%d matching tutors", len(results))))
	for i := range results {
		blocks = append(blocks, renderCard(i+1, &results[i]))
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, blocks...))
	return err
}

func renderCard(position int, r *tutor.MatchResult) string {
	lines := []string{
		fmt.Sprintf("%d. %s %s %s",
			position,
			displayName(&r.Candidate),
			mutedStyle.Render("("+r.Candidate.ID+")"),
			scoreStyle.Render(fmt.Sprintf("%.0f%%", r.OverallScore*100)),
		),
	}
	for _, reason := range r.Reasons {
		lines = append(lines, reasonStyle.Render("• "+reason))
	}
	for _, insight := range r.Insights {
		lines = append(lines, insightStyle.Render(insight))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func renderDetails(c *tutor.Candidate, r *tutor.MatchResult) string {
	lines := []string{
		titleStyle.Render(displayName(c)),
		fmt.Sprintf("subjects: %s", strings.Join(c.Subjects, ", ")),
		fmt.Sprintf("location: %s", valueOrDash(c.Location)),
	}
	if c.HourlyPrice != nil {
		lines = append(lines, fmt.Sprintf("hourly price: %.0f", *c.HourlyPrice))
	}
	if c.Rating != nil {
		lines = append(lines, fmt.Sprintf("rating: %.1f", *c.Rating))
	}
	if c.Experience != nil {
		lines = append(lines, fmt.Sprintf("experience: %s", *c.Experience))
	}
	if bio := strings.TrimSpace(c.Bio); bio != "" {
		lines = append(lines, mutedStyle.Render(bio))
	}

	lines = append(lines, "", scoreStyle.Render(fmt.Sprintf("overall %.2f", r.OverallScore)))
	for _, dim := range tutor.Dimensions {
		lines = append(lines, fmt.Sprintf("  %-10s %.2f", dim, r.Dimensions.Get(dim)))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func displayName(c *tutor.Candidate) string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return c.ID
}

func valueOrDash(v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "-"
	}
	return *v
}
