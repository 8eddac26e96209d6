package main

import (
	"fmt"
	"strings"

	"caradvisor/internal/model"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	priceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	reasonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	cardStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(78)
)

var bandColors = map[string]lipgloss.Color{
	"High": lipgloss.Color("42"),
	"Good": lipgloss.Color("39"),
	"Fair": lipgloss.Color("244"),
}

func renderProfile(p *model.Profile) string {
	return headerStyle.Render("Your profile: ") + p.Summary()
}

func renderRecommendation(rec model.Recommendation) string {
	l := rec.Result.Listing
	band := lipgloss.NewStyle().Bold(true).Foreground(bandColors[rec.Result.Band]).
		Render(fmt.Sprintf("%.1f %s", rec.Result.Score, rec.Result.Band))

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", headerStyle.Render(fmt.Sprintf("#%d %s", rec.Rank, l.Title())), band)
	fmt.Fprintf(&b, "%s  %s  %s\n",
		priceStyle.Render(fmt.Sprintf("S$%.0f", l.PriceSGD)),
		mutedStyle.Render(fmt.Sprintf("%.0f km", l.MileageKM)),
		mutedStyle.Render(fmt.Sprintf("%.1f yrs COE left", l.COELeftYears)),
	)
	if len(rec.Result.MatchedReasons) > 0 {
		b.WriteString(reasonStyle.Render("✓ "+strings.Join(rec.Result.MatchedReasons, " · ")) + "\n")
	}
	b.WriteString("\n")
	if rec.Fallback {
		b.WriteString(warningStyle.Render(rec.Explanation))
	} else {
		b.WriteString(rec.Explanation)
	}
	if l.ListingURL != nil && *l.ListingURL != "" {
		b.WriteString("\n" + mutedStyle.Render(*l.ListingURL))
	}
	return cardStyle.Render(b.String())
}

func renderFactors(rec model.Recommendation) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(rec.Result.Listing.Title()) + "\n")
	for _, f := range rec.Result.Factors {
		fmt.Fprintf(&b, "  %-13s %5.1f / %4.1f  %s\n", f.Name, f.Points, f.Weight, mutedStyle.Render(f.Detail))
	}
	fmt.Fprintf(&b, "  %-13s %5.1f / 100", "total", rec.Result.Score)
	return b.String()
}
