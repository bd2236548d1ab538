package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"slecriteria/internal/scoring"
	"slecriteria/internal/testcase"
)

// styles hold the console palette. They render against the output writer so
// redirected output carries no escape codes.
type styles struct {
	header lipgloss.Style
	dim    lipgloss.Style
	status map[testcase.Status]lipgloss.Style
	tier   map[scoring.RiskTier]lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	color := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }
	return styles{
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		dim:    color("8"),
		status: map[testcase.Status]lipgloss.Style{
			testcase.StatusPass:  color("10"),
			testcase.StatusFail:  color("9").Bold(true),
			testcase.StatusSkip:  color("3"),
			testcase.StatusError: color("13").Bold(true),
		},
		tier: map[scoring.RiskTier]lipgloss.Style{
			scoring.TierIneligible:   color("8"),
			scoring.TierInsufficient: color("3"),
			scoring.TierStandard:     color("12"),
			scoring.TierHighRisk:     color("9").Bold(true),
		},
	}
}

func (s styles) renderTier(tier string) string {
	t, err := scoring.ParseRiskTier(tier)
	if err != nil {
		return tier
	}
	return s.tier[t].Render(tier)
}

func renderScore(w io.Writer, result scoring.ScoreResult, s styles) {
	fmt.Fprintln(w, s.header.Render("SLE classification (EULAR/ACR 2019)"))
	if !result.Eligible {
		fmt.Fprintf(w, "  %s\n", s.renderTier(string(result.RiskTier)))
		fmt.Fprintf(w, "  %s\n", result.IneligibleReason)
		return
	}

	verdict := "does not meet classification"
	if result.MeetsClassification {
		verdict = "meets classification"
	}
	fmt.Fprintf(w, "  total score  %d (%s)\n", result.TotalScore, verdict)
	fmt.Fprintf(w, "  risk tier    %s\n", s.renderTier(string(result.RiskTier)))
	fmt.Fprintf(w, "  %s\n", s.dim.Render(result.RiskNote))

	for _, ds := range result.DomainScores {
		if len(ds.SelectedCriteria) == 0 {
			continue
		}
		awarded := "-"
		if ds.AwardedCriterion != nil {
			awarded = ds.AwardedCriterion.Label
		}
		fmt.Fprintf(w, "  %-28s %2d  %s\n", ds.DomainLabel, ds.AwardedPoints, awarded)
		if ds.Note != "" {
			fmt.Fprintf(w, "  %-28s     %s\n", "", s.dim.Render(ds.Note))
		}
	}
}

func renderReport(w io.Writer, report testcase.Report, s styles) {
	for _, res := range report.Results {
		status := s.status[res.Status].Render(fmt.Sprintf("%-5s", res.Status))
		fmt.Fprintf(w, "%s %s %s\n", status, res.ID, s.dim.Render(res.Description))
		if res.Reason != "" {
			fmt.Fprintf(w, "      %s\n", s.dim.Render(res.Reason))
		}
		if res.Actual != nil && res.Status == testcase.StatusFail {
			fmt.Fprintf(w, "      actual: %d, %s\n", res.Actual.TotalScore, s.renderTier(res.Actual.RiskTier))
		}
		for _, d := range res.Diffs {
			fmt.Fprintf(w, "      - %s\n", d)
		}
	}

	sum := report.Summary
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s %s %s  total %d\n",
		s.status[testcase.StatusPass].Render(fmt.Sprintf("PASS %d", sum.Pass)),
		s.status[testcase.StatusFail].Render(fmt.Sprintf("FAIL %d", sum.Fail)),
		s.status[testcase.StatusSkip].Render(fmt.Sprintf("SKIP %d", sum.Skip)),
		s.status[testcase.StatusError].Render(fmt.Sprintf("ERROR %d", sum.Error)),
		sum.Total,
	)
}
