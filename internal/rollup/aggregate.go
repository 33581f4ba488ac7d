package rollup

import (
	"fmt"
	"strings"
	"time"

	"github.com/ahollis/retro/internal/constants"
	"github.com/ahollis/retro/internal/models"
)

// Aggregate is the {content, insights} pair every summary is built from. A
// future language-model backend would produce the same shape; the rule-based
// functions below are the only producer today.
type Aggregate struct {
	Content  string
	Insights models.Insights
}

// AggregateWeekly derives a weekly summary from the entries of one week.
// Pure and deterministic: identical entries in identical order always
// produce identical output.
func AggregateWeekly(entries []models.Entry, start, end time.Time) Aggregate {
	if len(entries) == 0 {
		return Aggregate{
			Content:  fmt.Sprintf("Week of %s: No data available.", weekRangeLabel(start, end)),
			Insights: emptyInsights(),
		}
	}

	var prod, mood, energy []float64
	var texts []string
	var accomplishments, learnings, gratitude []string
	for _, e := range entries {
		prod = append(prod, float64(e.Ratings.Productivity))
		mood = append(mood, float64(e.Ratings.Mood))
		energy = append(energy, float64(e.Ratings.Energy))
		texts = append(texts, e.DailyText)
		accomplishments = append(accomplishments, filterBlank(e.Accomplishments)...)
		learnings = append(learnings, filterBlank(e.ThingsLearned)...)
		gratitude = append(gratitude, filterBlank(e.ThingsGrateful)...)
	}

	insights := models.Insights{
		KeyThemes:          ExtractThemes(texts, constants.WeeklyThemes),
		ProductivityTrend:  mean(prod),
		MoodTrend:          mean(mood),
		EnergyTrend:        mean(energy),
		TopAccomplishments: firstN(accomplishments, constants.WeeklyInsightItems),
		MainLearnings:      firstN(learnings, constants.WeeklyInsightItems),
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Weekly Summary: %s\n\n", weekRangeLabel(start, end))
	fmt.Fprintf(&b, "## Overview\n%d %s recorded this week. Average productivity: %s/5, mood: %s/5, energy: %s/5.\n",
		len(entries), pluralize("entry", "entries", len(entries)),
		fmtAvg(insights.ProductivityTrend), fmtAvg(insights.MoodTrend), fmtAvg(insights.EnergyTrend))
	writeSection(&b, "Key Accomplishments", firstN(accomplishments, 8))
	writeSection(&b, "Main Learnings", firstN(learnings, 5))
	writeSection(&b, "Gratitude Highlights", firstN(gratitude, 5))
	fmt.Fprintf(&b, "\n## Reflection\n%s\n",
		weeklyReflection(insights.ProductivityTrend, insights.MoodTrend, len(accomplishments)))

	return Aggregate{Content: b.String(), Insights: insights}
}

// AggregateMonthly derives a monthly summary from the weekly summaries of
// one month. Trends are averages of the weekly averages, not re-weighted by
// entry count.
func AggregateMonthly(weeks []models.Summary, start, end time.Time) Aggregate {
	if len(weeks) == 0 {
		return Aggregate{
			Content:  fmt.Sprintf("Month of %s: No data available.", monthLabel(start)),
			Insights: emptyInsights(),
		}
	}

	var prod, mood, energy []float64
	var themes, accomplishments, learnings []string
	for _, w := range weeks {
		prod = append(prod, w.Insights.ProductivityTrend)
		mood = append(mood, w.Insights.MoodTrend)
		energy = append(energy, w.Insights.EnergyTrend)
		themes = append(themes, w.Insights.KeyThemes...)
		accomplishments = append(accomplishments, w.Insights.TopAccomplishments...)
		learnings = append(learnings, w.Insights.MainLearnings...)
	}

	insights := models.Insights{
		KeyThemes:          ConsolidateThemes(themes, constants.MonthlyThemes),
		ProductivityTrend:  mean(prod),
		MoodTrend:          mean(mood),
		EnergyTrend:        mean(energy),
		TopAccomplishments: firstN(accomplishments, constants.MonthlyInsightItems),
		MainLearnings:      firstN(learnings, constants.MonthlyInsightItems),
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Monthly Summary: %s\n\n", monthLabel(start))
	fmt.Fprintf(&b, "## Overview\n%d weekly %s rolled up. Average productivity: %s/5, mood: %s/5, energy: %s/5.\n",
		len(weeks), pluralize("summary", "summaries", len(weeks)),
		fmtAvg(insights.ProductivityTrend), fmtAvg(insights.MoodTrend), fmtAvg(insights.EnergyTrend))
	writeSection(&b, "Key Themes", firstN(insights.KeyThemes, 5))
	writeSection(&b, "Top Accomplishments", firstN(accomplishments, 10))
	writeSection(&b, "Major Learnings", firstN(learnings, 8))
	fmt.Fprintf(&b, "\n## Reflection\n%s %s\n",
		monthlyProductivityLine(insights.ProductivityTrend),
		monthlyMoodLine(insights.MoodTrend))

	return Aggregate{Content: b.String(), Insights: insights}
}

// AggregateYearly derives a yearly summary from the monthly summaries of one
// year.
func AggregateYearly(months []models.Summary, start, end time.Time) Aggregate {
	if len(months) == 0 {
		return Aggregate{
			Content:  fmt.Sprintf("Year %d: No data available.", start.Year()),
			Insights: emptyInsights(),
		}
	}

	var prod, mood, energy []float64
	var themes, accomplishments, learnings []string
	for _, m := range months {
		prod = append(prod, m.Insights.ProductivityTrend)
		mood = append(mood, m.Insights.MoodTrend)
		energy = append(energy, m.Insights.EnergyTrend)
		themes = append(themes, m.Insights.KeyThemes...)
		accomplishments = append(accomplishments, m.Insights.TopAccomplishments...)
		learnings = append(learnings, m.Insights.MainLearnings...)
	}

	insights := models.Insights{
		KeyThemes:          ConsolidateThemes(themes, constants.YearlyThemes),
		ProductivityTrend:  mean(prod),
		MoodTrend:          mean(mood),
		EnergyTrend:        mean(energy),
		TopAccomplishments: firstN(accomplishments, constants.YearlyInsightItems),
		MainLearnings:      firstN(learnings, constants.YearlyInsightItems),
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Year in Review: %d\n\n", start.Year())
	fmt.Fprintf(&b, "## Overview\n%d monthly %s rolled up. Average productivity: %s/5, mood: %s/5, energy: %s/5.\n",
		len(months), pluralize("summary", "summaries", len(months)),
		fmtAvg(insights.ProductivityTrend), fmtAvg(insights.MoodTrend), fmtAvg(insights.EnergyTrend))
	writeSection(&b, "Overarching Themes", firstN(insights.KeyThemes, 8))
	writeSection(&b, "Greatest Accomplishments", firstN(accomplishments, 15))
	writeSection(&b, "Most Significant Learnings", firstN(learnings, 12))
	fmt.Fprintf(&b, "\n## Reflection\n%s %s\n",
		yearlyProductivityLine(insights.ProductivityTrend), yearlyClosing)

	return Aggregate{Content: b.String(), Insights: insights}
}

// --- reflection templates ---

const yearlyClosing = "Whatever the next year brings, this record stands as proof of sustained attention to the things that matter."

func weeklyReflection(productivity, mood float64, accomplishmentCount int) string {
	var parts []string

	switch {
	case productivity >= 4:
		parts = append(parts, "This was a highly productive week.")
	case productivity >= 3:
		parts = append(parts, "Productivity held steady this week.")
	default:
		parts = append(parts, "Productivity was lower than usual this week.")
	}

	switch {
	case mood >= 4:
		parts = append(parts, "Mood stayed high throughout.")
	case mood >= 3:
		parts = append(parts, "Mood was balanced overall.")
	default:
		parts = append(parts, "Mood was a struggle at times.")
	}

	switch {
	case accomplishmentCount >= 10:
		parts = append(parts, fmt.Sprintf("An impressive %d accomplishments were logged.", accomplishmentCount))
	case accomplishmentCount >= 5:
		parts = append(parts, fmt.Sprintf("A solid %d accomplishments made the list.", accomplishmentCount))
	default:
		parts = append(parts, fmt.Sprintf("Every win counts, with %d recorded.", accomplishmentCount))
	}

	return strings.Join(parts, " ")
}

func monthlyProductivityLine(productivity float64) string {
	switch {
	case productivity >= 4:
		return "Productivity ran high this month."
	case productivity >= 3:
		return "Productivity stayed on an even keel this month."
	default:
		return "Productivity dipped this month."
	}
}

func monthlyMoodLine(mood float64) string {
	switch {
	case mood >= 4:
		return "Spirits were consistently good."
	case mood >= 3:
		return "Mood held a steady middle ground."
	default:
		return "Mood took some effort to maintain."
	}
}

func yearlyProductivityLine(productivity float64) string {
	switch {
	case productivity >= 4:
		return "A remarkably productive year from start to finish."
	case productivity >= 3:
		return "A steadily productive year overall."
	default:
		return "A year where productivity came and went in waves."
	}
}

// --- formatting helpers ---

func weekRangeLabel(start, end time.Time) string {
	return fmt.Sprintf("%s - %s", start.Format("January 2"), end.Format("January 2, 2006"))
}

func monthLabel(start time.Time) string {
	return start.Format("January 2006")
}

func writeSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

// fmtAvg renders a rating average to exactly one decimal place.
func fmtAvg(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// mean of an empty list is defined as 0, never NaN.
func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// firstN truncates by arrival order; no ranking. Always returns a non-nil
// slice so the persisted JSON carries [] rather than null.
func firstN(items []string, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	result := make([]string, 0, len(items))
	result = append(result, items...)
	return result
}

func filterBlank(items []string) []string {
	var kept []string
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			kept = append(kept, item)
		}
	}
	return kept
}

func emptyInsights() models.Insights {
	return models.Insights{
		KeyThemes:          []string{},
		TopAccomplishments: []string{},
		MainLearnings:      []string{},
	}
}

func pluralize(singular, plural string, n int) string {
	if n == 1 {
		return singular
	}
	return plural
}
