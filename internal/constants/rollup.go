package constants

const (
	// Pending-backfill lookback windows: how many recent completed periods
	// each granularity scans for missing summaries.
	WeeklyLookback  = 4 // most recent completed Mondays
	MonthlyLookback = 3 // months preceding the current month
	YearlyLookback  = 2 // years preceding the current year

	// Quality gates: minimum source-record counts below which a period is
	// deliberately left un-summarized rather than producing a thin summary.
	WeeklyMinEntries    = 3 // daily entries in the week
	MonthlyMinSummaries = 2 // weekly summaries in the month
	YearlyMinSummaries  = 6 // monthly summaries in the year

	// How many items the structured insights keep per granularity.
	WeeklyInsightItems  = 5
	MonthlyInsightItems = 10
	YearlyInsightItems  = 20

	// How many themes the structured insights keep per granularity.
	WeeklyThemes  = 8
	MonthlyThemes = 10
	YearlyThemes  = 8

	// RatingMin and RatingMax bound the productivity/mood/energy scales.
	RatingMin = 1
	RatingMax = 5
)
