package analytics

import (
	"math"

	"nutrition-engine/models"
)

// stableBand is the percentage change below which a series counts as stable.
const stableBand = 1.0

// CalculateTrend compares the first and last samples of an ordered series.
func CalculateTrend(samples []models.MetricSample) (*models.Trend, error) {
	if len(samples) < 2 {
		return nil, models.ErrInsufficientData
	}
	first, last := samples[0], samples[len(samples)-1]
	change := last.Value - first.Value

	var pct float64
	if first.Value != 0 {
		pct = change / math.Abs(first.Value) * 100
	}

	direction := "stable"
	switch {
	case pct > stableBand || (first.Value == 0 && change > 0):
		direction = "increasing"
	case pct < -stableBand || (first.Value == 0 && change < 0):
		direction = "decreasing"
	}

	days := models.DaysBetween(first.RecordedDate, last.RecordedDate)
	var rate float64
	if days > 0 {
		rate = change / float64(days)
	}
	return &models.Trend{
		Direction:        direction,
		AbsoluteChange:   round(change, 2),
		PercentageChange: round(pct, 2),
		Days:             days,
		RatePerDay:       round(rate, 4),
	}, nil
}
