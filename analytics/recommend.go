package analytics

import (
	"fmt"
	"strings"
	"time"

	"nutrition-engine/models"
)

const (
	highOutlierRate    = 0.20
	recentWindow       = 7 * 24 * time.Hour
	manyOutliersCutoff = 3
)

// Recommender turns an outlier report into prioritized advice. It is a pure
// function of its inputs and the clock.
type Recommender struct {
	now func() time.Time
}

func NewRecommender() *Recommender {
	return &Recommender{now: func() time.Time { return time.Now().UTC() }}
}

// Recommend evaluates the rules in order. Zero outliers short-circuits with a
// single positive message; the remaining rules are not exclusive.
func (r *Recommender) Recommend(report models.OutlierReport, metricType models.MetricType, history []models.MetricSample) []models.Recommendation {
	label := strings.ReplaceAll(metricType.String(), "_", " ")

	if report.TotalOutliers == 0 {
		if report.Status == models.StatusInsufficientData {
			return []models.Recommendation{{
				Type:     "info",
				Message:  fmt.Sprintf("Log at least %d %s readings to enable unusual-value detection.", MinSamples, label),
				Priority: "low",
				Action:   "keep_tracking",
			}}
		}
		return []models.Recommendation{{
			Type:     "positive",
			Message:  fmt.Sprintf("Your %s readings look consistent. No unusual values were found in %d measurements.", label, report.DataPointCount),
			Priority: "low",
		}}
	}

	var recs []models.Recommendation

	if report.DataPointCount > 0 {
		rate := float64(report.TotalOutliers) / float64(report.DataPointCount)
		if rate > highOutlierRate {
			recs = append(recs, models.Recommendation{
				Type:     "warning",
				Message:  fmt.Sprintf("%.0f%% of your %s readings were flagged as unusual. Review how and when you take measurements.", rate*100, label),
				Priority: "high",
				Action:   "review_measurement_process",
			})
		}
	}

	if dates := dataQualityDates(report.Outliers); len(dates) > 0 {
		recs = append(recs, models.Recommendation{
			Type:     "data_quality",
			Message:  fmt.Sprintf("Some %s values look implausible (%s). Please verify these measurements.", label, strings.Join(dates, ", ")),
			Priority: "high",
			Action:   "verify_measurements",
		})
	}

	cutoff := r.now().Add(-recentWindow)
	for _, f := range report.Outliers {
		if f.Severity == models.SeverityHigh && !f.Date.Before(models.DateOnly(cutoff)) {
			recs = append(recs, models.Recommendation{
				Type:     "health_alert",
				Message:  fmt.Sprintf("A significantly unusual %s reading of %s was recorded recently. Consider consulting a healthcare professional.", label, formatValue(f.Value, unitOf(history, metricType))),
				Priority: "medium",
				Action:   "consult_professional",
			})
			break
		}
	}

	if report.TotalOutliers > manyOutliersCutoff {
		recs = append(recs, models.Recommendation{
			Type:     "suggestion",
			Message:  "Track factors such as sleep, stress, meals and medication around your readings to explain the variation.",
			Priority: "low",
			Action:   "track_confounding_factors",
		})
	}
	return recs
}

func dataQualityDates(findings []models.OutlierFinding) []string {
	var dates []string
	seen := map[string]bool{}
	for _, f := range findings {
		if !f.FlaggedBy(models.MethodDataQuality) {
			continue
		}
		d := f.Date.Format(models.DateLayout)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	return dates
}

func unitOf(history []models.MetricSample, metricType models.MetricType) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Unit != "" {
			return history[i].Unit
		}
	}
	return metricType.DefaultUnit()
}

func formatValue(v float64, unit string) string {
	if unit == "" {
		return fmt.Sprintf("%.1f", v)
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}
