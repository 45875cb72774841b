package analytics

import (
	"fmt"
	"math"

	"nutrition-engine/models"
)

// QualityRule bounds what a real measurement of a metric can look like.
// A zero change limit disables that check.
type QualityRule struct {
	Min             float64
	Max             float64
	MaxDailyChange  float64
	MaxWeeklyChange float64
}

// qualityRules covers the metric types with physiological bounds. Types not
// listed here produce no data-quality findings.
var qualityRules = map[models.MetricType]QualityRule{
	models.MetricWeight:                 {Min: 20, Max: 500, MaxDailyChange: 5, MaxWeeklyChange: 7},
	models.MetricBodyFat:                {Min: 2, Max: 70, MaxDailyChange: 2, MaxWeeklyChange: 4},
	models.MetricMuscleMass:             {Min: 10, Max: 150, MaxDailyChange: 2, MaxWeeklyChange: 3},
	models.MetricBMI:                    {Min: 10, Max: 80, MaxDailyChange: 2, MaxWeeklyChange: 3},
	models.MetricHeartRate:              {Min: 25, Max: 250},
	models.MetricRestingHeartRate:       {Min: 25, Max: 150, MaxDailyChange: 20, MaxWeeklyChange: 25},
	models.MetricBloodPressureSystolic:  {Min: 60, Max: 260},
	models.MetricBloodPressureDiastolic: {Min: 30, Max: 160},
	models.MetricBloodGlucose:           {Min: 20, Max: 600},
	models.MetricBodyTemperature:        {Min: 34, Max: 43, MaxDailyChange: 3},
	models.MetricSleepHours:             {Min: 0, Max: 24},
}

// RuleFor returns the data-quality rule for a metric type, if any.
func RuleFor(metricType models.MetricType) (QualityRule, bool) {
	r, ok := qualityRules[metricType]
	return r, ok
}

// allowedChange is the largest plausible move over the elapsed days: the daily
// limit for a day or less, otherwise the weekly limit scaled by days/7 but never
// below the daily limit.
func (r QualityRule) allowedChange(days int) float64 {
	if days <= 1 {
		return r.MaxDailyChange
	}
	if r.MaxWeeklyChange == 0 {
		return r.MaxDailyChange * float64(days)
	}
	return math.Max(r.MaxDailyChange, r.MaxWeeklyChange*float64(days)/7)
}

// checkRange reports a bound violation as a high-severity hit.
func (r QualityRule) checkRange(index int, value float64) (hit, bool) {
	if value >= r.Min && value <= r.Max {
		return hit{}, false
	}
	span := r.Max - r.Min
	dist := r.Min - value
	if value > r.Max {
		dist = value - r.Max
	}
	return hit{
		index:      index,
		score:      round(1+dist/span, 4),
		confidence: 0.9,
		severity:   models.SeverityHigh,
		reason:     fmt.Sprintf("value %.2f outside plausible range [%.2f, %.2f]", value, r.Min, r.Max),
	}, true
}

// checkChange compares a value with the previous one, days apart.
func (r QualityRule) checkChange(index int, prev, value float64, days int, threshold float64) (hit, bool) {
	if r.MaxDailyChange == 0 {
		return hit{}, false
	}
	allowed := r.allowedChange(days)
	delta := math.Abs(value - prev)
	ratio := delta / allowed
	if ratio <= threshold {
		return hit{}, false
	}
	if days < 1 {
		days = 1
	}
	return hit{
		index:      index,
		score:      round(ratio, 4),
		confidence: methodConfidence(ratio, threshold),
		severity:   statSeverity(ratio, threshold),
		reason:     fmt.Sprintf("change of %.2f over %d day(s) exceeds plausible %.2f", delta, days, allowed),
	}, true
}

func dataQualityHits(samples []models.MetricSample, rule QualityRule, threshold float64) []hit {
	var hits []hit
	for i, s := range samples {
		if h, bad := rule.checkRange(i, s.Value); bad {
			hits = append(hits, h)
			continue
		}
		if i == 0 {
			continue
		}
		prev := samples[i-1]
		days := models.DaysBetween(prev.RecordedDate, s.RecordedDate)
		if h, bad := rule.checkChange(i, prev.Value, s.Value, days, threshold); bad {
			hits = append(hits, h)
		}
	}
	return hits
}
