package analytics

import "math"

// screenWindow is how many recent readings a new value is compared against.
const screenWindow = 50

// AnomalyDetector z-scores incoming values against a rolling window of the
// readings that preceded them.
type AnomalyDetector struct {
	window    *RollingWindow
	threshold float64
}

func NewAnomalyDetector(size int, threshold float64) *AnomalyDetector {
	return &AnomalyDetector{
		window:    NewRollingWindow(size),
		threshold: threshold,
	}
}

// Observe adds a known-good reading to the window.
func (ad *AnomalyDetector) Observe(value float64) {
	ad.window.Add(value)
}

// Check scores value against the window without adding it. Fewer than
// MinSamples readings, or zero spread, never flags.
func (ad *AnomalyDetector) Check(value float64) (bool, float64) {
	if ad.window.Len() < MinSamples {
		return false, 0.0
	}
	mean := ad.window.Average()
	stdDev, _ := StdDev(ad.window.Values())
	if stdDev == 0 {
		return false, 0.0
	}
	zScore := math.Abs((value - mean) / stdDev)
	return zScore > ad.threshold, round(zScore, 4)
}
