package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"nutrition-engine/models"
)

// Mean returns the arithmetic mean.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, models.ErrInsufficientData
	}
	return stat.Mean(values, nil), nil
}

// Median averages the two middle elements for even-length input.
func Median(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, models.ErrInsufficientData
	}
	s := sortedCopy(values)
	n := len(s)
	if n%2 == 0 {
		return (s[n/2-1] + s[n/2]) / 2, nil
	}
	return s[n/2], nil
}

// Variance is the population variance (divides by N).
func Variance(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, models.ErrInsufficientData
	}
	_, v := stat.PopMeanVariance(values, nil)
	return v, nil
}

// StdDev is the population standard deviation. A single value yields 0.
func StdDev(values []float64) (float64, error) {
	v, err := Variance(values)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// Quartile returns sorted[floor(n*p)] with no interpolation.
func Quartile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, models.ErrInsufficientData
	}
	s := sortedCopy(values)
	idx := int(math.Floor(float64(len(s)) * p))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(s) {
		idx = len(s) - 1
	}
	return s[idx], nil
}

// MAD is the median of absolute deviations from the median.
func MAD(values []float64) (float64, error) {
	med, err := Median(values)
	if err != nil {
		return 0, err
	}
	dev := make([]float64, len(values))
	for i, v := range values {
		dev[i] = math.Abs(v - med)
	}
	return Median(dev)
}

// meanAbsDeviation is the mean of absolute deviations from the median.
func meanAbsDeviation(values []float64, median float64) float64 {
	var sum float64
	for _, v := range values {
		sum += math.Abs(v - median)
	}
	return sum / float64(len(values))
}

// Summarize computes the descriptive statistics attached to every report.
func Summarize(values []float64) (*models.SeriesStatistics, error) {
	if len(values) == 0 {
		return nil, models.ErrInsufficientData
	}
	mean, variance := stat.PopMeanVariance(values, nil)
	median, _ := Median(values)
	q1, _ := Quartile(values, 0.25)
	q3, _ := Quartile(values, 0.75)
	mad, _ := MAD(values)
	return &models.SeriesStatistics{
		Count:  len(values),
		Mean:   round(mean, 4),
		Median: round(median, 4),
		StdDev: round(math.Sqrt(variance), 4),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Q1:     q1,
		Q3:     q3,
		IQR:    q3 - q1,
		MAD:    round(mad, 4),
	}, nil
}

func sortedCopy(values []float64) []float64 {
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)
	return s
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
