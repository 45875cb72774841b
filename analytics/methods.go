package analytics

import (
	"fmt"
	"math"
	"sort"

	"nutrition-engine/models"
)

// hit is a single method's verdict on one data point.
type hit struct {
	index      int
	score      float64
	confidence float64
	severity   models.Severity
	reason     string
}

// statSeverity buckets a score against its threshold: >2x high, >1.5x medium.
func statSeverity(score, threshold float64) models.Severity {
	switch {
	case score > 2*threshold:
		return models.SeverityHigh
	case score > 1.5*threshold:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// methodConfidence grows from 0.5 at the threshold to 0.9 at twice the threshold.
// Single methods never reach 1.0; only fusion does.
func methodConfidence(score, threshold float64) float64 {
	if threshold <= 0 {
		return 0.5
	}
	excess := (score - threshold) / threshold
	excess = math.Max(0, math.Min(1, excess))
	return round(0.5+0.4*excess, 4)
}

func zScoreHits(values []float64, threshold float64) ([]hit, map[string]float64) {
	mean, _ := Mean(values)
	std, _ := StdDev(values)
	params := map[string]float64{"mean": round(mean, 4), "std_dev": round(std, 4)}
	if std == 0 {
		return nil, params
	}
	var hits []hit
	for i, v := range values {
		z := math.Abs(v-mean) / std
		if z > threshold {
			hits = append(hits, hit{
				index:      i,
				score:      round(z, 4),
				confidence: methodConfidence(z, threshold),
				severity:   statSeverity(z, threshold),
				reason:     fmt.Sprintf("%.2f standard deviations from the mean", z),
			})
		}
	}
	return hits, params
}

// iqrHits flags values outside [Q1-k*IQR, Q3+k*IQR]. The score is the distance
// from the nearer quartile in IQR units, so the flag test reads score > k.
// With IQR = 0 the score is k plus the raw distance.
func iqrHits(values []float64, k float64) ([]hit, map[string]float64) {
	q1, _ := Quartile(values, 0.25)
	q3, _ := Quartile(values, 0.75)
	iqr := q3 - q1
	lower, upper := q1-k*iqr, q3+k*iqr
	params := map[string]float64{"q1": q1, "q3": q3, "iqr": iqr, "lower_fence": lower, "upper_fence": upper}

	var hits []hit
	for i, v := range values {
		if v >= lower && v <= upper {
			continue
		}
		dist := q1 - v
		if v > upper {
			dist = v - q3
		}
		var score float64
		if iqr == 0 {
			// a flat interquartile range puts any departure past the fence
			score = k + dist
		} else {
			score = dist / iqr
		}
		hits = append(hits, hit{
			index:      i,
			score:      round(score, 4),
			confidence: methodConfidence(score, k),
			severity:   statSeverity(score, k),
			reason:     fmt.Sprintf("outside fences [%.2f, %.2f]", lower, upper),
		})
	}
	return hits, params
}

// madScale converts a modified z-score denominator to normal-consistent units.
const madScale = 0.6745

// meanADScale is used when MAD collapses to zero: (x-median)/(1.253314*meanAD).
const meanADScale = 1.253314

func madHits(values []float64, threshold float64) ([]hit, map[string]float64) {
	median, _ := Median(values)
	mad, _ := MAD(values)
	params := map[string]float64{"median": median, "mad": round(mad, 4)}

	score := func(v float64) float64 { return madScale * (v - median) / mad }
	if mad == 0 {
		meanAD := meanAbsDeviation(values, median)
		params["mean_abs_deviation"] = round(meanAD, 4)
		if meanAD == 0 {
			return nil, params
		}
		score = func(v float64) float64 { return (v - median) / (meanADScale * meanAD) }
	}

	var hits []hit
	for i, v := range values {
		s := math.Abs(score(v))
		if s > threshold {
			hits = append(hits, hit{
				index:      i,
				score:      round(s, 4),
				confidence: methodConfidence(s, threshold),
				severity:   statSeverity(s, threshold),
				reason:     fmt.Sprintf("modified z-score %.2f", s),
			})
		}
	}
	return hits, params
}

// isolationNeighbors is how many nearest values each point is compared with.
const isolationNeighbors = 3

// isolationHits is a nearest-neighbour heuristic standing in for an isolation
// forest: a point's score is its mean absolute distance to the 3 closest other
// values, and the top contamination fraction is flagged. No model is trained.
func isolationHits(values []float64, contamination float64) ([]hit, map[string]float64) {
	n := len(values)
	scores := make([]float64, n)
	for i, v := range values {
		dists := make([]float64, 0, n-1)
		for j, o := range values {
			if i != j {
				dists = append(dists, math.Abs(v-o))
			}
		}
		sort.Float64s(dists)
		k := isolationNeighbors
		if k > len(dists) {
			k = len(dists)
		}
		var sum float64
		for _, d := range dists[:k] {
			sum += d
		}
		if k > 0 {
			scores[i] = sum / float64(k)
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	flagCount := int(math.Ceil(float64(n) * contamination))
	if flagCount < 1 {
		flagCount = 1
	}
	if flagCount > n {
		flagCount = n
	}

	medianScore, _ := Median(scores)
	maxScore := scores[order[0]]
	params := map[string]float64{"contamination": contamination, "median_score": round(medianScore, 4)}
	if maxScore == 0 {
		return nil, params
	}

	var hits []hit
	for _, idx := range order[:flagCount] {
		s := scores[idx]
		if s == 0 {
			break
		}
		params["cutoff_score"] = round(s, 4)
		hits = append(hits, hit{
			index:      idx,
			score:      round(s, 4),
			confidence: round(0.5+0.4*(s/maxScore), 4),
			severity:   isolationSeverity(s, medianScore),
			reason:     fmt.Sprintf("mean distance %.2f to nearest values", s),
		})
	}
	return hits, params
}

// isolationSeverity compares a score with the typical (median) score.
func isolationSeverity(score, median float64) models.Severity {
	if median == 0 {
		return models.SeverityHigh
	}
	switch ratio := score / median; {
	case ratio > 3:
		return models.SeverityHigh
	case ratio > 2:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
