package analytics

import (
	"math"
	"sort"

	"nutrition-engine/logger"
	"nutrition-engine/models"
)

// MinSamples is the smallest series the detector will analyze.
const MinSamples = 3

// fusionBoost is added to a finding's confidence for each extra method that flags it.
const fusionBoost = 0.3

// Thresholds holds per-method parameters: the z/modified-z cutoff, the IQR
// multiplier k, the isolation contamination fraction and the data-quality ratio.
type Thresholds map[models.OutlierMethod]float64

func DefaultThresholds() Thresholds {
	return Thresholds{
		models.MethodZScore:          2.5,
		models.MethodIQR:             1.5,
		models.MethodMAD:             3.5,
		models.MethodIsolationForest: 0.10,
		models.MethodDataQuality:     1.0,
	}
}

// get falls back to the default when a threshold is missing or not positive.
func (t Thresholds) get(m models.OutlierMethod) float64 {
	if v, ok := t[m]; ok && v > 0 {
		return v
	}
	return DefaultThresholds()[m]
}

// Detector runs outlier methods over one metric series and fuses the results.
type Detector struct {
	log *logger.Logger
}

func NewDetector(log *logger.Logger) *Detector {
	return &Detector{log: log}
}

// Detect analyzes samples, which must be ordered by date. Fewer than MinSamples
// yields an empty report with StatusInsufficientData rather than an error.
func (d *Detector) Detect(samples []models.MetricSample, methods []models.OutlierMethod, thresholds Thresholds) models.OutlierReport {
	report := models.OutlierReport{
		Status:         models.StatusOK,
		Outliers:       []models.OutlierFinding{},
		MethodResults:  []models.MethodResult{},
		DataPointCount: len(samples),
	}
	if len(samples) > 0 {
		report.MetricType = samples[0].Type
	}
	if len(samples) < MinSamples {
		report.Status = models.StatusInsufficientData
		d.log.Debug("outlier detection skipped: %d samples, need %d", len(samples), MinSamples)
		return report
	}

	values := models.Values(samples)
	report.Statistics, _ = Summarize(values)

	for _, method := range dedupeMethods(methods) {
		threshold := thresholds.get(method)
		var hits []hit
		var params map[string]float64

		switch method {
		case models.MethodZScore:
			hits, params = zScoreHits(values, threshold)
		case models.MethodIQR:
			hits, params = iqrHits(values, threshold)
		case models.MethodMAD:
			hits, params = madHits(values, threshold)
		case models.MethodIsolationForest:
			hits, params = isolationHits(values, threshold)
		case models.MethodDataQuality:
			rule, ok := RuleFor(report.MetricType)
			if !ok {
				d.log.Debug("no data-quality rules for %s", report.MetricType)
			} else {
				hits = dataQualityHits(samples, rule, threshold)
			}
		default:
			d.log.Warn("ignoring unknown outlier method %d", method)
			continue
		}

		report.MethodResults = append(report.MethodResults, models.MethodResult{
			Method:     method,
			Threshold:  threshold,
			Outliers:   toFindings(samples, method, threshold, hits),
			Parameters: params,
		})
	}

	report.Outliers = Fuse(report.MethodResults)
	report.TotalOutliers = len(report.Outliers)
	return report
}

func dedupeMethods(methods []models.OutlierMethod) []models.OutlierMethod {
	seen := map[models.OutlierMethod]bool{}
	out := make([]models.OutlierMethod, 0, len(methods))
	for _, m := range methods {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

func toFindings(samples []models.MetricSample, method models.OutlierMethod, threshold float64, hits []hit) []models.OutlierFinding {
	out := make([]models.OutlierFinding, 0, len(hits))
	for _, h := range hits {
		s := samples[h.index]
		out = append(out, models.OutlierFinding{
			SourceIndex: h.index,
			SampleID:    s.ID,
			Value:       s.Value,
			Score:       h.score,
			Threshold:   threshold,
			Date:        s.RecordedDate,
			DetectedBy:  []models.OutlierMethod{method},
			Confidence:  h.confidence,
			Severity:    h.severity,
			Reason:      h.reason,
		})
	}
	return out
}

// Fuse unions per-method findings by sample index. A sample flagged by several
// methods keeps the most severe finding, lists every method, and takes the best
// single confidence plus fusionBoost per extra method, capped at 1.
func Fuse(results []models.MethodResult) []models.OutlierFinding {
	type acc struct {
		finding models.OutlierFinding
		best    float64
		methods []models.OutlierMethod
	}
	byIndex := map[int]*acc{}

	for _, res := range results {
		for _, f := range res.Outliers {
			a, ok := byIndex[f.SourceIndex]
			if !ok {
				byIndex[f.SourceIndex] = &acc{finding: f, best: f.Confidence, methods: []models.OutlierMethod{res.Method}}
				continue
			}
			a.methods = append(a.methods, res.Method)
			a.best = math.Max(a.best, f.Confidence)
			if f.Severity > a.finding.Severity {
				a.finding = f
			}
		}
	}

	out := make([]models.OutlierFinding, 0, len(byIndex))
	for _, a := range byIndex {
		f := a.finding
		sort.Slice(a.methods, func(i, j int) bool { return a.methods[i] < a.methods[j] })
		f.DetectedBy = a.methods
		f.Confidence = round(math.Min(1, a.best+fusionBoost*float64(len(a.methods)-1)), 4)
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceIndex < out[j].SourceIndex })
	return out
}
