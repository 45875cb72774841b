package models

import (
	"fmt"
	"strings"
	"time"
)

// OutlierMethod names a detection method.
type OutlierMethod int

const (
	MethodZScore OutlierMethod = iota + 1
	MethodIQR
	MethodMAD
	MethodIsolationForest
	MethodDataQuality
)

// AllMethods lists every method in fusion order.
var AllMethods = []OutlierMethod{MethodZScore, MethodIQR, MethodMAD, MethodIsolationForest, MethodDataQuality}

func (m OutlierMethod) String() string {
	switch m {
	case MethodZScore:
		return "z_score"
	case MethodIQR:
		return "iqr"
	case MethodMAD:
		return "mad"
	case MethodIsolationForest:
		return "isolation_forest"
	case MethodDataQuality:
		return "data_quality"
	default:
		return "unknown"
	}
}

// ParseOutlierMethod accepts the method name, plus "modified_z_score" for mad.
func ParseOutlierMethod(s string) (OutlierMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "z_score", "zscore":
		return MethodZScore, nil
	case "iqr":
		return MethodIQR, nil
	case "mad", "modified_z_score":
		return MethodMAD, nil
	case "isolation_forest":
		return MethodIsolationForest, nil
	case "data_quality":
		return MethodDataQuality, nil
	}
	return 0, fmt.Errorf("unknown outlier method %q", s)
}

// ParseOutlierMethods parses a comma separated list, dropping duplicates.
func ParseOutlierMethods(s string) ([]OutlierMethod, error) {
	var out []OutlierMethod
	seen := map[OutlierMethod]bool{}
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		m, err := ParseOutlierMethod(part)
		if err != nil {
			return nil, err
		}
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}

func (m OutlierMethod) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *OutlierMethod) UnmarshalText(b []byte) error {
	v, err := ParseOutlierMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Severity buckets how far a finding is from normal.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "low"
	}
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "low":
		*s = SeverityLow
	case "medium":
		*s = SeverityMedium
	case "high":
		*s = SeverityHigh
	default:
		return fmt.Errorf("unknown severity %q", b)
	}
	return nil
}

// ReportStatus tells callers whether the analysis ran.
type ReportStatus string

const (
	StatusOK               ReportStatus = "ok"
	StatusInsufficientData ReportStatus = "insufficient_data"
)

// OutlierFinding is one data point flagged by one or more methods.
type OutlierFinding struct {
	SourceIndex int             `json:"source_index"`
	SampleID    string          `json:"sample_id,omitempty"`
	Value       float64         `json:"value"`
	Score       float64         `json:"detection_score"`
	Threshold   float64         `json:"threshold"`
	Date        time.Time       `json:"date"`
	DetectedBy  []OutlierMethod `json:"detected_by"`
	Confidence  float64         `json:"confidence"`
	Severity    Severity        `json:"severity"`
	Reason      string          `json:"reason,omitempty"`
}

// FlaggedBy reports whether method contributed to the finding.
func (f OutlierFinding) FlaggedBy(method OutlierMethod) bool {
	for _, m := range f.DetectedBy {
		if m == method {
			return true
		}
	}
	return false
}

// MethodResult is the raw output of a single detection method.
type MethodResult struct {
	Method     OutlierMethod      `json:"method"`
	Threshold  float64            `json:"threshold"`
	Outliers   []OutlierFinding   `json:"outliers"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
}

// SeriesStatistics summarizes the analyzed series.
type SeriesStatistics struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
	IQR    float64 `json:"iqr"`
	MAD    float64 `json:"mad"`
}

// OutlierReport is recomputed per request and never persisted.
type OutlierReport struct {
	Status         ReportStatus      `json:"status"`
	MetricType     MetricType        `json:"metric_type"`
	Outliers       []OutlierFinding  `json:"outliers"`
	MethodResults  []MethodResult    `json:"method_results"`
	Statistics     *SeriesStatistics `json:"statistics,omitempty"`
	TotalOutliers  int               `json:"total_outliers"`
	DataPointCount int               `json:"data_point_count"`
}

// Recommendation is advice derived from an outlier report.
type Recommendation struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
	Action   string `json:"action,omitempty"`
}

// Trend describes the overall direction of a series.
type Trend struct {
	Direction        string  `json:"trend"`
	AbsoluteChange   float64 `json:"absolute_change"`
	PercentageChange float64 `json:"percentage_change"`
	Days             int     `json:"days"`
	RatePerDay       float64 `json:"rate_per_day"`
}

// AnalysisResult is what analyzeUserMetrics returns to the boundary.
type AnalysisResult struct {
	UserID          string            `json:"user_id"`
	MetricType      MetricType        `json:"metric_type"`
	Days            int               `json:"days"`
	Status          ReportStatus      `json:"status"`
	Outliers        []OutlierFinding  `json:"outliers"`
	MethodResults   []MethodResult    `json:"method_results"`
	Statistics      *SeriesStatistics `json:"statistics,omitempty"`
	Recommendations []Recommendation  `json:"recommendations"`
	Trend           *Trend            `json:"trend,omitempty"`
	ProcessedAt     time.Time         `json:"processed_at"`
}

// ScreeningResult is returned when a new sample is checked before it is stored.
type ScreeningResult struct {
	Flagged  bool            `json:"flagged"`
	ZScore   float64         `json:"z_score"`
	Finding  *OutlierFinding `json:"finding,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}
