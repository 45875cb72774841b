package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nutrition-engine/logger"
	"nutrition-engine/models"
)

const (
	maxAnalysisDays   = 3650
	screenHistoryDays = 30
)

// ReportCache stores analysis results for a short time. Implementations must
// treat a miss as (nil, nil).
type ReportCache interface {
	GetAnalysis(ctx context.Context, userID string, metricType models.MetricType, days int) (*models.AnalysisResult, error)
	SaveAnalysis(ctx context.Context, result *models.AnalysisResult) error
	InvalidateUser(ctx context.Context, userID string, metricType models.MetricType) error
}

// OutlierCallback is invoked after an analysis that found outliers.
type OutlierCallback func(metricType models.MetricType, count int)

type EngineOptions struct {
	Methods    []models.OutlierMethod
	Thresholds Thresholds
	OnOutliers OutlierCallback
}

// Engine answers metric analysis requests for the boundary layer.
type Engine struct {
	metrics     models.MetricRepository
	cache       ReportCache
	detector    *Detector
	recommender *Recommender
	methods     []models.OutlierMethod
	thresholds  Thresholds
	onOutliers  OutlierCallback
	log         *logger.Logger
	now         func() time.Time
}

// NewEngine wires an engine. cache may be nil.
func NewEngine(metrics models.MetricRepository, cache ReportCache, log *logger.Logger, opts EngineOptions) *Engine {
	methods := opts.Methods
	if len(methods) == 0 {
		methods = []models.OutlierMethod{models.MethodZScore, models.MethodIQR, models.MethodMAD, models.MethodDataQuality}
	}
	thresholds := DefaultThresholds()
	for m, v := range opts.Thresholds {
		thresholds[m] = v
	}
	return &Engine{
		metrics:     metrics,
		cache:       cache,
		detector:    NewDetector(log),
		recommender: NewRecommender(),
		methods:     methods,
		thresholds:  thresholds,
		onOutliers:  opts.OnOutliers,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// AnalyzeUserMetrics runs outlier detection over the user's last days of a
// metric. Sparse histories yield a result with StatusInsufficientData.
func (e *Engine) AnalyzeUserMetrics(ctx context.Context, userID string, metricType models.MetricType, days int) (*models.AnalysisResult, error) {
	if userID == "" {
		return nil, models.NewValidationError("user_id", "is required")
	}
	if metricType == models.MetricUnknown {
		return nil, models.NewValidationError("metric_type", "is required")
	}
	if days <= 0 || days > maxAnalysisDays {
		return nil, models.NewValidationError("days", "must be between 1 and 3650")
	}

	if e.cache != nil {
		cached, err := e.cache.GetAnalysis(ctx, userID, metricType, days)
		if err != nil {
			e.log.Warn("analysis cache read failed for user %s: %v", userID, err)
		} else if cached != nil {
			e.log.Debug("analysis cache hit: user=%s metric=%s days=%d", userID, metricType, days)
			return cached, nil
		}
	}

	history, err := e.metrics.GetHistory(ctx, userID, metricType, days)
	if err != nil {
		return nil, models.NewPersistenceError("load metric history", err)
	}
	series := measurements(history)

	report := e.detector.Detect(series, e.methods, e.thresholds)
	report.MetricType = metricType

	result := &models.AnalysisResult{
		UserID:          userID,
		MetricType:      metricType,
		Days:            days,
		Status:          report.Status,
		Outliers:        report.Outliers,
		MethodResults:   report.MethodResults,
		Statistics:      report.Statistics,
		Recommendations: e.recommender.Recommend(report, metricType, series),
		ProcessedAt:     e.now(),
	}
	if trend, err := CalculateTrend(series); err == nil {
		result.Trend = trend
	}

	if report.TotalOutliers > 0 {
		e.log.Info("outliers detected: user=%s metric=%s count=%d of %d", userID, metricType, report.TotalOutliers, report.DataPointCount)
		if e.onOutliers != nil {
			e.onOutliers(metricType, report.TotalOutliers)
		}
	}

	if e.cache != nil {
		if err := e.cache.SaveAnalysis(ctx, result); err != nil {
			e.log.Warn("analysis cache write failed for user %s: %v", userID, err)
		}
	}
	return result, nil
}

// ScreenSample checks a new reading against recent history before it is
// stored. A flagged sample is still storable; the result only warns.
func (e *Engine) ScreenSample(ctx context.Context, sample *models.MetricSample) (*models.ScreeningResult, error) {
	history, err := e.metrics.GetHistory(ctx, sample.UserID, sample.Type, screenHistoryDays)
	if err != nil {
		return nil, models.NewPersistenceError("load metric history", err)
	}

	threshold := e.thresholds.get(models.MethodZScore)
	ad := NewAnomalyDetector(screenWindow, threshold)
	var prior []models.MetricSample
	for _, s := range measurements(history) {
		if s.RecordedDate.Equal(sample.RecordedDate) {
			continue // replaced by the upsert
		}
		prior = append(prior, s)
		ad.Observe(s.Value)
	}

	result := &models.ScreeningResult{}
	var results []models.MethodResult

	flagged, z := ad.Check(sample.Value)
	result.ZScore = z
	if flagged {
		results = append(results, models.MethodResult{
			Method:    models.MethodZScore,
			Threshold: threshold,
			Outliers: toFindings([]models.MetricSample{*sample}, models.MethodZScore, threshold, []hit{{
				score:      z,
				confidence: methodConfidence(z, threshold),
				severity:   statSeverity(z, threshold),
			}}),
		})
		result.Warnings = append(result.Warnings, "value differs sharply from your recent readings")
	}

	if rule, ok := RuleFor(sample.Type); ok {
		dqThreshold := e.thresholds.get(models.MethodDataQuality)
		h, bad := rule.checkRange(0, sample.Value)
		if !bad {
			latest, err := e.metrics.GetLatest(ctx, sample.UserID, sample.Type)
			if err != nil {
				return nil, models.NewPersistenceError("load latest sample", err)
			}
			if latest != nil && latest.RecordedDate.Before(sample.RecordedDate) {
				days := models.DaysBetween(latest.RecordedDate, sample.RecordedDate)
				h, bad = rule.checkChange(0, latest.Value, sample.Value, days, dqThreshold)
			}
		}
		if bad {
			results = append(results, models.MethodResult{
				Method:    models.MethodDataQuality,
				Threshold: dqThreshold,
				Outliers:  toFindings([]models.MetricSample{*sample}, models.MethodDataQuality, dqThreshold, []hit{h}),
			})
			result.Warnings = append(result.Warnings, h.reason)
		}
	}

	if fused := Fuse(results); len(fused) > 0 {
		f := fused[0]
		f.SourceIndex = len(prior)
		result.Finding = &f
		result.Flagged = true
	}
	return result, nil
}

// RecordSample validates, screens and upserts a sample, then drops cached
// analyses for that user and metric. Goal samples are stored without screening.
func (e *Engine) RecordSample(ctx context.Context, sample *models.MetricSample) (*models.ScreeningResult, error) {
	if err := sample.Validate(); err != nil {
		return nil, err
	}
	sample.Normalize()
	if sample.ID == "" {
		sample.ID = uuid.New().String()
	}

	screening := &models.ScreeningResult{}
	if !sample.IsGoal {
		var err error
		if screening, err = e.ScreenSample(ctx, sample); err != nil {
			return nil, err
		}
		if screening.Flagged {
			e.log.Info("flagged incoming sample: user=%s metric=%s value=%.2f", sample.UserID, sample.Type, sample.Value)
		}
	}

	if err := e.metrics.Upsert(ctx, sample); err != nil {
		return nil, models.NewPersistenceError("store metric sample", err)
	}

	if e.cache != nil {
		if err := e.cache.InvalidateUser(ctx, sample.UserID, sample.Type); err != nil {
			e.log.Warn("analysis cache invalidation failed for user %s: %v", sample.UserID, err)
		}
	}
	return screening, nil
}

// measurements drops goal samples and orders the rest by date and time.
func measurements(samples []models.MetricSample) []models.MetricSample {
	out := make([]models.MetricSample, 0, len(samples))
	for _, s := range samples {
		if !s.IsGoal {
			out = append(out, s)
		}
	}
	models.SortSamples(out)
	return out
}
