package models

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// MetricType identifies what a sample measures.
type MetricType int

const (
	MetricUnknown MetricType = iota
	MetricWeight
	MetricBodyFat
	MetricMuscleMass
	MetricBMI
	MetricHeartRate
	MetricRestingHeartRate
	MetricBloodPressureSystolic
	MetricBloodPressureDiastolic
	MetricBloodGlucose
	MetricBodyTemperature
	MetricSleepHours
	MetricSteps
	MetricWaterIntake
	MetricCaloriesConsumed
)

var metricTypeNames = map[MetricType]string{
	MetricWeight:                 "weight",
	MetricBodyFat:                "body_fat",
	MetricMuscleMass:             "muscle_mass",
	MetricBMI:                    "bmi",
	MetricHeartRate:              "heart_rate",
	MetricRestingHeartRate:       "resting_heart_rate",
	MetricBloodPressureSystolic:  "blood_pressure_systolic",
	MetricBloodPressureDiastolic: "blood_pressure_diastolic",
	MetricBloodGlucose:           "blood_glucose",
	MetricBodyTemperature:        "body_temperature",
	MetricSleepHours:             "sleep_hours",
	MetricSteps:                  "steps",
	MetricWaterIntake:            "water_intake",
	MetricCaloriesConsumed:       "calories_consumed",
}

// String returns the snake_case metric name.
func (m MetricType) String() string {
	if name, ok := metricTypeNames[m]; ok {
		return name
	}
	return "unknown"
}

// DefaultUnit returns the unit samples of this type are stored in.
func (m MetricType) DefaultUnit() string {
	switch m {
	case MetricWeight, MetricMuscleMass:
		return "kg"
	case MetricBodyFat:
		return "%"
	case MetricBMI:
		return "kg/m2"
	case MetricHeartRate, MetricRestingHeartRate:
		return "bpm"
	case MetricBloodPressureSystolic, MetricBloodPressureDiastolic:
		return "mmHg"
	case MetricBloodGlucose:
		return "mg/dL"
	case MetricBodyTemperature:
		return "C"
	case MetricSleepHours:
		return "hours"
	case MetricSteps:
		return "steps"
	case MetricWaterIntake:
		return "ml"
	case MetricCaloriesConsumed:
		return "kcal"
	default:
		return ""
	}
}

// ParseMetricType converts a snake_case name to a MetricType.
func ParseMetricType(s string) (MetricType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range metricTypeNames {
		if name == s {
			return t, nil
		}
	}
	return MetricUnknown, fmt.Errorf("unknown metric type %q", s)
}

func (m MetricType) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *MetricType) UnmarshalText(b []byte) error {
	t, err := ParseMetricType(string(b))
	if err != nil {
		return err
	}
	*m = t
	return nil
}

// MetricSample is one recorded measurement.
type MetricSample struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Type         MetricType `json:"metric_type"`
	Value        float64    `json:"value"`
	Unit         string     `json:"unit"`
	RecordedDate time.Time  `json:"recorded_date"`
	RecordedTime string     `json:"recorded_time,omitempty"` // HH:MM, optional
	IsGoal       bool       `json:"is_goal"`
	Notes        string     `json:"notes,omitempty"`
}

func (m *MetricSample) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return NewValidationError("user_id", "is required")
	}
	if m.Type == MetricUnknown {
		return NewValidationError("metric_type", "is required")
	}
	if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return NewValidationError("value", "must be a finite number")
	}
	if m.RecordedDate.IsZero() {
		return NewValidationError("recorded_date", "is required")
	}
	if m.RecordedTime != "" {
		if _, err := time.Parse("15:04", m.RecordedTime); err != nil {
			return NewValidationError("recorded_time", "expected HH:MM")
		}
	}
	return nil
}

// Normalize truncates the recorded date to midnight UTC and fills the unit.
func (m *MetricSample) Normalize() {
	m.RecordedDate = DateOnly(m.RecordedDate)
	if m.Unit == "" {
		m.Unit = m.Type.DefaultUnit()
	}
}

// Before reports whether m sorts before o in time-series order.
func (m MetricSample) Before(o MetricSample) bool {
	if !m.RecordedDate.Equal(o.RecordedDate) {
		return m.RecordedDate.Before(o.RecordedDate)
	}
	return m.RecordedTime < o.RecordedTime
}

// SortSamples orders samples by (RecordedDate, RecordedTime) ascending.
func SortSamples(samples []MetricSample) {
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Before(samples[j]) })
}

// Values extracts the sample values in order.
func Values(samples []MetricSample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Value
	}
	return out
}

// DateOnly drops the clock part of t and returns midnight UTC of the same calendar day.
func DateOnly(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}
