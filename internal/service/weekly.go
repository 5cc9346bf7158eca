package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/rgoulart/respectpill/pkg/entity"
)

// Weekly metric resolution. A week's value comes first from an explicit
// weekly_metric entry keyed by (weekNum, year, metricId); failing that,
// from a body measurement logged inside that week whose field name matches
// the metric. An empty string means "no value" and renders as a blank
// cell, not a zero.

// MetricConfig is one column of the weekly progress board.
type MetricConfig struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// DefaultMetrics mirrors the board's stock configuration (pt-BR labels:
// weight, body fat, water, steps).
var DefaultMetrics = []MetricConfig{
	{ID: "metric1", Name: "Peso", Unit: "kg"},
	{ID: "metric2", Name: "Gordura", Unit: "%"},
	{ID: "metric3", Name: "Água", Unit: "L"},
	{ID: "metric4", Name: "Passos", Unit: "k"},
}

// WeekStart returns the Monday of simple week weekNum: Jan 1 of the year
// advanced weekNum-1 weeks and snapped back to Monday. Weeks are 1-based.
func WeekStart(year, weekNum int) time.Time {
	d := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, (weekNum-1)*7)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// ResolveWeeklyValue resolves the value of a metric for one week.
// Resolution order: exact weekly_metric key match (returned verbatim, no
// fallback), then the first body measurement dated in [weekStart,
// weekStart+7d) with a field matching metricName case-insensitively or via
// the bodyFat/"gordura" and weight/"peso" aliases. Empty when neither hits.
func ResolveWeeklyValue(entries []*entity.Entry, weekNum, year int, metricID, metricName string, weekStartOf func(weekNum int) time.Time) string {
	for _, e := range entries {
		if e.Type == entity.TypeWeeklyMetric &&
			e.Metadata.WeekNum == weekNum &&
			e.Metadata.Year == year &&
			e.Metadata.MetricID == metricID {
			return e.Value.Scalar
		}
	}

	weekStart := weekStartOf(weekNum)
	weekEnd := weekStart.AddDate(0, 0, 7)
	for _, e := range entries {
		if e.Type != entity.TypeBodyMeasurement {
			continue
		}
		date, err := time.Parse(entity.DateLayout, e.Date)
		if err != nil || date.Before(weekStart) || !date.Before(weekEnd) {
			continue
		}
		if field, ok := matchMeasurementField(e.Value.Measurements, metricName); ok {
			return strconv.FormatFloat(e.Value.Measurements[field], 'f', -1, 64)
		}
		// one measurement per week is examined, as on the board
		break
	}
	return ""
}

func matchMeasurementField(fields map[string]float64, metricName string) (string, bool) {
	lowerName := strings.ToLower(metricName)
	// exact name match wins over the locale aliases
	for field := range fields {
		if strings.ToLower(field) == lowerName {
			return field, true
		}
	}
	if _, ok := fields["bodyFat"]; ok && strings.Contains(lowerName, "gordura") {
		return "bodyFat", true
	}
	if _, ok := fields["weight"]; ok && strings.Contains(lowerName, "peso") {
		return "weight", true
	}
	return "", false
}

// WeeklyDelta compares a week's resolved value against the previous
// week's. Nothing to compare for week 1 or when either side is missing.
func WeeklyDelta(entries []*entity.Entry, weekNum, year int, metricID, metricName string, weekStartOf func(weekNum int) time.Time) (Delta, bool) {
	if weekNum <= 1 {
		return Delta{}, false
	}
	current := ResolveWeeklyValue(entries, weekNum, year, metricID, metricName, weekStartOf)
	if current == "" {
		return Delta{}, false
	}
	previous := ResolveWeeklyValue(entries, weekNum-1, year, metricID, metricName, weekStartOf)
	return ComputeDelta(current, previous)
}
