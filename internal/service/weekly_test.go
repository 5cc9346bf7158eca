package service_test

import (
	"testing"
	"time"

	"github.com/rgoulart/respectpill/internal/service"
	"github.com/rgoulart/respectpill/pkg/entity"
	"github.com/stretchr/testify/assert"
)

func TestWeekStart(t *testing.T) {
	t.Run("first week snaps back into previous year", func(t *testing.T) {
		got := service.WeekStart(2025, 1)
		assert.Equal(t, time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC), got)
		assert.Equal(t, time.Monday, got.Weekday())
	})
	t.Run("fifth week", func(t *testing.T) {
		got := service.WeekStart(2025, 5)
		assert.Equal(t, time.Date(2025, time.January, 27, 0, 0, 0, 0, time.UTC), got)
	})
}

func weekStart2025(weekNum int) time.Time {
	return service.WeekStart(2025, weekNum)
}

func weeklyEntry(weekNum, year int, metricID, value string) *entity.Entry {
	return &entity.Entry{
		Type:     entity.TypeWeeklyMetric,
		Value:    entity.ScalarValue(value),
		Metadata: entity.Metadata{WeekNum: weekNum, Year: year, MetricID: metricID},
	}
}

func measurementEntry(date string, fields map[string]float64) *entity.Entry {
	return &entity.Entry{
		Type:  entity.TypeBodyMeasurement,
		Date:  date,
		Value: entity.EntryValue{Measurements: fields},
	}
}

func TestResolveWeeklyValue(t *testing.T) {
	t.Run("exact entry wins over measurement fallback", func(t *testing.T) {
		entries := []*entity.Entry{
			measurementEntry("2025-01-27", map[string]float64{"weight": 90}),
			weeklyEntry(5, 2025, "metric1", "82.5"),
		}
		got := service.ResolveWeeklyValue(entries, 5, 2025, "metric1", "Peso", weekStart2025)
		assert.Equal(t, "82.5", got)
	})

	t.Run("peso falls back to weight field", func(t *testing.T) {
		entries := []*entity.Entry{
			measurementEntry("2025-01-28", map[string]float64{"weight": 83.4, "neck": 38}),
		}
		got := service.ResolveWeeklyValue(entries, 5, 2025, "metric1", "Peso", weekStart2025)
		assert.Equal(t, "83.4", got)
	})

	t.Run("gordura falls back to bodyFat field", func(t *testing.T) {
		entries := []*entity.Entry{
			measurementEntry("2025-01-27", map[string]float64{"bodyFat": 15.2}),
		}
		got := service.ResolveWeeklyValue(entries, 5, 2025, "metric2", "Gordura", weekStart2025)
		assert.Equal(t, "15.2", got)
	})

	t.Run("measurement outside the week is ignored", func(t *testing.T) {
		entries := []*entity.Entry{
			measurementEntry("2025-02-03", map[string]float64{"weight": 83.4}),
		}
		got := service.ResolveWeeklyValue(entries, 5, 2025, "metric1", "Peso", weekStart2025)
		assert.Equal(t, "", got)
	})

	t.Run("metric without matching field", func(t *testing.T) {
		entries := []*entity.Entry{
			measurementEntry("2025-01-27", map[string]float64{"weight": 83.4}),
		}
		got := service.ResolveWeeklyValue(entries, 5, 2025, "metric4", "Passos", weekStart2025)
		assert.Equal(t, "", got)
	})

	t.Run("exact key mismatch does not leak other weeks", func(t *testing.T) {
		entries := []*entity.Entry{
			weeklyEntry(4, 2025, "metric1", "84.0"),
			weeklyEntry(5, 2024, "metric1", "85.0"),
		}
		got := service.ResolveWeeklyValue(entries, 5, 2025, "metric1", "Peso", weekStart2025)
		assert.Equal(t, "", got)
	})
}

func TestWeeklyDelta(t *testing.T) {
	entries := []*entity.Entry{
		weeklyEntry(4, 2025, "metric1", "84.0"),
		weeklyEntry(5, 2025, "metric1", "82.5"),
	}

	t.Run("down across weeks", func(t *testing.T) {
		d, ok := service.WeeklyDelta(entries, 5, 2025, "metric1", "Peso", weekStart2025)
		assert.True(t, ok)
		assert.Equal(t, service.DeltaDown, d.Direction)
		assert.Equal(t, 1.5, d.Magnitude)
	})

	t.Run("week one has no previous", func(t *testing.T) {
		_, ok := service.WeeklyDelta(entries, 1, 2025, "metric1", "Peso", weekStart2025)
		assert.False(t, ok)
	})

	t.Run("missing current week", func(t *testing.T) {
		_, ok := service.WeeklyDelta(entries, 7, 2025, "metric1", "Peso", weekStart2025)
		assert.False(t, ok)
	})
}
