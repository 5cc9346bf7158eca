package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rgoulart/respectpill/internal/service"
	"github.com/rgoulart/respectpill/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func measurementGoal(metric string, value float64, op entity.TargetOperator, progress int) *entity.Goal {
	return &entity.Goal{
		ID:       uuid.New(),
		Title:    "goal on " + metric,
		Type:     entity.GoalMeasurement,
		Target:   &entity.Target{Metric: metric, Value: value, Operator: op},
		Status:   entity.GoalActive,
		Progress: progress,
	}
}

func TestEvaluateGoals(t *testing.T) {
	t.Run("lte reached", func(t *testing.T) {
		goals := []*entity.Goal{measurementGoal("weight", 80, entity.OpLessOrEqual, 95)}
		entries := []*entity.Entry{measurementEntry("2025-05-01", map[string]float64{"weight": 78})}
		changed := service.EvaluateGoals(goals, entries)
		require.Len(t, changed, 1)
		assert.Equal(t, 100, changed[0].Progress)
		assert.Equal(t, entity.GoalCompleted, changed[0].Status)
	})

	t.Run("lte above target uses target over current", func(t *testing.T) {
		goals := []*entity.Goal{measurementGoal("weight", 80, entity.OpLessOrEqual, 0)}
		entries := []*entity.Entry{measurementEntry("2025-05-01", map[string]float64{"weight": 90})}
		changed := service.EvaluateGoals(goals, entries)
		require.Len(t, changed, 1)
		assert.Equal(t, 89, changed[0].Progress)
		assert.Equal(t, entity.GoalActive, changed[0].Status)
	})

	t.Run("gte partial", func(t *testing.T) {
		goals := []*entity.Goal{measurementGoal("chest", 110, entity.OpGreaterOrEqual, 0)}
		entries := []*entity.Entry{measurementEntry("2025-05-01", map[string]float64{"chest": 99})}
		changed := service.EvaluateGoals(goals, entries)
		require.Len(t, changed, 1)
		assert.Equal(t, 90, changed[0].Progress)
		assert.Equal(t, entity.GoalActive, changed[0].Status)
	})

	t.Run("latest measurement with the field wins", func(t *testing.T) {
		goals := []*entity.Goal{measurementGoal("weight", 80, entity.OpLessOrEqual, 0)}
		entries := []*entity.Entry{
			measurementEntry("2025-05-01", map[string]float64{"weight": 90}),
			measurementEntry("2025-05-08", map[string]float64{"neck": 38}),
			measurementEntry("2025-05-05", map[string]float64{"weight": 79}),
		}
		changed := service.EvaluateGoals(goals, entries)
		require.Len(t, changed, 1)
		assert.Equal(t, 100, changed[0].Progress)
	})

	t.Run("tracker counts entries of the type", func(t *testing.T) {
		goal := &entity.Goal{
			ID:     uuid.New(),
			Type:   entity.GoalTracker,
			Target: &entity.Target{Metric: "workout", Value: 20},
			Status: entity.GoalActive,
		}
		entries := make([]*entity.Entry, 0, 12)
		for i := 0; i < 12; i++ {
			entries = append(entries, &entity.Entry{Type: entity.TypeWorkout})
		}
		changed := service.EvaluateGoals([]*entity.Goal{goal}, entries)
		require.Len(t, changed, 1)
		assert.Equal(t, 60, changed[0].Progress)
		assert.Equal(t, entity.GoalActive, changed[0].Status)
	})

	t.Run("manual and completed and equality goals are skipped", func(t *testing.T) {
		manual := &entity.Goal{ID: uuid.New(), Type: entity.GoalManual, Status: entity.GoalActive}
		done := measurementGoal("weight", 80, entity.OpLessOrEqual, 100)
		done.Status = entity.GoalCompleted
		eq := measurementGoal("weight", 80, entity.OpEqual, 0)
		entries := []*entity.Entry{measurementEntry("2025-05-01", map[string]float64{"weight": 90})}
		changed := service.EvaluateGoals([]*entity.Goal{manual, done, eq}, entries)
		assert.Empty(t, changed)
	})

	t.Run("no measurement carries the metric", func(t *testing.T) {
		goals := []*entity.Goal{measurementGoal("weight", 80, entity.OpLessOrEqual, 40)}
		entries := []*entity.Entry{measurementEntry("2025-05-01", map[string]float64{"neck": 38})}
		assert.Empty(t, service.EvaluateGoals(goals, entries))
	})

	t.Run("second pass is idempotent", func(t *testing.T) {
		goals := []*entity.Goal{measurementGoal("weight", 80, entity.OpLessOrEqual, 0)}
		entries := []*entity.Entry{measurementEntry("2025-05-01", map[string]float64{"weight": 90})}
		changed := service.EvaluateGoals(goals, entries)
		require.Len(t, changed, 1)

		assert.Empty(t, service.EvaluateGoals(changed, entries))
	})

	t.Run("input goals are not mutated", func(t *testing.T) {
		goal := measurementGoal("weight", 80, entity.OpLessOrEqual, 0)
		entries := []*entity.Entry{measurementEntry("2025-05-01", map[string]float64{"weight": 78})}
		service.EvaluateGoals([]*entity.Goal{goal}, entries)
		assert.Equal(t, 0, goal.Progress)
		assert.Equal(t, entity.GoalActive, goal.Status)
	})
}

func TestToggleChecklistItem(t *testing.T) {
	newManualGoal := func(items ...entity.ChecklistItem) *entity.Goal {
		return &entity.Goal{
			ID:        uuid.New(),
			Type:      entity.GoalManual,
			Status:    entity.GoalActive,
			Checklist: items,
		}
	}

	t.Run("toggle on recomputes progress", func(t *testing.T) {
		goal := newManualGoal(
			entity.ChecklistItem{ID: "a", Completed: true},
			entity.ChecklistItem{ID: "b"},
			entity.ChecklistItem{ID: "c"},
			entity.ChecklistItem{ID: "d"},
		)
		checklist, progress, status := service.ToggleChecklistItem(goal, "b")
		assert.True(t, checklist[1].Completed)
		assert.Equal(t, 50, progress)
		assert.Equal(t, entity.GoalActive, status)
	})

	t.Run("last item completes the goal", func(t *testing.T) {
		goal := newManualGoal(
			entity.ChecklistItem{ID: "a", Completed: true},
			entity.ChecklistItem{ID: "b"},
		)
		_, progress, status := service.ToggleChecklistItem(goal, "b")
		assert.Equal(t, 100, progress)
		assert.Equal(t, entity.GoalCompleted, status)
	})

	t.Run("toggle off reopens the goal", func(t *testing.T) {
		goal := newManualGoal(
			entity.ChecklistItem{ID: "a", Completed: true},
			entity.ChecklistItem{ID: "b", Completed: true},
		)
		goal.Progress = 100
		goal.Status = entity.GoalCompleted
		_, progress, status := service.ToggleChecklistItem(goal, "a")
		assert.Equal(t, 50, progress)
		assert.Equal(t, entity.GoalActive, status)
	})

	t.Run("empty checklist keeps progress", func(t *testing.T) {
		goal := newManualGoal()
		goal.Progress = 30
		checklist, progress, status := service.ToggleChecklistItem(goal, "a")
		assert.Empty(t, checklist)
		assert.Equal(t, 30, progress)
		assert.Equal(t, entity.GoalActive, status)
	})

	t.Run("input checklist is not mutated", func(t *testing.T) {
		goal := newManualGoal(entity.ChecklistItem{ID: "a"})
		service.ToggleChecklistItem(goal, "a")
		assert.False(t, goal.Checklist[0].Completed)
	})
}
