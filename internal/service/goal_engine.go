package service

import (
	"math"
	"sort"

	"github.com/rgoulart/respectpill/pkg/entity"
)

// EvaluateGoals re-derives the progress of every active goal from the
// entry collection and returns copies of only the goals whose rounded
// progress changed, ready to persist. Completed goals are never
// re-examined, so an achieved status sticks even if the underlying metric
// later regresses. Manual goals are driven by the checklist path only and
// are skipped here. The call is idempotent: a second pass over unchanged
// inputs returns an empty set.
func EvaluateGoals(goals []*entity.Goal, entries []*entity.Entry) []*entity.Goal {
	changed := make([]*entity.Goal, 0)
	for _, goal := range goals {
		if goal.Status != entity.GoalActive {
			continue
		}

		var newProgress float64
		switch {
		case goal.Type == entity.GoalMeasurement && goal.Target != nil:
			current, ok := latestMeasurementValue(entries, goal.Target.Metric)
			if !ok {
				continue
			}
			switch goal.Target.Operator {
			case entity.OpLessOrEqual:
				if current <= goal.Target.Value {
					newProgress = 100
				} else {
					newProgress = clampProgress(goal.Target.Value / current * 100)
				}
			case entity.OpGreaterOrEqual:
				newProgress = clampProgress(current / goal.Target.Value * 100)
			default:
				// TODO: "==" has no evaluation rule yet
				continue
			}
		case goal.Type == entity.GoalTracker && goal.Target != nil:
			count := 0
			for _, e := range entries {
				if e.Type == entity.TrackerType(goal.Target.Metric) {
					count++
				}
			}
			newProgress = clampProgress(float64(count) / goal.Target.Value * 100)
		default:
			continue
		}

		rounded := int(math.Round(newProgress))
		if rounded == goal.Progress {
			continue
		}
		updated := *goal
		updated.Progress = rounded
		if rounded >= 100 {
			updated.Status = entity.GoalCompleted
		} else {
			updated.Status = entity.GoalActive
		}
		changed = append(changed, &updated)
	}
	return changed
}

// latestMeasurementValue finds the most recent body measurement (by date,
// descending) carrying a non-empty value for the metric field.
func latestMeasurementValue(entries []*entity.Entry, metric string) (float64, bool) {
	measurements := make([]*entity.Entry, 0)
	for _, e := range entries {
		if e.Type == entity.TypeBodyMeasurement {
			measurements = append(measurements, e)
		}
	}
	sort.SliceStable(measurements, func(i, j int) bool {
		return measurements[i].Date > measurements[j].Date
	})
	for _, m := range measurements {
		if v, ok := m.Value.Measurements[metric]; ok && v != 0 {
			return v, true
		}
	}
	return 0, false
}

// ToggleChecklistItem flips one checklist item and re-derives progress for
// manual goals as completed/total. Unknown item ids are a no-op flip; an
// empty checklist leaves progress untouched. Returns the fields to
// persist. Pure: the input goal is not mutated.
func ToggleChecklistItem(goal *entity.Goal, itemID string) (checklist []entity.ChecklistItem, progress int, status entity.GoalStatus) {
	checklist = make([]entity.ChecklistItem, len(goal.Checklist))
	copy(checklist, goal.Checklist)
	for i := range checklist {
		if checklist[i].ID == itemID {
			checklist[i].Completed = !checklist[i].Completed
			break
		}
	}

	progress = goal.Progress
	if goal.Type == entity.GoalManual && len(checklist) > 0 {
		completedCount := 0
		for _, item := range checklist {
			if item.Completed {
				completedCount++
			}
		}
		progress = int(math.Round(float64(completedCount) / float64(len(checklist)) * 100))
	}

	if progress >= 100 {
		status = entity.GoalCompleted
	} else {
		status = entity.GoalActive
	}
	return checklist, progress, status
}

func clampProgress(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
