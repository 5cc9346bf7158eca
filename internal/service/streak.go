package service

import (
	"time"

	"github.com/rgoulart/respectpill/pkg/entity"
)

// maxStreakLookback caps the backward day walk.
const maxStreakLookback = 365

// ComputeStreak counts consecutive qualifying calendar days ending at
// today. Today itself contributes 1 when it qualifies, but its absence
// does not zero the run counted from yesterday backward: the walk over
// prior days continues until the first gap either way. Dates are compared
// as naive yyyy-MM-dd strings.
func ComputeStreak(entries []*entity.Entry, qualifies func(*entity.Entry) bool, today time.Time) int {
	days := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if qualifies(e) {
			days[e.Date] = struct{}{}
		}
	}
	if len(days) == 0 {
		return 0
	}

	streak := 0
	if _, ok := days[today.Format(entity.DateLayout)]; ok {
		streak++
	}
	for i := 1; i < maxStreakLookback; i++ {
		day := today.AddDate(0, 0, -i).Format(entity.DateLayout)
		if _, ok := days[day]; ok {
			streak++
		} else {
			break
		}
	}
	return streak
}

// QualifyAny accepts every entry; used for per-type streaks where logging
// anything that day counts.
func QualifyAny(*entity.Entry) bool {
	return true
}

// QualifyHabitCompleted accepts habit_log entries of the given habit that
// were marked completed.
func QualifyHabitCompleted(habitID string) func(*entity.Entry) bool {
	return func(e *entity.Entry) bool {
		return e.Value.HabitLog != nil &&
			e.Value.HabitLog.HabitID == habitID &&
			e.Value.HabitLog.Completed
	}
}
