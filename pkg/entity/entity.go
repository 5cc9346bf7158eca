package entity

import (
	"bytes"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// DateLayout is the calendar-day key used for grouping and ordering
// tracker entries. Dates are naive: no time component, no timezone.
const DateLayout = "2006-01-02"

type User struct {
	ID           uuid.UUID
	Name         string
	PasswordHash string
}

// TrackerType tags an Entry and selects its value payload shape.
type TrackerType string

const (
	TypeWorkout         TrackerType = "workout"
	TypeSleep           TrackerType = "sleep"
	TypeReading         TrackerType = "reading"
	TypeSexuality       TrackerType = "sexuality"
	TypePosture         TrackerType = "posture"
	TypeHabits          TrackerType = "habits"
	TypeDiet            TrackerType = "diet"
	TypeMeditation      TrackerType = "meditation"
	TypeJournal         TrackerType = "journal"
	TypeAffective       TrackerType = "affective"
	TypeCareer          TrackerType = "career"
	TypeCommunity       TrackerType = "community"
	TypeWater           TrackerType = "water"
	TypeBodyPhoto       TrackerType = "body_photo"
	TypeBodyMeasurement TrackerType = "body_measurement"
	TypeHabitLog        TrackerType = "habit_log"
	TypeWeeklyMetric    TrackerType = "weekly_metric"
)

// Entry is one dated, typed record logged by a user.
type Entry struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"uid"`
	Type      TrackerType `json:"type"`
	Date      string      `json:"date"`
	Value     EntryValue  `json:"value"`
	Metadata  Metadata    `json:"metadata"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// HabitLogValue is the habit_log payload.
type HabitLogValue struct {
	HabitID   string  `json:"habitId"`
	Value     float64 `json:"value"`
	Completed bool    `json:"completed"`
}

// EntryValue is the tagged union of tracker payloads. Exactly one variant
// is set, chosen by the entry's Type: Measurements for body_measurement,
// HabitLog for habit_log, Scalar for everything else (weekly metrics and
// simple daily values). On the wire it keeps the flat shapes the entries
// were logged with: an object of numeric fields, a habitId-bearing object,
// or a bare scalar.
type EntryValue struct {
	Measurements map[string]float64 `json:"-"`
	HabitLog     *HabitLogValue     `json:"-"`
	Scalar       string             `json:"-"`
}

func ScalarValue(s string) EntryValue {
	return EntryValue{Scalar: s}
}

func (v EntryValue) MarshalJSON() ([]byte, error) {
	switch {
	case v.HabitLog != nil:
		return sonic.Marshal(v.HabitLog)
	case v.Measurements != nil:
		return sonic.Marshal(v.Measurements)
	default:
		return sonic.Marshal(v.Scalar)
	}
}

func (v *EntryValue) UnmarshalJSON(data []byte) error {
	*v = EntryValue{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '{' {
		var raw map[string]any
		if err := sonic.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		if _, ok := raw["habitId"]; ok {
			var hl HabitLogValue
			if err := sonic.Unmarshal(trimmed, &hl); err != nil {
				return err
			}
			v.HabitLog = &hl
			return nil
		}
		// Measurement fields arrive as numbers or numeric strings,
		// anything unparsable is dropped.
		fields := make(map[string]float64, len(raw))
		for k, val := range raw {
			switch n := val.(type) {
			case float64:
				fields[k] = n
			case string:
				if f, err := strconv.ParseFloat(n, 64); err == nil {
					fields[k] = f
				}
			}
		}
		v.Measurements = fields
		return nil
	}
	if trimmed[0] == '"' {
		return sonic.Unmarshal(trimmed, &v.Scalar)
	}
	// bare number or bool, kept verbatim
	v.Scalar = string(trimmed)
	return nil
}

// Metadata carries the weekly-metric composite key (weekNum, year,
// metricId). The zero value means no metadata.
type Metadata struct {
	WeekNum  int    `json:"weekNum,omitempty"`
	Year     int    `json:"year,omitempty"`
	MetricID string `json:"metricId,omitempty"`
}

func (m Metadata) IsZero() bool {
	return m == Metadata{}
}

type HabitType string

const (
	HabitBoolean HabitType = "boolean"
	HabitNumeric HabitType = "numeric"
	HabitTime    HabitType = "time"
)

// Habit is a recurring user-defined behavior logged daily via habit_log
// entries. Habits are created and deleted, never edited.
type Habit struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"uid"`
	Title     string    `json:"title"`
	Type      HabitType `json:"type"`
	Goal      *float64  `json:"goal,omitempty"`
	Unit      string    `json:"unit,omitempty"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type GoalType string

const (
	GoalManual      GoalType = "manual"
	GoalMeasurement GoalType = "measurement"
	GoalTracker     GoalType = "tracker"
)

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

type TargetOperator string

const (
	OpLessOrEqual    TargetOperator = "<="
	OpGreaterOrEqual TargetOperator = ">="
	OpEqual          TargetOperator = "=="
)

type ChecklistItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Target is the automatic-progress rule of a measurement or tracker goal.
// For measurement goals Metric names a body-measurement field, for tracker
// goals it names a TrackerType whose entries are counted.
type Target struct {
	Metric   string         `json:"metric"`
	Value    float64        `json:"value"`
	Operator TargetOperator `json:"operator"`
}

type Goal struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"uid"`
	Title      string          `json:"title"`
	StartDate  string          `json:"startDate"`
	Deadline   string          `json:"deadline"`
	Category   string          `json:"category"`
	Checklist  []ChecklistItem `json:"checklist"`
	Type       GoalType        `json:"type"`
	Target     *Target         `json:"target,omitempty"`
	Status     GoalStatus      `json:"status"`
	Progress   int             `json:"progress"`
	ActionPlan string          `json:"actionPlan,omitempty"`
	Result     string          `json:"result,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
