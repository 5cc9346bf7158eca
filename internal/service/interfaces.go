package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rgoulart/respectpill/pkg/entity"
)

type RegisterRequest struct {
	Name     string `validate:"required,alphanum_underscore,min=3,max=100"`
	Password string `validate:"required,min=8,max=72"`
}

type UserServiceI interface {
	// Validates user's credentials, creates new row in database. Returns user's data with ID
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	// Compares given credentials. If ok, give back user's data with ID.
	Login(ctx context.Context, name, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID, password string) error
}

type CreateTrackerRequest struct {
	Type     string `validate:"required,tracker_type"`
	Date     string `validate:"required,datetime=2006-01-02"`
	Value    entity.EntryValue
	Metadata entity.Metadata
	// Gender drives the automatic body-fat recompute on measurements
	Gender string `validate:"omitempty,oneof=male female"`
}

type UpdateTrackerRequest struct {
	Date     string `validate:"omitempty,datetime=2006-01-02"`
	Value    entity.EntryValue
	Metadata entity.Metadata
	Gender   string `validate:"omitempty,oneof=male female"`
}

type SaveValueRequest struct {
	Type   string `validate:"required,tracker_type"`
	Date   string `validate:"required,datetime=2006-01-02"`
	Value  entity.EntryValue
	Gender string `validate:"omitempty,oneof=male female"`
}

type SaveWeeklyRequest struct {
	WeekNum  int    `validate:"required,min=1,max=53"`
	Year     int    `validate:"required,min=2000,max=2100"`
	MetricID string `validate:"required"`
	Value    string `validate:"required"`
}

// ListOpts narrows tracker listings; zero fields mean no filter.
type ListOpts struct {
	Type entity.TrackerType
	From string
	To   string
}

type TrackersServiceI interface {
	// Creates a tracker entry, then triggers a goal recheck
	Create(ctx context.Context, uid uuid.UUID, req *CreateTrackerRequest) (*entity.Entry, error)
	// Lists user's entries newest first, optionally filtered
	List(ctx context.Context, uid uuid.UUID, opts ListOpts) ([]*entity.Entry, error)
	// Updates owned entry fields
	Update(ctx context.Context, id, uid uuid.UUID, req *UpdateTrackerRequest) (*entity.Entry, error)
	// Deletes owned entry
	Delete(ctx context.Context, id, uid uuid.UUID) error
	// Upserts the single daily value for (date, type), then rechecks goals
	SaveValue(ctx context.Context, uid uuid.UUID, req *SaveValueRequest) (*entity.Entry, error)
	// Consecutive-day streak for a tracker type ending today
	Streak(ctx context.Context, uid uuid.UUID, t entity.TrackerType) (int, error)
	// Serializes all of the user's entries as "csv" or "json"
	Export(ctx context.Context, uid uuid.UUID, format string) ([]byte, error)
	// Resolves one weekly metric cell (exact entry, else measurement fallback)
	ResolveWeekly(ctx context.Context, uid uuid.UUID, weekNum, year int, metricID, metricName string) (string, error)
	// Upserts a weekly metric value by its composite key
	SaveWeeklyValue(ctx context.Context, uid uuid.UUID, req *SaveWeeklyRequest) (*entity.Entry, error)
}

type CreateHabitRequest struct {
	Title string   `validate:"required,min=1,max=100"`
	Type  string   `validate:"required,oneof=boolean numeric time"`
	Goal  *float64 `validate:"omitempty,gt=0"`
	Unit  string   `validate:"max=20"`
	Color string   `validate:"max=30"`
}

type HabitsServiceI interface {
	CreateHabit(ctx context.Context, uid uuid.UUID, req *CreateHabitRequest) (*entity.Habit, error)
	GetUserHabits(ctx context.Context, uid uuid.UUID) ([]*entity.Habit, error)
	DeleteHabit(ctx context.Context, habitID, userID uuid.UUID) error
	// Streak of completed habit_log entries for one habit
	HabitStreak(ctx context.Context, habitID, userID uuid.UUID) (int, error)
}

type CreateGoalRequest struct {
	Title      string `validate:"required,min=1,max=200"`
	StartDate  string `validate:"omitempty,datetime=2006-01-02"`
	Deadline   string `validate:"required,datetime=2006-01-02"`
	Category   string `validate:"max=50"`
	Checklist  []entity.ChecklistItem
	Type       string `validate:"required,oneof=manual measurement tracker"`
	Target     *entity.Target
	ActionPlan string
}

type UpdateGoalRequest struct {
	Title      string `validate:"omitempty,min=1,max=200"`
	Deadline   string `validate:"omitempty,datetime=2006-01-02"`
	Category   string `validate:"max=50"`
	Checklist  []entity.ChecklistItem
	Target     *entity.Target
	ActionPlan string
	Result     string
}

type GoalsServiceI interface {
	CreateGoal(ctx context.Context, uid uuid.UUID, req *CreateGoalRequest) (*entity.Goal, error)
	GetUserGoals(ctx context.Context, uid uuid.UUID) ([]*entity.Goal, error)
	UpdateGoal(ctx context.Context, goalID, userID uuid.UUID, req *UpdateGoalRequest) (*entity.Goal, error)
	DeleteGoal(ctx context.Context, goalID, userID uuid.UUID) error
	// Flips one checklist item and re-derives manual-goal progress
	ToggleChecklistItem(ctx context.Context, goalID, userID uuid.UUID, itemID string) (*entity.Goal, error)
	GoalCheckerI
}

// GoalCheckerI is the goal-recheck trigger invoked after every entry
// create or value save. Evaluation is idempotent, so a failed pass is
// simply retried by the next trigger.
type GoalCheckerI interface {
	Recheck(ctx context.Context, userID uuid.UUID) error
}
