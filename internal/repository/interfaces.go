package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rgoulart/respectpill/pkg/entity"
)

type UsersRepositoryI interface {
	// Creates new user in database
	Create(ctx context.Context, user *entity.User) error
	// Looks up user by name. Can be used for login
	FindByName(ctx context.Context, name string) (*entity.User, error)
	// Looks up user by uid. Can be used for authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Deletes user
	Delete(ctx context.Context, uid uuid.UUID) error
}

// ListFilter narrows GetByUserID results. Zero fields mean "no filter";
// From/To are inclusive date-string bounds.
type ListFilter struct {
	Type entity.TrackerType
	From string
	To   string
}

type TrackersRepositoryI interface {
	// Creates new tracker entry, returns assigned id
	Create(ctx context.Context, e *entity.Entry) (uuid.UUID, error)
	// Searches entry with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Entry, error)
	// Lists user's entries, newest date first
	GetByUserID(ctx context.Context, uid uuid.UUID, filter ListFilter) ([]*entity.Entry, error)
	// Looks up the single daily entry for (user, date, type), used by the
	// save-value upsert path
	FindDaily(ctx context.Context, uid uuid.UUID, date string, t entity.TrackerType) (*entity.Entry, error)
	// Looks up a weekly_metric entry by its (weekNum, year, metricId) key
	FindWeekly(ctx context.Context, uid uuid.UUID, weekNum, year int, metricID string) (*entity.Entry, error)
	// Updates entry's date, value and metadata by ID
	Update(ctx context.Context, e *entity.Entry) error
	// Deletes entry with id
	Delete(ctx context.Context, id uuid.UUID) error
}

type HabitsRepositoryI interface {
	// Creates new habit, returns assigned id
	Create(ctx context.Context, habit *entity.Habit) (uuid.UUID, error)
	// Searches habit with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Habit, error)
	// Lists habits owned by user with uid
	GetByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Habit, error)
	// Deletes habit with id
	Delete(ctx context.Context, id uuid.UUID) error
}

type GoalsRepositoryI interface {
	// Creates new goal, returns assigned id
	Create(ctx context.Context, goal *entity.Goal) (uuid.UUID, error)
	// Searches goal with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Goal, error)
	// Lists goals owned by user with uid
	GetByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Goal, error)
	// Updates goal fields by ID (ID in goal is necessary)
	Update(ctx context.Context, goal *entity.Goal) error
	// Deletes goal with id
	Delete(ctx context.Context, id uuid.UUID) error
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
