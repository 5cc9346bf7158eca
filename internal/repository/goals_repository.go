package repository

import (
	"context"
	"errors"
	"log"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	errorvalues "github.com/rgoulart/respectpill/internal/error_values"
	"github.com/rgoulart/respectpill/pkg/entity"
)

// GoalsRepository stores goals. Checklist and target live in jsonb
// columns; target is NULL for manual goals without a rule.
type GoalsRepository struct {
	conn PgConnection
}

func NewGoalsRepo(cfg DBConfig) *GoalsRepository {
	return &GoalsRepository{
		conn: newPool(cfg, "goalsRepo"),
	}
}

func NewGoalsRepoWithConn(conn PgConnection) *GoalsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for goalsRepo: " + err.Error())
	}
	return &GoalsRepository{
		conn: conn,
	}
}

func (gr *GoalsRepository) Create(ctx context.Context, goal *entity.Goal) (uuid.UUID, error) {
	checklist, target, err := marshalGoalPayload(goal)
	if err != nil {
		return uuid.UUID{}, err
	}
	var id uuid.UUID
	row := gr.conn.QueryRow(ctx, `INSERT INTO goals (user_id, title, start_date, deadline, category, checklist, type, target, status, progress, action_plan, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id;`,
		goal.UserID,
		goal.Title,
		goal.StartDate,
		goal.Deadline,
		goal.Category,
		checklist,
		string(goal.Type),
		target,
		string(goal.Status),
		goal.Progress,
		goal.ActionPlan,
		goal.Result,
	)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrOwnerNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating goal db error: " + err.Error())
	}
	return id, nil
}

func (gr *GoalsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Goal, error) {
	row := gr.conn.QueryRow(ctx, `SELECT id, user_id, title, start_date, deadline, category, checklist, type, target, status, progress, action_plan, result, created_at, updated_at
		FROM goals WHERE id = $1;`, id)
	g, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrGoalNotFound
		}
		return nil, errors.New("getting goal by id error: " + err.Error())
	}
	return g, nil
}

func (gr *GoalsRepository) GetByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Goal, error) {
	goals := make([]*entity.Goal, 0)
	rows, err := gr.conn.Query(ctx, `SELECT id, user_id, title, start_date, deadline, category, checklist, type, target, status, progress, action_plan, result, created_at, updated_at
		FROM goals WHERE user_id = $1 ORDER BY created_at;`, uid)
	if err != nil {
		return nil, errors.New("getting goals by uid error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, errors.New("unmarshalling goal error: " + err.Error())
		}
		goals = append(goals, g)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return goals, nil
}

func (gr *GoalsRepository) Update(ctx context.Context, goal *entity.Goal) error {
	checklist, target, err := marshalGoalPayload(goal)
	if err != nil {
		return err
	}
	ct, err := gr.conn.Exec(ctx, `UPDATE goals SET title = $1, start_date = $2, deadline = $3, category = $4, checklist = $5, target = $6, status = $7, progress = $8, action_plan = $9, result = $10, updated_at = NOW() WHERE id = $11;`,
		goal.Title,
		goal.StartDate,
		goal.Deadline,
		goal.Category,
		checklist,
		target,
		string(goal.Status),
		goal.Progress,
		goal.ActionPlan,
		goal.Result,
		goal.ID,
	)
	if err != nil {
		return errors.New("error updating goal: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrGoalNotFound
	}
	return nil
}

func (gr *GoalsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := gr.conn.Exec(ctx, `DELETE FROM goals WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting goal: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrGoalNotFound
	}
	return nil
}

func marshalGoalPayload(goal *entity.Goal) ([]byte, []byte, error) {
	if goal.Checklist == nil {
		goal.Checklist = []entity.ChecklistItem{}
	}
	checklist, err := sonic.Marshal(goal.Checklist)
	if err != nil {
		return nil, nil, errors.New("marshalling goal checklist error: " + err.Error())
	}
	var target []byte
	if goal.Target != nil {
		target, err = sonic.Marshal(goal.Target)
		if err != nil {
			return nil, nil, errors.New("marshalling goal target error: " + err.Error())
		}
	}
	return checklist, target, nil
}

func scanGoal(row pgx.Row) (*entity.Goal, error) {
	var g entity.Goal
	var typ, status string
	var checklist, target []byte
	if err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.StartDate, &g.Deadline, &g.Category, &checklist, &typ, &target, &status, &g.Progress, &g.ActionPlan, &g.Result, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.Type = entity.GoalType(typ)
	g.Status = entity.GoalStatus(status)
	g.Checklist = []entity.ChecklistItem{}
	if len(checklist) > 0 {
		if err := sonic.Unmarshal(checklist, &g.Checklist); err != nil {
			return nil, errors.New("unmarshalling goal checklist error: " + err.Error())
		}
	}
	if len(target) > 0 {
		var t entity.Target
		if err := sonic.Unmarshal(target, &t); err != nil {
			return nil, errors.New("unmarshalling goal target error: " + err.Error())
		}
		g.Target = &t
	}
	return &g, nil
}
