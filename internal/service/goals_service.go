package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	errorvalues "github.com/rgoulart/respectpill/internal/error_values"
	"github.com/rgoulart/respectpill/internal/repository"
	"github.com/rgoulart/respectpill/pkg/entity"
)

type GoalsService struct {
	repo         repository.GoalsRepositoryI
	trackersRepo repository.TrackersRepositoryI
}

func NewGoalsService(goalsRepo repository.GoalsRepositoryI, trackersRepo repository.TrackersRepositoryI) *GoalsService {
	if goalsRepo == nil || trackersRepo == nil {
		log.Fatal("provided nil repos to goals service")
	}
	return &GoalsService{
		repo:         goalsRepo,
		trackersRepo: trackersRepo,
	}
}

func (gs *GoalsService) CreateGoal(ctx context.Context, uid uuid.UUID, req *CreateGoalRequest) (*entity.Goal, error) {
	if err := validateRequest(*req); err != nil {
		return nil, err
	}
	checklist := req.Checklist
	if checklist == nil {
		checklist = []entity.ChecklistItem{}
	}
	g := &entity.Goal{
		UserID:     uid,
		Title:      req.Title,
		StartDate:  req.StartDate,
		Deadline:   req.Deadline,
		Category:   req.Category,
		Checklist:  checklist,
		Type:       entity.GoalType(req.Type),
		Target:     req.Target,
		Status:     entity.GoalActive,
		Progress:   0,
		ActionPlan: req.ActionPlan,
	}
	id, err := gs.repo.Create(ctx, g)
	if err != nil {
		if errors.Is(err, errorvalues.ErrOwnerNotFound) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("goals repository error: " + err.Error())
	}
	goal, err := gs.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrGoalNotFound) {
			return nil, err
		}
		return nil, errors.New("goals repository error: " + err.Error())
	}
	return goal, nil
}

func (gs *GoalsService) GetUserGoals(ctx context.Context, uid uuid.UUID) ([]*entity.Goal, error) {
	goals, err := gs.repo.GetByUserID(ctx, uid)
	if err != nil {
		return nil, errors.New("goals repository error: " + err.Error())
	}
	return goals, nil
}

func (gs *GoalsService) UpdateGoal(ctx context.Context, goalID, userID uuid.UUID, req *UpdateGoalRequest) (*entity.Goal, error) {
	if err := validateRequest(*req); err != nil {
		return nil, err
	}
	goal, err := gs.getOwned(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	if req.Title != "" {
		goal.Title = req.Title
	}
	if req.Deadline != "" {
		goal.Deadline = req.Deadline
	}
	if req.Category != "" {
		goal.Category = req.Category
	}
	if req.Checklist != nil {
		goal.Checklist = req.Checklist
	}
	if req.Target != nil {
		goal.Target = req.Target
	}
	if req.ActionPlan != "" {
		goal.ActionPlan = req.ActionPlan
	}
	if req.Result != "" {
		goal.Result = req.Result
	}
	if err := gs.repo.Update(ctx, goal); err != nil {
		if errors.Is(err, errorvalues.ErrGoalNotFound) {
			return nil, err
		}
		return nil, errors.New("goals repository error: " + err.Error())
	}
	return goal, nil
}

func (gs *GoalsService) DeleteGoal(ctx context.Context, goalID, userID uuid.UUID) error {
	if _, err := gs.getOwned(ctx, goalID, userID); err != nil {
		return err
	}
	if err := gs.repo.Delete(ctx, goalID); err != nil {
		if errors.Is(err, errorvalues.ErrGoalNotFound) {
			return err
		}
		return errors.New("goals repository error: " + err.Error())
	}
	return nil
}

// ToggleChecklistItem flips one item and persists the re-derived progress
// and status. This is the only path that advances a manual goal.
func (gs *GoalsService) ToggleChecklistItem(ctx context.Context, goalID, userID uuid.UUID, itemID string) (*entity.Goal, error) {
	goal, err := gs.getOwned(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, item := range goal.Checklist {
		if item.ID == itemID {
			found = true
			break
		}
	}
	if !found {
		return nil, errorvalues.ErrItemNotFound
	}
	goal.Checklist, goal.Progress, goal.Status = ToggleChecklistItem(goal, itemID)
	if err := gs.repo.Update(ctx, goal); err != nil {
		if errors.Is(err, errorvalues.ErrGoalNotFound) {
			return nil, err
		}
		return nil, errors.New("goals repository error: " + err.Error())
	}
	return goal, nil
}

// Recheck re-evaluates the user's active goals against the full entry
// collection and persists each changed goal sequentially. A mid-pass
// failure leaves earlier updates in place; evaluation is idempotent, so
// the remainder is picked up by the next trigger.
func (gs *GoalsService) Recheck(ctx context.Context, userID uuid.UUID) error {
	goals, err := gs.repo.GetByUserID(ctx, userID)
	if err != nil {
		return errors.New("goals repository error: " + err.Error())
	}
	if len(goals) == 0 {
		return nil
	}
	entries, err := gs.trackersRepo.GetByUserID(ctx, userID, repository.ListFilter{})
	if err != nil {
		return errors.New("trackers repository error: " + err.Error())
	}
	for _, changed := range EvaluateGoals(goals, entries) {
		if err := gs.repo.Update(ctx, changed); err != nil {
			return errors.New("persisting goal progress error: " + err.Error())
		}
	}
	return nil
}

func (gs *GoalsService) getOwned(ctx context.Context, goalID, userID uuid.UUID) (*entity.Goal, error) {
	goal, err := gs.repo.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrGoalNotFound) {
			return nil, err
		}
		return nil, errors.New("goals repository error: " + err.Error())
	}
	if goal.UserID != userID {
		return nil, errorvalues.ErrWrongOwner
	}
	return goal, nil
}
