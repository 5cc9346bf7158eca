package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/rgoulart/respectpill/internal/error_values"
	"github.com/rgoulart/respectpill/internal/repository"
	"github.com/rgoulart/respectpill/pkg/entity"
)

type HabitsService struct {
	repo         repository.HabitsRepositoryI
	trackersRepo repository.TrackersRepositoryI
	now          func() time.Time
}

func NewHabitsService(habitsRepo repository.HabitsRepositoryI, trackersRepo repository.TrackersRepositoryI) *HabitsService {
	if habitsRepo == nil || trackersRepo == nil {
		log.Fatal("provided nil repos to habits service")
	}
	return &HabitsService{
		repo:         habitsRepo,
		trackersRepo: trackersRepo,
		now:          time.Now,
	}
}

func (hs *HabitsService) CreateHabit(ctx context.Context, uid uuid.UUID, req *CreateHabitRequest) (*entity.Habit, error) {
	if err := validateRequest(*req); err != nil {
		return nil, err
	}
	h := entity.Habit{
		UserID: uid,
		Title:  req.Title,
		Type:   entity.HabitType(req.Type),
		Goal:   req.Goal,
		Unit:   req.Unit,
		Color:  req.Color,
	}
	id, err := hs.repo.Create(ctx, &h)
	if err != nil {
		if errors.Is(err, errorvalues.ErrOwnerNotFound) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	habit, err := hs.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	return habit, nil
}

func (hs *HabitsService) GetUserHabits(ctx context.Context, uid uuid.UUID) ([]*entity.Habit, error) {
	habits, err := hs.repo.GetByUserID(ctx, uid)
	if err != nil {
		return nil, errors.New("habits repository error: " + err.Error())
	}
	return habits, nil
}

func (hs *HabitsService) DeleteHabit(ctx context.Context, habitID, userID uuid.UUID) error {
	if _, err := hs.getOwned(ctx, habitID, userID); err != nil {
		return err
	}
	err := hs.repo.Delete(ctx, habitID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return err
		}
		return errors.New("habits repository error: " + err.Error())
	}
	return nil
}

// HabitStreak counts consecutive days the habit was logged completed,
// ending today.
func (hs *HabitsService) HabitStreak(ctx context.Context, habitID, userID uuid.UUID) (int, error) {
	if _, err := hs.getOwned(ctx, habitID, userID); err != nil {
		return 0, err
	}
	logs, err := hs.trackersRepo.GetByUserID(ctx, userID, repository.ListFilter{Type: entity.TypeHabitLog})
	if err != nil {
		return 0, errors.New("trackers repository error: " + err.Error())
	}
	return ComputeStreak(logs, QualifyHabitCompleted(habitID.String()), hs.now()), nil
}

func (hs *HabitsService) getOwned(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	habit, err := hs.repo.GetByID(ctx, habitID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	if habit.UserID != userID {
		return nil, errorvalues.ErrWrongOwner
	}
	return habit, nil
}
