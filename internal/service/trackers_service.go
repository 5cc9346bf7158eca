package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	errorvalues "github.com/rgoulart/respectpill/internal/error_values"
	"github.com/rgoulart/respectpill/internal/repository"
	"github.com/rgoulart/respectpill/pkg/entity"
)

// TrackersService owns the entry collection and the read-path aggregations
// over it (streaks, weekly metrics, export). Every successful create or
// value save triggers a goal recheck through the injected checker.
type TrackersService struct {
	repo    repository.TrackersRepositoryI
	checker GoalCheckerI
	now     func() time.Time
}

func NewTrackersService(trackersRepo repository.TrackersRepositoryI, checker GoalCheckerI) *TrackersService {
	if trackersRepo == nil || checker == nil {
		log.Fatal("provided nil deps to trackers service")
	}
	return &TrackersService{
		repo:    trackersRepo,
		checker: checker,
		now:     time.Now,
	}
}

func (ts *TrackersService) Create(ctx context.Context, uid uuid.UUID, req *CreateTrackerRequest) (*entity.Entry, error) {
	if err := validateRequest(*req); err != nil {
		return nil, err
	}
	e := &entity.Entry{
		UserID:   uid,
		Type:     entity.TrackerType(req.Type),
		Date:     req.Date,
		Value:    req.Value,
		Metadata: req.Metadata,
	}
	recomputeBodyFat(e, req.Gender)
	created, err := ts.persistNew(ctx, e)
	if err != nil {
		return nil, err
	}
	if err := ts.checker.Recheck(ctx, uid); err != nil {
		return created, errors.New("goal recheck error: " + err.Error())
	}
	return created, nil
}

func (ts *TrackersService) List(ctx context.Context, uid uuid.UUID, opts ListOpts) ([]*entity.Entry, error) {
	entries, err := ts.repo.GetByUserID(ctx, uid, repository.ListFilter{
		Type: opts.Type,
		From: opts.From,
		To:   opts.To,
	})
	if err != nil {
		return nil, errors.New("trackers repository error: " + err.Error())
	}
	return entries, nil
}

func (ts *TrackersService) Update(ctx context.Context, id, uid uuid.UUID, req *UpdateTrackerRequest) (*entity.Entry, error) {
	if err := validateRequest(*req); err != nil {
		return nil, err
	}
	e, err := ts.getOwned(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	if req.Date != "" {
		e.Date = req.Date
	}
	e.Value = req.Value
	if !req.Metadata.IsZero() {
		e.Metadata = req.Metadata
	}
	recomputeBodyFat(e, req.Gender)
	if err := ts.repo.Update(ctx, e); err != nil {
		if errors.Is(err, errorvalues.ErrTrackerNotFound) {
			return nil, err
		}
		return nil, errors.New("trackers repository error: " + err.Error())
	}
	return e, nil
}

func (ts *TrackersService) Delete(ctx context.Context, id, uid uuid.UUID) error {
	if _, err := ts.getOwned(ctx, id, uid); err != nil {
		return err
	}
	if err := ts.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, errorvalues.ErrTrackerNotFound) {
			return err
		}
		return errors.New("trackers repository error: " + err.Error())
	}
	return nil
}

// SaveValue is the daily upsert: at most one entry exists per
// (user, date, type), located by search and updated in place. Best-effort
// only, concurrent submits can still duplicate.
func (ts *TrackersService) SaveValue(ctx context.Context, uid uuid.UUID, req *SaveValueRequest) (*entity.Entry, error) {
	if err := validateRequest(*req); err != nil {
		return nil, err
	}
	existing, err := ts.repo.FindDaily(ctx, uid, req.Date, entity.TrackerType(req.Type))
	if err != nil && !errors.Is(err, errorvalues.ErrTrackerNotFound) {
		return nil, errors.New("trackers repository error: " + err.Error())
	}

	var saved *entity.Entry
	if existing != nil {
		existing.Value = req.Value
		recomputeBodyFat(existing, req.Gender)
		if err := ts.repo.Update(ctx, existing); err != nil {
			return nil, errors.New("trackers repository error: " + err.Error())
		}
		saved = existing
	} else {
		e := &entity.Entry{
			UserID: uid,
			Type:   entity.TrackerType(req.Type),
			Date:   req.Date,
			Value:  req.Value,
		}
		recomputeBodyFat(e, req.Gender)
		saved, err = ts.persistNew(ctx, e)
		if err != nil {
			return nil, err
		}
	}
	if err := ts.checker.Recheck(ctx, uid); err != nil {
		return saved, errors.New("goal recheck error: " + err.Error())
	}
	return saved, nil
}

func (ts *TrackersService) Streak(ctx context.Context, uid uuid.UUID, t entity.TrackerType) (int, error) {
	entries, err := ts.repo.GetByUserID(ctx, uid, repository.ListFilter{Type: t})
	if err != nil {
		return 0, errors.New("trackers repository error: " + err.Error())
	}
	return ComputeStreak(entries, QualifyAny, ts.now()), nil
}

func (ts *TrackersService) Export(ctx context.Context, uid uuid.UUID, format string) ([]byte, error) {
	entries, err := ts.repo.GetByUserID(ctx, uid, repository.ListFilter{})
	if err != nil {
		return nil, errors.New("trackers repository error: " + err.Error())
	}
	switch format {
	case "json":
		out, err := sonic.ConfigDefault.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, errors.New("export marshalling error: " + err.Error())
		}
		return out, nil
	case "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		w.Write([]string{"Date", "Type", "Value", "Created At"})
		for _, e := range entries {
			value, err := sonic.Marshal(e.Value)
			if err != nil {
				return nil, errors.New("export marshalling error: " + err.Error())
			}
			w.Write([]string{e.Date, string(e.Type), string(value), e.CreatedAt.Format(time.RFC3339)})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, errors.New("export writing error: " + err.Error())
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.New("unknown export format: " + format)
	}
}

func (ts *TrackersService) ResolveWeekly(ctx context.Context, uid uuid.UUID, weekNum, year int, metricID, metricName string) (string, error) {
	entries, err := ts.repo.GetByUserID(ctx, uid, repository.ListFilter{})
	if err != nil {
		return "", errors.New("trackers repository error: " + err.Error())
	}
	return ResolveWeeklyValue(entries, weekNum, year, metricID, metricName, func(weekNum int) time.Time {
		return WeekStart(year, weekNum)
	}), nil
}

// SaveWeeklyValue upserts on the (weekNum, year, metricId) composite key.
// Last write wins, no concurrency check. A fresh entry is dated the day of
// submission and triggers a goal recheck like any other create.
func (ts *TrackersService) SaveWeeklyValue(ctx context.Context, uid uuid.UUID, req *SaveWeeklyRequest) (*entity.Entry, error) {
	if err := validateRequest(*req); err != nil {
		return nil, err
	}
	existing, err := ts.repo.FindWeekly(ctx, uid, req.WeekNum, req.Year, req.MetricID)
	if err != nil && !errors.Is(err, errorvalues.ErrTrackerNotFound) {
		return nil, errors.New("trackers repository error: " + err.Error())
	}
	if existing != nil {
		existing.Value = entity.ScalarValue(req.Value)
		if err := ts.repo.Update(ctx, existing); err != nil {
			return nil, errors.New("trackers repository error: " + err.Error())
		}
		return existing, nil
	}

	e := &entity.Entry{
		UserID: uid,
		Type:   entity.TypeWeeklyMetric,
		Date:   ts.now().Format(entity.DateLayout),
		Value:  entity.ScalarValue(req.Value),
		Metadata: entity.Metadata{
			WeekNum:  req.WeekNum,
			Year:     req.Year,
			MetricID: req.MetricID,
		},
	}
	created, err := ts.persistNew(ctx, e)
	if err != nil {
		return nil, err
	}
	if err := ts.checker.Recheck(ctx, uid); err != nil {
		return created, errors.New("goal recheck error: " + err.Error())
	}
	return created, nil
}

func (ts *TrackersService) persistNew(ctx context.Context, e *entity.Entry) (*entity.Entry, error) {
	id, err := ts.repo.Create(ctx, e)
	if err != nil {
		if errors.Is(err, errorvalues.ErrOwnerNotFound) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("trackers repository error: " + err.Error())
	}
	created, err := ts.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrTrackerNotFound) {
			return nil, err
		}
		return nil, errors.New("trackers repository error: " + err.Error())
	}
	return created, nil
}

func (ts *TrackersService) getOwned(ctx context.Context, id, uid uuid.UUID) (*entity.Entry, error) {
	e, err := ts.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrTrackerNotFound) {
			return nil, err
		}
		return nil, errors.New("trackers repository error: " + err.Error())
	}
	if e.UserID != uid {
		return nil, errorvalues.ErrWrongOwner
	}
	return e, nil
}

// recomputeBodyFat refreshes the derived bodyFat field of a measurement
// draft, silently overwriting any manually entered value whenever the
// formula has enough inputs.
func recomputeBodyFat(e *entity.Entry, gender string) {
	if e.Type != entity.TypeBodyMeasurement || gender == "" || e.Value.Measurements == nil {
		return
	}
	if bf, ok := BodyFatPercent(e.Value.Measurements, gender); ok {
		e.Value.Measurements["bodyFat"] = bf
	}
}

func validateRequest(req any) error {
	err := validateStruct(req)
	if err != nil {
		if validationError, ok := err.(validator.ValidationErrors); ok {
			joined := errors.New("validation error: ")
			for _, fieldErr := range validationError {
				joined = errors.Join(joined, fieldErr)
			}
			return joined
		}
		return errors.New("validation unexpected error: " + err.Error())
	}
	return nil
}
