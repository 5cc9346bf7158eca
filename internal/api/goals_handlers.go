package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	errorvalues "github.com/rgoulart/respectpill/internal/error_values"
	"github.com/rgoulart/respectpill/internal/service"
	"github.com/rgoulart/respectpill/pkg/entity"
	"github.com/rgoulart/respectpill/pkg/httputil"
)

type CreateGoalRequest struct {
	Title      string                 `json:"title"`
	StartDate  string                 `json:"startDate,omitempty"`
	Deadline   string                 `json:"deadline"`
	Category   string                 `json:"category,omitempty"`
	Checklist  []entity.ChecklistItem `json:"checklist,omitempty"`
	Type       string                 `json:"type"`
	Target     *entity.Target         `json:"target,omitempty"`
	ActionPlan string                 `json:"actionPlan,omitempty"`
}

type UpdateGoalRequest struct {
	Title      string                 `json:"title,omitempty"`
	Deadline   string                 `json:"deadline,omitempty"`
	Category   string                 `json:"category,omitempty"`
	Checklist  []entity.ChecklistItem `json:"checklist,omitempty"`
	Target     *entity.Target         `json:"target,omitempty"`
	ActionPlan string                 `json:"actionPlan,omitempty"`
	Result     string                 `json:"result,omitempty"`
}

type GetGoalsResponse struct {
	UserID string         `json:"uid"`
	Goals  []*entity.Goal `json:"goals"`
}

func (s *Server) CreateGoal(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create goal error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CreateGoalRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create goal error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	goal, err := s.goalsService.CreateGoal(ctx, uid, &service.CreateGoalRequest{
		Title:      req.Title,
		StartDate:  req.StartDate,
		Deadline:   req.Deadline,
		Category:   req.Category,
		Checklist:  req.Checklist,
		Type:       req.Type,
		Target:     req.Target,
		ActionPlan: req.ActionPlan,
	})
	if err != nil {
		switch {
		case strings.HasPrefix(err.Error(), "validation error"):
			logger.Error("create goal error: validation failed")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid goal fields", err)
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("create goal error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "couldn't create goal: user doesn't exists", nil)
		default:
			logger.Error("create goal error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while creating goal", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, goal)
	logger.Info("goal created")
}

func (s *Server) GetGoals(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get goals error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	goals, err := s.goalsService.GetUserGoals(ctx, uid)
	if err != nil {
		logger.Error("getting goals list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting goals list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, GetGoalsResponse{
		UserID: uid.String(),
		Goals:  goals,
	})
	logger.Info("goals provided")
}

func (s *Server) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("update goal error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("update goal error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid goal id in path value", nil)
		return
	}
	var req UpdateGoalRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("update goal error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	goal, err := s.goalsService.UpdateGoal(ctx, id, uid, &service.UpdateGoalRequest{
		Title:      req.Title,
		Deadline:   req.Deadline,
		Category:   req.Category,
		Checklist:  req.Checklist,
		Target:     req.Target,
		ActionPlan: req.ActionPlan,
		Result:     req.Result,
	})
	if err != nil {
		writeGoalError(w, logger, "update goal error", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, goal)
	logger.Info("goal updated")
}

func (s *Server) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("goal deletion error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("goal deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid goal id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.goalsService.DeleteGoal(ctx, id, uid)
	if err != nil {
		writeGoalError(w, logger, "goal deletion error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("goal deleted")
}

func (s *Server) ToggleChecklistItem(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("toggle checklist error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("toggle checklist error: invalid goal id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid goal id in path value", nil)
		return
	}
	itemID := r.PathValue("itemId")
	if itemID == "" {
		logger.Error("toggle checklist error: missing item id")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "missing checklist item id", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	goal, err := s.goalsService.ToggleChecklistItem(ctx, id, uid, itemID)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrItemNotFound):
			logger.Error("toggle checklist error: unexist item")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "checklist item doesn't exist", nil)
		default:
			writeGoalError(w, logger, "toggle checklist error", err)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, goal)
	logger.Info("checklist item toggled")
}

func writeGoalError(w http.ResponseWriter, logger *slog.Logger, prefix string, err error) {
	switch {
	case strings.HasPrefix(err.Error(), "validation error"):
		logger.Error(prefix + ": validation failed")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid goal fields", err)
	case errors.Is(err, errorvalues.ErrGoalNotFound):
		logger.Error(prefix + ": unexist goal")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "goal doesn't exist", nil)
	case errors.Is(err, errorvalues.ErrWrongOwner):
		logger.Error(prefix + ": goal has different owner")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "goal doesn't exist", nil)
	default:
		logger.Error(prefix+": service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal goal error", nil)
	}
}
