package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	errorvalues "github.com/rgoulart/respectpill/internal/error_values"
	"github.com/rgoulart/respectpill/internal/service"
	"github.com/rgoulart/respectpill/pkg/entity"
	"github.com/rgoulart/respectpill/pkg/httputil"
)

type CreateTrackerRequest struct {
	Type     string            `json:"type"`
	Date     string            `json:"date"`
	Value    entity.EntryValue `json:"value"`
	Metadata entity.Metadata   `json:"metadata"`
	Gender   string            `json:"gender,omitempty"`
}

type UpdateTrackerRequest struct {
	Date     string            `json:"date,omitempty"`
	Value    entity.EntryValue `json:"value"`
	Metadata entity.Metadata   `json:"metadata"`
	Gender   string            `json:"gender,omitempty"`
}

type SaveValueRequest struct {
	Type   string            `json:"type"`
	Date   string            `json:"date"`
	Value  entity.EntryValue `json:"value"`
	Gender string            `json:"gender,omitempty"`
}

type SaveWeeklyRequest struct {
	WeekNum  int    `json:"weekNum"`
	Year     int    `json:"year"`
	MetricID string `json:"metricId"`
	Value    string `json:"value"`
}

type GetTrackersResponse struct {
	UserID   string          `json:"uid"`
	Trackers []*entity.Entry `json:"trackers"`
}

func (s *Server) GetTrackers(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get trackers error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	opts := service.ListOpts{
		Type: entity.TrackerType(r.URL.Query().Get("type")),
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	entries, err := s.trackersService.List(ctx, uid, opts)
	if err != nil {
		logger.Error("getting trackers list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting trackers list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, GetTrackersResponse{
		UserID:   uid.String(),
		Trackers: entries,
	})
	logger.Info("trackers provided")
}

func (s *Server) CreateTracker(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create tracker error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CreateTrackerRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create tracker error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	entry, err := s.trackersService.Create(ctx, uid, &service.CreateTrackerRequest{
		Type:     req.Type,
		Date:     req.Date,
		Value:    req.Value,
		Metadata: req.Metadata,
		Gender:   req.Gender,
	})
	if err != nil {
		switch {
		case strings.HasPrefix(err.Error(), "validation error"):
			logger.Error("create tracker error: validation failed")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid tracker fields", err)
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("create tracker error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "couldn't create tracker: user doesn't exists", nil)
		default:
			logger.Error("create tracker error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while creating tracker", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, entry)
	logger.Info("tracker created")
}

func (s *Server) UpdateTracker(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("update tracker error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("update tracker error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid tracker id in path value", nil)
		return
	}
	var req UpdateTrackerRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("update tracker error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	entry, err := s.trackersService.Update(ctx, id, uid, &service.UpdateTrackerRequest{
		Date:     req.Date,
		Value:    req.Value,
		Metadata: req.Metadata,
		Gender:   req.Gender,
	})
	if err != nil {
		writeTrackerError(w, logger, "update tracker error", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, entry)
	logger.Info("tracker updated")
}

func (s *Server) DeleteTracker(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("tracker deletion error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("tracker deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid tracker id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.trackersService.Delete(ctx, id, uid)
	if err != nil {
		writeTrackerError(w, logger, "tracker deletion error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("tracker deleted")
}

func (s *Server) SaveTrackerValue(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("save value error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req SaveValueRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("save value error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	entry, err := s.trackersService.SaveValue(ctx, uid, &service.SaveValueRequest{
		Type:   req.Type,
		Date:   req.Date,
		Value:  req.Value,
		Gender: req.Gender,
	})
	if err != nil {
		switch {
		case strings.HasPrefix(err.Error(), "validation error"):
			logger.Error("save value error: validation failed")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid tracker fields", err)
		default:
			logger.Error("save value error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while saving value", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, entry)
	logger.Info("tracker value saved")
}

func (s *Server) GetStreak(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get streak error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	trackerType := r.URL.Query().Get("type")
	if trackerType == "" {
		logger.Error("get streak error: missing type")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "type query parameter is required", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	streak, err := s.trackersService.Streak(ctx, uid, entity.TrackerType(trackerType))
	if err != nil {
		logger.Error("get streak error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while computing streak", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"type":   trackerType,
		"streak": streak,
	})
	logger.Info("streak provided")
}

func (s *Server) ExportTrackers(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("export error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	format := r.URL.Query().Get("format")
	if format != "csv" && format != "json" {
		logger.Error("export error: unknown format")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "format must be csv or json", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	out, err := s.trackersService.Export(ctx, uid, format)
	if err != nil {
		logger.Error("export error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while exporting trackers", nil)
		return
	}
	contentType := "application/json"
	if format == "csv" {
		contentType = "text/csv"
	}
	httputil.WriteAttachment(w, contentType, "trackers."+format, out)
	logger.Info("trackers exported")
}

func (s *Server) GetWeeklyValue(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get weekly value error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	weekNum, err := strconv.Atoi(r.URL.Query().Get("week"))
	if err != nil || weekNum < 1 || weekNum > 53 {
		logger.Error("get weekly value error: invalid week")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "week must be a number in 1..53", nil)
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		year = time.Now().Year()
	}
	metricID := r.URL.Query().Get("metricId")
	metricName := r.URL.Query().Get("metricName")
	if metricID == "" {
		logger.Error("get weekly value error: missing metricId")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "metricId query parameter is required", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	value, err := s.trackersService.ResolveWeekly(ctx, uid, weekNum, year, metricID, metricName)
	if err != nil {
		logger.Error("get weekly value error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while resolving weekly value", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"weekNum":  weekNum,
		"year":     year,
		"metricId": metricID,
		"value":    value,
	})
	logger.Info("weekly value provided")
}

func (s *Server) SaveWeeklyValue(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("save weekly value error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req SaveWeeklyRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("save weekly value error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	entry, err := s.trackersService.SaveWeeklyValue(ctx, uid, &service.SaveWeeklyRequest{
		WeekNum:  req.WeekNum,
		Year:     req.Year,
		MetricID: req.MetricID,
		Value:    req.Value,
	})
	if err != nil {
		switch {
		case strings.HasPrefix(err.Error(), "validation error"):
			logger.Error("save weekly value error: validation failed")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid weekly value fields", err)
		default:
			logger.Error("save weekly value error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while saving weekly value", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, entry)
	logger.Info("weekly value saved")
}

func writeTrackerError(w http.ResponseWriter, logger *slog.Logger, prefix string, err error) {
	switch {
	case strings.HasPrefix(err.Error(), "validation error"):
		logger.Error(prefix + ": validation failed")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid tracker fields", err)
	case errors.Is(err, errorvalues.ErrTrackerNotFound):
		logger.Error(prefix + ": unexist tracker")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "tracker doesn't exist", nil)
	case errors.Is(err, errorvalues.ErrWrongOwner):
		logger.Error(prefix + ": tracker has different owner")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "tracker doesn't exist", nil)
	default:
		logger.Error(prefix+": service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal tracker error", nil)
	}
}
