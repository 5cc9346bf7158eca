package api_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/rgoulart/respectpill/internal/api"
	errorvalues "github.com/rgoulart/respectpill/internal/error_values"
	"github.com/rgoulart/respectpill/internal/service"
	"github.com/rgoulart/respectpill/pkg/entity"
	jwtservice "github.com/rgoulart/respectpill/pkg/jwt_service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	service.InitValidator()
	m.Run()
}

// Variables for tests
var (
	username        = "test_name"
	password        = "test_password"
	passwordHash, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	uid             = uuid.New()
	entryID         = uuid.New()
	goalID          = uuid.New()
	habitID         = uuid.New()
)

func testUser() *entity.User {
	return &entity.User{ID: uid, Name: username, PasswordHash: string(passwordHash)}
}

func testEntry() *entity.Entry {
	return &entity.Entry{
		ID:     entryID,
		UserID: uid,
		Type:   entity.TypeWater,
		Date:   "2025-06-01",
		Value:  entity.ScalarValue("2.5"),
	}
}

func testGoal() *entity.Goal {
	return &entity.Goal{
		ID:     goalID,
		UserID: uid,
		Title:  "read two books",
		Type:   entity.GoalManual,
		Status: entity.GoalActive,
		Checklist: []entity.ChecklistItem{
			{ID: "a", Text: "book one", Completed: true},
			{ID: "b", Text: "book two", Completed: true},
		},
		Progress: 100,
	}
}

type UserServiceMock struct {
	err error
}

func (m *UserServiceMock) Register(ctx context.Context, req *service.RegisterRequest) (*entity.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testUser(), nil
}

func (m *UserServiceMock) Login(ctx context.Context, name, password string) (*entity.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testUser(), nil
}

func (m *UserServiceMock) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testUser(), nil
}

func (m *UserServiceMock) DeleteAccount(ctx context.Context, id uuid.UUID, password string) error {
	return m.err
}

type TrackersServiceMock struct {
	err error
}

func (m *TrackersServiceMock) Create(ctx context.Context, uid uuid.UUID, req *service.CreateTrackerRequest) (*entity.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testEntry(), nil
}

func (m *TrackersServiceMock) List(ctx context.Context, uid uuid.UUID, opts service.ListOpts) ([]*entity.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []*entity.Entry{testEntry()}, nil
}

func (m *TrackersServiceMock) Update(ctx context.Context, id, uid uuid.UUID, req *service.UpdateTrackerRequest) (*entity.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testEntry(), nil
}

func (m *TrackersServiceMock) Delete(ctx context.Context, id, uid uuid.UUID) error {
	return m.err
}

func (m *TrackersServiceMock) SaveValue(ctx context.Context, uid uuid.UUID, req *service.SaveValueRequest) (*entity.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testEntry(), nil
}

func (m *TrackersServiceMock) Streak(ctx context.Context, uid uuid.UUID, t entity.TrackerType) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return 3, nil
}

func (m *TrackersServiceMock) Export(ctx context.Context, uid uuid.UUID, format string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []byte("Date,Type,Value,Created At\n"), nil
}

func (m *TrackersServiceMock) ResolveWeekly(ctx context.Context, uid uuid.UUID, weekNum, year int, metricID, metricName string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "82.5", nil
}

func (m *TrackersServiceMock) SaveWeeklyValue(ctx context.Context, uid uuid.UUID, req *service.SaveWeeklyRequest) (*entity.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testEntry(), nil
}

type HabitsServiceMock struct {
	err error
}

func (m *HabitsServiceMock) CreateHabit(ctx context.Context, uid uuid.UUID, req *service.CreateHabitRequest) (*entity.Habit, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &entity.Habit{ID: habitID, UserID: uid, Title: "morning run", Type: entity.HabitBoolean}, nil
}

func (m *HabitsServiceMock) GetUserHabits(ctx context.Context, uid uuid.UUID) ([]*entity.Habit, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []*entity.Habit{{ID: habitID, UserID: uid, Title: "morning run", Type: entity.HabitBoolean}}, nil
}

func (m *HabitsServiceMock) DeleteHabit(ctx context.Context, habitID, userID uuid.UUID) error {
	return m.err
}

func (m *HabitsServiceMock) HabitStreak(ctx context.Context, habitID, userID uuid.UUID) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return 4, nil
}

type GoalsServiceMock struct {
	err error
}

func (m *GoalsServiceMock) CreateGoal(ctx context.Context, uid uuid.UUID, req *service.CreateGoalRequest) (*entity.Goal, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testGoal(), nil
}

func (m *GoalsServiceMock) GetUserGoals(ctx context.Context, uid uuid.UUID) ([]*entity.Goal, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []*entity.Goal{testGoal()}, nil
}

func (m *GoalsServiceMock) UpdateGoal(ctx context.Context, goalID, userID uuid.UUID, req *service.UpdateGoalRequest) (*entity.Goal, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testGoal(), nil
}

func (m *GoalsServiceMock) DeleteGoal(ctx context.Context, goalID, userID uuid.UUID) error {
	return m.err
}

func (m *GoalsServiceMock) ToggleChecklistItem(ctx context.Context, goalID, userID uuid.UUID, itemID string) (*entity.Goal, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testGoal(), nil
}

func (m *GoalsServiceMock) Recheck(ctx context.Context, userID uuid.UUID) error {
	return m.err
}

func newTestServer(users *UserServiceMock, trackers *TrackersServiceMock, habits *HabitsServiceMock, goals *GoalsServiceMock) (*api.Server, string) {
	jwt := jwtservice.New("test_secret")
	serv := api.New(&api.ServicesList{
		UserService:     users,
		TrackersService: trackers,
		HabitsService:   habits,
		GoalsService:    goals,
		JwtService:      jwt,
	})
	token, err := jwt.GenerateToken(testUser())
	if err != nil {
		panic(err)
	}
	return serv, token
}

func TestRegister(t *testing.T) {
	body, err := sonic.ConfigDefault.Marshal(api.RegisterRequest{
		Name:     username,
		Password: password,
	})
	if err != nil {
		t.Fatal(err)
	}
	mock := &UserServiceMock{}
	serv, _ := newTestServer(mock, &TrackersServiceMock{}, &HabitsServiceMock{}, &GoalsServiceMock{})
	t.Run("registered", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewReader(body))
		serv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusCreated, rr.Result().StatusCode)
		assert.Contains(t, rr.Body.String(), uid.String())
	})
	t.Run("name taken", func(t *testing.T) {
		mock.err = errorvalues.ErrUserExists
		defer func() { mock.err = nil }()
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewReader(body))
		serv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusConflict, rr.Result().StatusCode)
	})
	t.Run("invalid body", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewReader([]byte("{invalid")))
		serv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	})
}

func TestLogin(t *testing.T) {
	body, err := sonic.ConfigDefault.Marshal(api.LoginRequest{
		Name:     username,
		Password: password,
	})
	if err != nil {
		t.Fatal(err)
	}
	mock := &UserServiceMock{}
	serv, _ := newTestServer(mock, &TrackersServiceMock{}, &HabitsServiceMock{}, &GoalsServiceMock{})
	t.Run("logged in", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewReader(body))
		serv.Handler().ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Result().StatusCode)
		var resp map[string]any
		require.NoError(t, sonic.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, uid.String(), resp["uid"])
		assert.NotEmpty(t, resp["token"])
	})
	t.Run("wrong password", func(t *testing.T) {
		mock.err = errorvalues.ErrWrongCredentials
		defer func() { mock.err = nil }()
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewReader(body))
		serv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Result().StatusCode)
	})
	t.Run("unknown user", func(t *testing.T) {
		mock.err = errorvalues.ErrUserNotFound
		defer func() { mock.err = nil }()
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewReader(body))
		serv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Result().StatusCode)
	})
}

func TestAuthMiddleware(t *testing.T) {
	serv, token := newTestServer(&UserServiceMock{}, &TrackersServiceMock{}, &HabitsServiceMock{}, &GoalsServiceMock{})
	t.Run("missing token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/trackers/", nil)
		serv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Result().StatusCode)
	})
	t.Run("malformed header", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/trackers/", nil)
		req.Header.Set("Authorization", token)
		serv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Result().StatusCode)
	})
	t.Run("garbage token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/trackers/", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		serv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Result().StatusCode)
	})
}

func authedRequest(method, target string, body []byte, token string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestTrackersEndpoints(t *testing.T) {
	trackersMock := &TrackersServiceMock{}
	serv, token := newTestServer(&UserServiceMock{}, trackersMock, &HabitsServiceMock{}, &GoalsServiceMock{})
	t.Run("list", func(t *testing.T) {
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/trackers/", nil, token))
		require.Equal(t, http.StatusOK, rr.Result().StatusCode)
		assert.Contains(t, rr.Body.String(), uid.String())
		assert.Contains(t, rr.Body.String(), `"water"`)
	})
	t.Run("create", func(t *testing.T) {
		body, _ := sonic.Marshal(api.CreateTrackerRequest{
			Type: "water", Date: "2025-06-01", Value: entity.ScalarValue("2.5"),
		})
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/trackers/", body, token))
		assert.Equal(t, http.StatusCreated, rr.Result().StatusCode)
	})
	t.Run("save value", func(t *testing.T) {
		body, _ := sonic.Marshal(api.SaveValueRequest{
			Type: "water", Date: "2025-06-01", Value: entity.ScalarValue("3.0"),
		})
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodPut, "/api/v1/trackers/value", body, token))
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	})
	t.Run("delete", func(t *testing.T) {
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodDelete, "/api/v1/trackers/"+entryID.String(), nil, token))
		assert.Equal(t, http.StatusNoContent, rr.Result().StatusCode)
	})
	t.Run("delete with bad id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodDelete, "/api/v1/trackers/not-a-uuid", nil, token))
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	})
	t.Run("streak", func(t *testing.T) {
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/trackers/streak?type=workout", nil, token))
		require.Equal(t, http.StatusOK, rr.Result().StatusCode)
		assert.Contains(t, rr.Body.String(), `"streak":3`)
	})
	t.Run("streak without type", func(t *testing.T) {
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/trackers/streak", nil, token))
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	})
	t.Run("export csv", func(t *testing.T) {
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/trackers/export?format=csv", nil, token))
		require.Equal(t, http.StatusOK, rr.Result().StatusCode)
		assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "trackers.csv")
	})
	t.Run("export with unknown format", func(t *testing.T) {
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/trackers/export?format=xml", nil, token))
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	})
	t.Run("list service error", func(t *testing.T) {
		trackersMock.err = assert.AnError
		defer func() { trackersMock.err = nil }()
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/trackers/", nil, token))
		assert.Equal(t, http.StatusInternalServerError, rr.Result().StatusCode)
	})
}

func TestWeeklyEndpoints(t *testing.T) {
	serv, token := newTestServer(&UserServiceMock{}, &TrackersServiceMock{}, &HabitsServiceMock{}, &GoalsServiceMock{})
	t.Run("get value", func(t *testing.T) {
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/weekly/?week=5&year=2025&metricId=metric1&metricName=Peso", nil, token))
		require.Equal(t, http.StatusOK, rr.Result().StatusCode)
		assert.Contains(t, rr.Body.String(), `"82.5"`)
	})
	t.Run("missing week", func(t *testing.T) {
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/weekly/?metricId=metric1", nil, token))
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	})
	t.Run("save value", func(t *testing.T) {
		body, _ := sonic.Marshal(api.SaveWeeklyRequest{
			WeekNum: 5, Year: 2025, MetricID: "metric1", Value: "82.5",
		})
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodPut, "/api/v1/weekly/", body, token))
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	})
}

func TestGoalsEndpoints(t *testing.T) {
	goalsMock := &GoalsServiceMock{}
	serv, token := newTestServer(&UserServiceMock{}, &TrackersServiceMock{}, &HabitsServiceMock{}, goalsMock)
	t.Run("list", func(t *testing.T) {
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/goals/", nil, token))
		require.Equal(t, http.StatusOK, rr.Result().StatusCode)
		assert.Contains(t, rr.Body.String(), "read two books")
	})
	t.Run("create", func(t *testing.T) {
		body, _ := sonic.Marshal(api.CreateGoalRequest{
			Title: "read two books", Deadline: "2025-12-31", Type: "manual",
		})
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/goals/", body, token))
		assert.Equal(t, http.StatusCreated, rr.Result().StatusCode)
	})
	t.Run("toggle checklist item", func(t *testing.T) {
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/goals/"+goalID.String()+"/checklist/b/toggle", nil, token))
		require.Equal(t, http.StatusOK, rr.Result().StatusCode)
		assert.Contains(t, rr.Body.String(), `"progress":100`)
	})
	t.Run("toggle unknown item", func(t *testing.T) {
		goalsMock.err = errorvalues.ErrItemNotFound
		defer func() { goalsMock.err = nil }()
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/goals/"+goalID.String()+"/checklist/zzz/toggle", nil, token))
		assert.Equal(t, http.StatusNotFound, rr.Result().StatusCode)
	})
	t.Run("update missing goal", func(t *testing.T) {
		goalsMock.err = errorvalues.ErrGoalNotFound
		defer func() { goalsMock.err = nil }()
		body, _ := sonic.Marshal(api.UpdateGoalRequest{Category: "health"})
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodPut, "/api/v1/goals/"+goalID.String(), body, token))
		assert.Equal(t, http.StatusNotFound, rr.Result().StatusCode)
	})
}

func TestHabitsEndpoints(t *testing.T) {
	habitsMock := &HabitsServiceMock{}
	serv, token := newTestServer(&UserServiceMock{}, &TrackersServiceMock{}, habitsMock, &GoalsServiceMock{})
	t.Run("list", func(t *testing.T) {
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/habits/", nil, token))
		require.Equal(t, http.StatusOK, rr.Result().StatusCode)
		assert.Contains(t, rr.Body.String(), "morning run")
	})
	t.Run("create", func(t *testing.T) {
		body, _ := sonic.Marshal(api.CreateHabitRequest{Title: "morning run", Type: "boolean"})
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/habits/", body, token))
		assert.Equal(t, http.StatusCreated, rr.Result().StatusCode)
	})
	t.Run("streak", func(t *testing.T) {
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/habits/"+habitID.String()+"/streak", nil, token))
		require.Equal(t, http.StatusOK, rr.Result().StatusCode)
		assert.Contains(t, rr.Body.String(), `"streak":4`)
	})
	t.Run("delete missing habit", func(t *testing.T) {
		habitsMock.err = errorvalues.ErrHabitNotFound
		defer func() { habitsMock.err = nil }()
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodDelete, "/api/v1/habits/"+habitID.String(), nil, token))
		assert.Equal(t, http.StatusNotFound, rr.Result().StatusCode)
	})
}

func TestDeleteAccount(t *testing.T) {
	userMock := &UserServiceMock{}
	serv, token := newTestServer(userMock, &TrackersServiceMock{}, &HabitsServiceMock{}, &GoalsServiceMock{})
	body, _ := sonic.Marshal(api.DeleteAccountRequest{Password: password})
	t.Run("deleted", func(t *testing.T) {
		rr := httptest.NewRecorder()
		serv.Handler().ServeHTTP(rr, authedRequest(http.MethodDelete, "/api/v1/account", body, token))
		assert.Equal(t, http.StatusNoContent, rr.Result().StatusCode)
	})
}
