package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studytrack/studytrack-backend/internal/models"
	"github.com/studytrack/studytrack-backend/internal/services"
	jwtutil "github.com/studytrack/studytrack-backend/pkg/jwt"
	"github.com/studytrack/studytrack-backend/pkg/logger"
	"github.com/studytrack/studytrack-backend/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	logger.InitLogger()
	os.Exit(m.Run())
}

type fixedClock struct {
	today time.Time
}

func (c fixedClock) Today() time.Time {
	return c.today
}

type memGoalStore struct {
	goals map[primitive.ObjectID]models.Goal
}

func newMemGoalStore() *memGoalStore {
	return &memGoalStore{goals: make(map[primitive.ObjectID]models.Goal)}
}

func (s *memGoalStore) GetGoalByID(_ context.Context, id primitive.ObjectID) (*models.Goal, error) {
	g, ok := s.goals[id]
	if !ok {
		return nil, errors.New("goal not found")
	}
	copied := g
	return &copied, nil
}

func (s *memGoalStore) GetGoalsByUser(_ context.Context, userID primitive.ObjectID) ([]models.Goal, error) {
	var out []models.Goal
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *memGoalStore) UpdateGoalState(_ context.Context, goal *models.Goal) error {
	s.goals[goal.ID] = *goal
	return nil
}

func (s *memGoalStore) CreateDefaultGoals(_ context.Context, userID primitive.ObjectID) error {
	return nil
}

// 2024-01-01 is a Monday.
var handlerMonday = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type goalFixture struct {
	store  *memGoalStore
	router *mux.Router
	userID primitive.ObjectID
	goalID primitive.ObjectID
}

func newGoalFixture(t *testing.T) *goalFixture {
	t.Helper()

	store := newMemGoalStore()
	userID := primitive.NewObjectID()
	goalID := primitive.NewObjectID()
	store.goals[goalID] = models.Goal{
		ID:          goalID,
		UserID:      userID,
		Category:    models.CategoryDSA,
		DailyTarget: 3,
	}

	svc := services.NewGoalService(store).WithClock(fixedClock{today: handlerMonday})
	handler := NewGoalHandler(svc, nil)

	router := mux.NewRouter()
	router.HandleFunc("/goals", handler.GetGoalsHandler).Methods(http.MethodGet)
	router.HandleFunc("/goals/{id}", handler.UpdateGoalHandler).Methods(http.MethodPatch)
	router.HandleFunc("/goals/{id}/add_progress", handler.AddProgressHandler).Methods(http.MethodPost)
	router.HandleFunc("/goals/{id}/subtract_progress", handler.SubtractProgressHandler).Methods(http.MethodPost)
	router.HandleFunc("/goals/{id}/mark_day_completed", handler.MarkDayCompletedHandler).Methods(http.MethodPost)
	router.HandleFunc("/goals/{id}/remove_day_completed", handler.RemoveDayCompletedHandler).Methods(http.MethodPost)

	return &goalFixture{store: store, router: router, userID: userID, goalID: goalID}
}

func (f *goalFixture) do(t *testing.T, method, path, body string, asUser primitive.ObjectID) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	claims := &jwtutil.Claims{UserID: asUser.Hex(), Email: "user@example.com", Role: "user"}
	req = req.WithContext(middleware.SetUserInContext(req.Context(), claims))

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAddProgressHandler(t *testing.T) {
	f := newGoalFixture(t)

	rec := f.do(t, http.MethodPost, "/goals/"+f.goalID.Hex()+"/add_progress", `{"amount": 3}`, f.userID)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(3), body["daily_progress"])
	assert.Equal(t, float64(3), body["daily_target"])
	assert.Equal(t, true, body["is_daily_goal_completed"])
	assert.Equal(t, true, body["daily_completion_triggered"])

	stored := f.store.goals[f.goalID]
	assert.Equal(t, []int{0}, stored.CurrentWeekDaysCompleted)
}

func TestAddProgressHandlerRejectsZeroAmount(t *testing.T) {
	f := newGoalFixture(t)

	rec := f.do(t, http.MethodPost, "/goals/"+f.goalID.Hex()+"/add_progress", `{"amount": 0}`, f.userID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddProgressHandlerRejectsOversizedAmount(t *testing.T) {
	f := newGoalFixture(t)

	rec := f.do(t, http.MethodPost, "/goals/"+f.goalID.Hex()+"/add_progress", `{"amount": 21}`, f.userID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The cap itself is still accepted.
	rec = f.do(t, http.MethodPost, "/goals/"+f.goalID.Hex()+"/add_progress", `{"amount": 20}`, f.userID)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAddProgressHandlerRejectsMalformedBody(t *testing.T) {
	f := newGoalFixture(t)

	rec := f.do(t, http.MethodPost, "/goals/"+f.goalID.Hex()+"/add_progress", `{"amount": `, f.userID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddProgressHandlerForeignGoalIsForbidden(t *testing.T) {
	f := newGoalFixture(t)

	rec := f.do(t, http.MethodPost, "/goals/"+f.goalID.Hex()+"/add_progress", `{"amount": 1}`, primitive.NewObjectID())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAddProgressHandlerUnknownGoal(t *testing.T) {
	f := newGoalFixture(t)

	rec := f.do(t, http.MethodPost, "/goals/"+primitive.NewObjectID().Hex()+"/add_progress", `{"amount": 1}`, f.userID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubtractProgressHandler(t *testing.T) {
	f := newGoalFixture(t)

	rec := f.do(t, http.MethodPost, "/goals/"+f.goalID.Hex()+"/add_progress", `{"amount": 3}`, f.userID)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/goals/"+f.goalID.Hex()+"/subtract_progress", `{"amount": 1}`, f.userID)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["daily_progress"])
	assert.Equal(t, false, body["is_daily_goal_completed"])
	assert.Equal(t, float64(0), body["days_completed_this_week"])
	assert.Equal(t, []interface{}{}, body["current_week_days_completed"])
}

func TestMarkDayCompletedHandler(t *testing.T) {
	f := newGoalFixture(t)

	rec := f.do(t, http.MethodPost, "/goals/"+f.goalID.Hex()+"/mark_day_completed", "", f.userID)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(1), body["days_completed_this_week"])
	assert.Equal(t, "2024-01-01", body["last_completed_date"])
	assert.Equal(t, "2024-01-01", body["current_week_start"])
	assert.Equal(t, false, body["is_week_completed"])
}

func TestRemoveDayCompletedHandlerAbsentDay(t *testing.T) {
	f := newGoalFixture(t)

	rec := f.do(t, http.MethodPost, "/goals/"+f.goalID.Hex()+"/remove_day_completed", "", f.userID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveDayCompletedHandler(t *testing.T) {
	f := newGoalFixture(t)

	rec := f.do(t, http.MethodPost, "/goals/"+f.goalID.Hex()+"/mark_day_completed", "", f.userID)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/goals/"+f.goalID.Hex()+"/remove_day_completed", "", f.userID)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(0), body["days_completed_this_week"])
}

func TestGetGoalsHandler(t *testing.T) {
	f := newGoalFixture(t)

	rec := f.do(t, http.MethodGet, "/goals", "", f.userID)
	require.Equal(t, http.StatusOK, rec.Code)

	var goals []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &goals))
	require.Len(t, goals, 1)
	assert.Equal(t, models.CategoryDSA, goals[0]["category"])
	assert.Equal(t, float64(3), goals[0]["daily_target"])
	assert.Equal(t, []interface{}{}, goals[0]["current_week_days_completed"])
}

func TestUpdateGoalHandler(t *testing.T) {
	f := newGoalFixture(t)

	rec := f.do(t, http.MethodPatch, "/goals/"+f.goalID.Hex(), `{"daily_target": 5}`, f.userID)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.GoalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.DailyTarget)
}

func TestUpdateGoalHandlerRejectsZeroTarget(t *testing.T) {
	f := newGoalFixture(t)

	rec := f.do(t, http.MethodPatch, "/goals/"+f.goalID.Hex(), `{"daily_target": 0}`, f.userID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlersRequireAuth(t *testing.T) {
	f := newGoalFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/goals", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
