package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/quotidianapp/quotidian/internal/dayutil"
	"github.com/quotidianapp/quotidian/internal/errs"
	"github.com/quotidianapp/quotidian/internal/model"
	"github.com/quotidianapp/quotidian/internal/service"
)

const testToken = "tok"

// respEnvelope mirrors envelope with raw data for per-test decoding.
type respEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fakeAuth struct{ id uuid.UUID }

func (f *fakeAuth) Register(context.Context, string, string) (string, error) {
	return f.id.String(), nil
}
func (f *fakeAuth) Login(context.Context, string, string) (service.Tokens, model.User, error) {
	return service.Tokens{AccessToken: testToken, ExpiresAt: time.Now().Add(time.Hour)}, model.User{ID: f.id}, nil
}
func (f *fakeAuth) VerifyToken(token string) (uuid.UUID, error) {
	if token != testToken {
		return uuid.Nil, errs.ErrUnauthorized
	}
	return f.id, nil
}

type fakeJournal struct {
	submitted string
	submitErr error
}

func (f *fakeJournal) TodayQuestion(_ context.Context, _ string, now time.Time) (*model.Question, error) {
	return &model.Question{Day: dayutil.FromTime(now), Text: "What made you smile?"}, nil
}
func (f *fakeJournal) SubmitToday(_ context.Context, _ uuid.UUID, _ string, text string, _ time.Time) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = text
	return nil
}

type fakeJokers struct {
	balance int
	granted int
}

func (f *fakeJokers) GrantMonthly(context.Context, uuid.UUID, time.Time) error {
	f.granted++
	return nil
}
func (f *fakeJokers) Balance(context.Context, uuid.UUID) (int, error) { return f.balance, nil }

type fakeMissed struct {
	prospect  service.MissedDayProspect
	submitErr error
	lastDay   dayutil.DayKey
}

func (f *fakeMissed) Open(_ context.Context, _ uuid.UUID, day dayutil.DayKey, _ string, _ time.Time) (service.MissedDayProspect, error) {
	f.lastDay = day
	return f.prospect, nil
}
func (f *fakeMissed) Submit(_ context.Context, _ uuid.UUID, day dayutil.DayKey, _, _ string, _ time.Time) error {
	f.lastDay = day
	return f.submitErr
}

type fakeStreaks struct{ status service.StreakStatus }

func (f *fakeStreaks) Current(context.Context, uuid.UUID, time.Time) (service.StreakStatus, error) {
	return f.status, nil
}

type fakeCalview struct{ cells []service.DayCell }

func (f *fakeCalview) Month(context.Context, uuid.UUID, dayutil.MonthKey, string, bool, time.Time) ([]service.DayCell, error) {
	return f.cells, nil
}

type fakeRecap struct{ recap *service.Recap }

func (f *fakeRecap) Weekly(context.Context, uuid.UUID, time.Time) (*service.Recap, error) {
	return f.recap, nil
}

type testEnv struct {
	router  *gin.Engine
	auth    *fakeAuth
	journal *fakeJournal
	jokers  *fakeJokers
	missed  *fakeMissed
	streaks *fakeStreaks
	calview *fakeCalview
	recap   *fakeRecap
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		auth:    &fakeAuth{id: uuid.Must(uuid.NewV4())},
		journal: &fakeJournal{},
		jokers:  &fakeJokers{balance: 2},
		missed:  &fakeMissed{},
		streaks: &fakeStreaks{},
		calview: &fakeCalview{},
		recap:   &fakeRecap{},
	}
	srv := New(env.auth, env.journal, env.jokers, env.missed, env.streaks, env.calview, env.recap)
	env.router = srv.Router(zap.NewNop())
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, bearer bool) (*httptest.ResponseRecorder, respEnvelope) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env respEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, rec.Body.String())
	}
	return rec, env
}

func TestServer_E2E_BasicFlow(t *testing.T) {
	e := newTestEnv(t)

	rec, env := e.do(t, http.MethodPost, "/api/auth/register", map[string]string{"username": "ana", "password": "pw123456"}, false)
	if rec.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("register: status=%d env=%+v", rec.Code, env)
	}

	rec, env = e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "ana", "password": "pw123456"}, false)
	if rec.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("login: status=%d env=%+v", rec.Code, env)
	}

	rec, env = e.do(t, http.MethodGet, "/api/questions/today", nil, true)
	if rec.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("today question: status=%d env=%+v", rec.Code, env)
	}

	rec, env = e.do(t, http.MethodPost, "/api/answers/today", map[string]string{"text": "sunshine"}, true)
	if rec.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("submit today: status=%d env=%+v", rec.Code, env)
	}
	if e.journal.submitted != "sunshine" {
		t.Fatalf("submitted text not delivered: %q", e.journal.submitted)
	}

	rec, env = e.do(t, http.MethodGet, "/api/jokers", nil, true)
	if rec.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("jokers: status=%d env=%+v", rec.Code, env)
	}
}

func Test_AuthRequired_MissingToken(t *testing.T) {
	e := newTestEnv(t)
	rec, env := e.do(t, http.MethodGet, "/api/questions/today", nil, false)
	if rec.Code != http.StatusUnauthorized || env.Code != 40101 {
		t.Fatalf("want 401/40101, got status=%d env=%+v", rec.Code, env)
	}
}

func Test_AuthRequired_BadToken(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/jokers", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_Profile_AppliesGrantAndReportsMilestone(t *testing.T) {
	e := newTestEnv(t)
	e.jokers.balance = 3
	e.streaks.status = service.StreakStatus{Visual: 7, Real: 7, Milestone: 7}

	rec, env := e.do(t, http.MethodGet, "/api/profile", nil, true)
	if rec.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("profile: status=%d env=%+v", rec.Code, env)
	}
	if e.jokers.granted != 1 {
		t.Fatalf("grant not applied, calls=%d", e.jokers.granted)
	}
	var data struct {
		Balance   int `json:"balance"`
		Visual    int `json:"visual_streak"`
		Real      int `json:"real_streak"`
		Milestone int `json:"milestone"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Balance != 3 || data.Visual != 7 || data.Milestone != 7 {
		t.Fatalf("bad profile payload: %+v", data)
	}
}

func Test_SubmitMissed_WindowClosed(t *testing.T) {
	e := newTestEnv(t)
	e.missed.submitErr = errs.ErrWindowClosed

	rec, env := e.do(t, http.MethodPost, "/api/answers/missed", map[string]string{"day": "2025-03-01", "text": "late"}, true)
	if rec.Code != http.StatusConflict || env.Code != 40901 {
		t.Fatalf("want 409/40901, got status=%d env=%+v", rec.Code, env)
	}
}

func Test_SubmitMissed_InsufficientBalance(t *testing.T) {
	e := newTestEnv(t)
	e.missed.submitErr = errs.ErrInsufficientBalance

	rec, env := e.do(t, http.MethodPost, "/api/answers/missed", map[string]string{"day": "2025-03-01", "text": "late"}, true)
	if rec.Code != http.StatusConflict || env.Code != 40902 {
		t.Fatalf("want 409/40902, got status=%d env=%+v", rec.Code, env)
	}
}

func Test_SubmitMissed_BadDay(t *testing.T) {
	e := newTestEnv(t)
	rec, env := e.do(t, http.MethodPost, "/api/answers/missed", map[string]string{"day": "03/01/2025", "text": "x"}, true)
	if rec.Code != http.StatusBadRequest || env.Code != 40003 {
		t.Fatalf("want 400/40003, got status=%d env=%+v", rec.Code, env)
	}
}

func Test_OpenMissed_PassesDayThrough(t *testing.T) {
	e := newTestEnv(t)
	e.missed.prospect = service.MissedDayProspect{
		State:    service.MissedDayEligible,
		Question: &model.Question{Text: "What did you learn?"},
		Balance:  1,
	}

	rec, env := e.do(t, http.MethodGet, "/api/answers/missed/2025-03-08", nil, true)
	if rec.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("open missed: status=%d env=%+v", rec.Code, env)
	}
	if e.missed.lastDay != "2025-03-08" {
		t.Fatalf("day not parsed through: %s", e.missed.lastDay)
	}
	var data struct {
		State    string `json:"state"`
		Question string `json:"question"`
		Balance  int    `json:"balance"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.State != "eligible" || data.Question == "" || data.Balance != 1 {
		t.Fatalf("bad prospect payload: %+v", data)
	}
}

func Test_Calendar_BadMonth(t *testing.T) {
	e := newTestEnv(t)
	rec, env := e.do(t, http.MethodGet, "/api/calendar/March-2025", nil, true)
	if rec.Code != http.StatusBadRequest || env.Code != 40004 {
		t.Fatalf("want 400/40004, got status=%d env=%+v", rec.Code, env)
	}
}

func Test_Calendar_RendersCells(t *testing.T) {
	e := newTestEnv(t)
	e.calview.cells = []service.DayCell{
		{Day: "2025-03-01", State: model.CellAnswered, Entry: &model.CalendarEntry{QuestionText: "q", AnswerText: "a"}},
		{Day: "2025-03-02", State: model.CellJoker, Entry: &model.CalendarEntry{QuestionText: "q", AnswerText: "b", IsJoker: true}},
		{Day: "2025-03-03", State: model.CellFuture},
	}

	rec, env := e.do(t, http.MethodGet, "/api/calendar/2025-03", nil, true)
	if rec.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("calendar: status=%d env=%+v", rec.Code, env)
	}
	var data struct {
		Month string `json:"month"`
		Days  []struct {
			Day     string `json:"day"`
			State   string `json:"state"`
			Answer  string `json:"answer"`
			IsJoker bool   `json:"is_joker"`
		} `json:"days"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Month != "2025-03" || len(data.Days) != 3 {
		t.Fatalf("bad calendar payload: %+v", data)
	}
	if data.Days[1].State != "joker" || !data.Days[1].IsJoker {
		t.Fatalf("joker cell lost its marker: %+v", data.Days[1])
	}
	if data.Days[2].Answer != "" {
		t.Fatalf("future cell should carry no answer: %+v", data.Days[2])
	}
}

func Test_Recap_NotDue(t *testing.T) {
	e := newTestEnv(t)
	rec, env := e.do(t, http.MethodGet, "/api/recap", nil, true)
	if rec.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("recap: status=%d env=%+v", rec.Code, env)
	}
	if len(env.Data) != 0 {
		t.Fatalf("expected empty data, got %s", env.Data)
	}
}

func Test_Recap_Due(t *testing.T) {
	e := newTestEnv(t)
	e.recap.recap = &service.Recap{Start: "2025-03-03", End: "2025-03-09", Answered: 5, Total: 7}

	rec, env := e.do(t, http.MethodGet, "/api/recap", nil, true)
	if rec.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("recap: status=%d env=%+v", rec.Code, env)
	}
	var data struct {
		Answered int `json:"answered"`
		Total    int `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Answered != 5 || data.Total != 7 {
		t.Fatalf("bad recap payload: %+v", data)
	}
}

func Test_SubmitToday_ValidationMapped(t *testing.T) {
	e := newTestEnv(t)
	e.journal.submitErr = fmt.Errorf("%w: empty answer text", errs.ErrValidation)

	rec, env := e.do(t, http.MethodPost, "/api/answers/today", map[string]string{"text": "   "}, true)
	if rec.Code != http.StatusBadRequest || env.Code != 40000 {
		t.Fatalf("want 400/40000, got status=%d env=%+v", rec.Code, env)
	}
}
