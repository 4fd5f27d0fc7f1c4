package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/quotidianapp/quotidian/internal/dayutil"
	"github.com/quotidianapp/quotidian/internal/errs"
	"github.com/quotidianapp/quotidian/internal/model"
	"github.com/quotidianapp/quotidian/internal/repository"
)

type fakeAnswerRepo struct {
	byDay     map[dayutil.DayKey]model.Answer
	upserts   []model.Answer
	upsertErr error
	listErr   error
}

var _ repository.AnswerRepository = (*fakeAnswerRepo)(nil)

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{byDay: make(map[dayutil.DayKey]model.Answer)}
}

func (f *fakeAnswerRepo) Get(_ context.Context, userID uuid.UUID, day dayutil.DayKey) (*model.Answer, error) {
	a, ok := f.byDay[day]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &a, nil
}

func (f *fakeAnswerRepo) Upsert(_ context.Context, userID uuid.UUID, day dayutil.DayKey, text string, isJoker bool) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	a := model.Answer{UserID: userID, Day: day, Text: text, IsJoker: isJoker}
	f.byDay[day] = a
	f.upserts = append(f.upserts, a)
	return nil
}

func (f *fakeAnswerRepo) ListInRange(_ context.Context, _ uuid.UUID, start, end dayutil.DayKey) ([]model.Answer, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Answer
	for d := start; !d.After(end); d = d.AddDays(1) {
		if a, ok := f.byDay[d]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeQuestionRepo struct {
	byDay  map[dayutil.DayKey]model.Question
	getErr error
}

var _ repository.QuestionRepository = (*fakeQuestionRepo)(nil)

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{byDay: make(map[dayutil.DayKey]model.Question)}
}

func (f *fakeQuestionRepo) Get(_ context.Context, day dayutil.DayKey, _ string) (*model.Question, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	q, ok := f.byDay[day]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &q, nil
}

func (f *fakeQuestionRepo) ListInRange(_ context.Context, start, end dayutil.DayKey, _ string) ([]model.Question, error) {
	var out []model.Question
	for d := start; !d.After(end); d = d.AddDays(1) {
		if q, ok := f.byDay[d]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

// fakeJokerRepo mirrors the ledger semantics: per-day spend rows,
// decrement-if-positive, once-per-month grant.
type fakeJokerRepo struct {
	balance    int
	grantMonth dayutil.MonthKey
	spends     map[dayutil.DayKey]bool
	consumeErr error
	grants     int
}

var _ repository.JokerRepository = (*fakeJokerRepo)(nil)

func newFakeJokerRepo(balance int) *fakeJokerRepo {
	return &fakeJokerRepo{balance: balance, spends: make(map[dayutil.DayKey]bool)}
}

func (f *fakeJokerRepo) GetBalance(_ context.Context, userID uuid.UUID) (*model.JokerBalance, error) {
	return &model.JokerBalance{UserID: userID, Balance: f.balance, LastGrantMonth: f.grantMonth}, nil
}

func (f *fakeJokerRepo) GrantMonthly(_ context.Context, _ uuid.UUID, month dayutil.MonthKey, amount int) error {
	if f.grantMonth != month {
		f.balance += amount
		f.grantMonth = month
		f.grants++
	}
	return nil
}

func (f *fakeJokerRepo) ConsumeForDay(_ context.Context, _ uuid.UUID, day dayutil.DayKey) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	if f.spends[day] {
		return nil // already charged for this day
	}
	if f.balance == 0 {
		return errs.ErrInsufficientBalance
	}
	f.spends[day] = true
	f.balance--
	return nil
}

type fakeStreakRepo struct {
	pair model.StreakPair
	err  error
}

var _ repository.StreakRepository = (*fakeStreakRepo)(nil)

func (f *fakeStreakRepo) Get(_ context.Context, _ uuid.UUID, _ dayutil.DayKey) (model.StreakPair, error) {
	return f.pair, f.err
}

type fakeUserRepo struct {
	users map[string]*model.User
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if _, ok := f.users[u.Username]; ok {
		return errs.ErrAlreadyExists
	}
	cp := *u
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	f.users[u.Username] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *u
	return &cp, nil
}
