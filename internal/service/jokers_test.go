package service

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
)

func TestJokerService_GrantMonthly_IdempotentWithinMonth(t *testing.T) {
	ctx := context.Background()
	user := uuid.Must(uuid.NewV4())
	repo := newFakeJokerRepo(0)
	s := NewJokerService(repo, 2)

	march := time.Date(2025, 3, 5, 10, 0, 0, 0, time.Local)
	if err := s.GrantMonthly(ctx, user, march); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := s.GrantMonthly(ctx, user, march.AddDate(0, 0, 10)); err != nil {
		t.Fatalf("grant(2): %v", err)
	}
	if repo.balance != 2 || repo.grants != 1 {
		t.Fatalf("balance=%d grants=%d, want one grant of 2 for March", repo.balance, repo.grants)
	}

	// New month: grant applies again.
	april := time.Date(2025, 4, 1, 0, 30, 0, 0, time.Local)
	if err := s.GrantMonthly(ctx, user, april); err != nil {
		t.Fatalf("grant(april): %v", err)
	}
	if repo.balance != 4 || repo.grants != 2 {
		t.Fatalf("balance=%d grants=%d after April", repo.balance, repo.grants)
	}
}

func TestJokerService_DefaultGrant(t *testing.T) {
	s := NewJokerService(newFakeJokerRepo(0), 0)
	if s.monthlyGrant != DefaultMonthlyGrant {
		t.Fatalf("monthlyGrant=%d, want default %d", s.monthlyGrant, DefaultMonthlyGrant)
	}
}

func TestJokerService_Balance(t *testing.T) {
	s := NewJokerService(newFakeJokerRepo(3), 2)
	b, err := s.Balance(context.Background(), uuid.Must(uuid.NewV4()))
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if b != 3 {
		t.Fatalf("balance=%d, want 3", b)
	}

	if _, err := s.Balance(context.Background(), uuid.Nil); err == nil {
		t.Fatalf("want validation error on empty userID")
	}
}
