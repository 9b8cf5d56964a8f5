package eventmock

import (
	domain "collateral-lending/internal/domain/event"
	"context"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateFn       func(ctx context.Context, e *domain.LoanEvent) error
	ListByLoanIDFn func(ctx context.Context, loanID uint64) ([]domain.LoanEvent, error)
	GetByEventIDFn func(ctx context.Context, eventID string) (*domain.LoanEvent, error)
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) Create(ctx context.Context, e *domain.LoanEvent) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, e)
	}
	return nil
}

func (m *Repo) ListByLoanID(ctx context.Context, loanID uint64) ([]domain.LoanEvent, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByEventID(ctx context.Context, eventID string) (*domain.LoanEvent, error) {
	if m.GetByEventIDFn != nil {
		return m.GetByEventIDFn(ctx, eventID)
	}
	return nil, context.Canceled
}
