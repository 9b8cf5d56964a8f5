package loanmock

import (
	domain "collateral-lending/internal/domain/loan"
	"context"
	"time"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset getters return context.Canceled; unset writers are no-ops.
type Repo struct {
	NextLoanIDFn           func(ctx context.Context) (uint64, error)
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID uint64) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID uint64) (*domain.Loan, error)
	IsCollateralLockedFn   func(ctx context.Context, collateralID uint64) (bool, error)
	LockCollateralFn       func(ctx context.Context, collateralID, loanID uint64) error
	ReleaseCollateralFn    func(ctx context.Context, collateralID uint64) error
	AddToBorrowerIndexFn   func(ctx context.Context, borrower string, loanID uint64) error
	LoansOfFn              func(ctx context.Context, borrower string) ([]uint64, error)
	ListExpiredActiveFn    func(ctx context.Context, at time.Time, limit int) ([]uint64, error)
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) NextLoanID(ctx context.Context) (uint64, error) {
	if m.NextLoanIDFn != nil {
		return m.NextLoanIDFn(ctx)
	}
	return 0, context.Canceled
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID uint64) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled // or errors.New("not implemented")
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID uint64) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) IsCollateralLocked(ctx context.Context, collateralID uint64) (bool, error) {
	if m.IsCollateralLockedFn != nil {
		return m.IsCollateralLockedFn(ctx, collateralID)
	}
	return false, context.Canceled
}

func (m *Repo) LockCollateral(ctx context.Context, collateralID, loanID uint64) error {
	if m.LockCollateralFn != nil {
		return m.LockCollateralFn(ctx, collateralID, loanID)
	}
	return nil
}

func (m *Repo) ReleaseCollateral(ctx context.Context, collateralID uint64) error {
	if m.ReleaseCollateralFn != nil {
		return m.ReleaseCollateralFn(ctx, collateralID)
	}
	return nil
}

func (m *Repo) AddToBorrowerIndex(ctx context.Context, borrower string, loanID uint64) error {
	if m.AddToBorrowerIndexFn != nil {
		return m.AddToBorrowerIndexFn(ctx, borrower, loanID)
	}
	return nil
}

func (m *Repo) LoansOf(ctx context.Context, borrower string) ([]uint64, error) {
	if m.LoansOfFn != nil {
		return m.LoansOfFn(ctx, borrower)
	}
	return nil, context.Canceled
}

func (m *Repo) ListExpiredActive(ctx context.Context, at time.Time, limit int) ([]uint64, error) {
	if m.ListExpiredActiveFn != nil {
		return m.ListExpiredActiveFn(ctx, at, limit)
	}
	return nil, context.Canceled
}
