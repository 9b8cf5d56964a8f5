package uow

import (
	"collateral-lending/internal/domain/asset"
	"collateral-lending/internal/domain/event"
	"collateral-lending/internal/domain/kv"
	"collateral-lending/internal/domain/loan"
	"context"
)

// Repos are bound to one transaction.
type Repos struct {
	Loans  loan.Repository
	Assets asset.Registry
	Events event.Repository
	KV     kv.Store
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
}
