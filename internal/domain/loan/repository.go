package loan

import (
	"context"
	"time"
)

// Repository is the loan ledger: records, the collateral lock index,
// the per-borrower index and the id allocator.
type Repository interface {
	NextLoanID(ctx context.Context) (uint64, error)
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID uint64) (*Loan, error)
	// locks the row until the surrounding transaction ends
	GetByLoanIDForUpdate(ctx context.Context, loanID uint64) (*Loan, error)

	IsCollateralLocked(ctx context.Context, collateralID uint64) (bool, error)
	LockCollateral(ctx context.Context, collateralID, loanID uint64) error
	ReleaseCollateral(ctx context.Context, collateralID uint64) error

	AddToBorrowerIndex(ctx context.Context, borrower string, loanID uint64) error
	LoansOf(ctx context.Context, borrower string) ([]uint64, error)

	ListExpiredActive(ctx context.Context, at time.Time, limit int) ([]uint64, error)
}
