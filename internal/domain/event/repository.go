package event

import "context"

type Repository interface {
	Create(ctx context.Context, e *LoanEvent) error

	// oldest first
	ListByLoanID(ctx context.Context, loanID uint64) ([]LoanEvent, error)

	GetByEventID(ctx context.Context, eventID string) (*LoanEvent, error)
}
