package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateLoanInput struct {
	Borrower        string
	CollateralID    uint64
	Principal       decimal.Decimal
	InterestRateBps uint32
	DurationDays    uint32
	Caller          string
}

type RepayInput struct {
	LoanID uint64
	Amount decimal.Decimal
	Caller string
}

type LiquidateInput struct {
	LoanID uint64
	Caller string
}

type LoanDTO struct {
	LoanID          uint64          `json:"loan_id"`
	Borrower        string          `json:"borrower"`
	CollateralID    uint64          `json:"collateral_id"`
	Principal       decimal.Decimal `json:"principal"`
	InterestRateBps uint32          `json:"interest_rate_bps"`
	DurationDays    uint32          `json:"duration_days"`
	Status          string          `json:"status"`
	RepaidAmount    decimal.Decimal `json:"repaid_amount"`
	CreatedAt       time.Time       `json:"created_at"`
	ExpiresAt       time.Time       `json:"expires_at"`
	ClosedAt        *time.Time      `json:"closed_at,omitempty"`
	// informational, computed at the time of the call
	AccruedInterest decimal.Decimal `json:"accrued_interest"`
	Outstanding     decimal.Decimal `json:"outstanding_principal"`
}

type InterestDTO struct {
	LoanID      uint64          `json:"loan_id"`
	At          time.Time       `json:"at"`
	ElapsedDays int64           `json:"elapsed_days"`
	Interest    decimal.Decimal `json:"interest"`
}

type EventDTO struct {
	EventID    string          `json:"event_id"`
	LoanID     uint64          `json:"loan_id"`
	Kind       string          `json:"kind"`
	Actor      string          `json:"actor"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}
