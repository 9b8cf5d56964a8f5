package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusRepaid     Status = "repaid"
	StatusLiquidated Status = "liquidated"
)

func (s Status) Terminal() bool { return s == StatusRepaid || s == StatusLiquidated }

const SecondsPerDay = 86400

// NextIDKey holds the last allocated loan id in the kv store.
const NextIDKey = "ledger:next_loan_id"

// Table: loans. ID is allocated by the ledger, not by the database.
type Loan struct {
	ID              uint64          `gorm:"column:id;primaryKey;autoIncrement:false" json:"loan_id"`
	Borrower        string          `gorm:"column:borrower;size:32;not null;index:idx_loans_borrower" json:"borrower"`
	CollateralID    uint64          `gorm:"column:collateral_id;not null;index:idx_loans_collateral" json:"collateral_id"`
	Principal       decimal.Decimal `gorm:"column:principal;type:varchar(40);not null" json:"principal"`
	InterestRateBps uint32          `gorm:"column:interest_rate_bps;not null" json:"interest_rate_bps"`
	DurationDays    uint32          `gorm:"column:duration_days;not null" json:"duration_days"`
	Status          Status          `gorm:"column:status;size:16;not null;index:idx_loans_status_expiry,priority:1" json:"status"`
	RepaidAmount    decimal.Decimal `gorm:"column:repaid_amount;type:varchar(40);not null" json:"repaid_amount"`
	CreatedAt       time.Time       `gorm:"column:created_at;not null" json:"created_at"`
	ExpiresAt       time.Time       `gorm:"column:expires_at;not null;index:idx_loans_status_expiry,priority:2" json:"expires_at"`
	ClosedAt        *time.Time      `gorm:"column:closed_at" json:"closed_at,omitempty"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Expired reports whether the term has fully elapsed at t.
func (l *Loan) Expired(t time.Time) bool {
	return t.Unix() >= l.CreatedAt.Unix()+int64(l.DurationDays)*SecondsPerDay
}

// Outstanding is the principal still unpaid.
func (l *Loan) Outstanding() decimal.Decimal {
	return l.Principal.Sub(l.RepaidAmount)
}

// Table: collateral_locks. A row exists only while an active loan holds the token.
type CollateralLock struct {
	CollateralID uint64    `gorm:"column:collateral_id;primaryKey;autoIncrement:false"`
	LoanID       uint64    `gorm:"column:loan_id;not null;uniqueIndex:ux_collateral_locks_loan"`
	LockedAt     time.Time `gorm:"column:locked_at;autoCreateTime"`
}

func (CollateralLock) TableName() string { return "collateral_locks" }

// Table: borrower_loans. Append-only; Seq gives insertion order.
type BorrowerLoan struct {
	Seq      uint64 `gorm:"column:seq;primaryKey;autoIncrement"`
	Borrower string `gorm:"column:borrower;size:32;not null;index:idx_borrower_loans_borrower"`
	LoanID   uint64 `gorm:"column:loan_id;not null;uniqueIndex:ux_borrower_loans_loan"`
}

func (BorrowerLoan) TableName() string { return "borrower_loans" }
