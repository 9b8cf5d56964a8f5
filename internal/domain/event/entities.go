package event

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("loan event not found")

type Kind string

const (
	KindCreated    Kind = "created"
	KindRepaid     Kind = "repaid"
	KindSettled    Kind = "settled"
	KindLiquidated Kind = "liquidated"
)

// Table: loan_events. Rows are never updated.
type LoanEvent struct {
	ID         uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	EventID    string          `gorm:"column:event_id;type:char(32);not null;uniqueIndex:ux_loan_events_event_id"`
	LoanID     uint64          `gorm:"column:loan_id;not null;index:idx_loan_events_loan"`
	Kind       Kind            `gorm:"column:kind;size:16;not null"`
	Actor      string          `gorm:"column:actor;size:32;not null"`
	Amount     decimal.Decimal `gorm:"column:amount;type:varchar(40);not null"`
	OccurredAt time.Time       `gorm:"column:occurred_at;not null"`
}

func (LoanEvent) TableName() string { return "loan_events" }
