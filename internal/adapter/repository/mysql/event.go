package mysql

import (
	"context"

	eventDomain "collateral-lending/internal/domain/event"

	"gorm.io/gorm"
)

type EventRepository struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) *EventRepository { return &EventRepository{db: db} }

func (r *EventRepository) Create(ctx context.Context, e *eventDomain.LoanEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EventRepository) ListByLoanID(ctx context.Context, loanID uint64) ([]eventDomain.LoanEvent, error) {
	out := []eventDomain.LoanEvent{}
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *EventRepository) GetByEventID(ctx context.Context, eventID string) (*eventDomain.LoanEvent, error) {
	var out eventDomain.LoanEvent
	res := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		First(&out)
	return &out, res.Error
}
