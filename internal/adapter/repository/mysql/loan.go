package mysql

import (
	"context"
	"time"

	"collateral-lending/internal/domain/kv"
	loanDomain "collateral-lending/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

// NextLoanID reads the counter (missing means 0) under a row lock and stores
// the incremented value. Concurrent creates queue on the counter row until the
// holder commits.
func (r *LoanRepository) NextLoanID(ctx context.Context) (uint64, error) {
	store := &KVRepository{db: r.db}
	cur, err := kv.GetUint64(ctx, lockingKV{store}, loanDomain.NextIDKey, 0)
	if err != nil {
		return 0, err
	}
	next := cur + 1
	if err := kv.SetUint64(ctx, store, loanDomain.NextIDKey, next); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := forUpdate(r.db.WithContext(ctx)).Where("id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) IsCollateralLocked(ctx context.Context, collateralID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&loanDomain.CollateralLock{}).
		Where("collateral_id = ?", collateralID).
		Count(&n).Error
	return n > 0, err
}

func (r *LoanRepository) LockCollateral(ctx context.Context, collateralID, loanID uint64) error {
	return r.db.WithContext(ctx).Create(&loanDomain.CollateralLock{CollateralID: collateralID, LoanID: loanID}).Error
}

func (r *LoanRepository) ReleaseCollateral(ctx context.Context, collateralID uint64) error {
	return r.db.WithContext(ctx).
		Where("collateral_id = ?", collateralID).
		Delete(&loanDomain.CollateralLock{}).Error
}

func (r *LoanRepository) AddToBorrowerIndex(ctx context.Context, borrower string, loanID uint64) error {
	return r.db.WithContext(ctx).Create(&loanDomain.BorrowerLoan{Borrower: borrower, LoanID: loanID}).Error
}

func (r *LoanRepository) LoansOf(ctx context.Context, borrower string) ([]uint64, error) {
	ids := []uint64{}
	err := r.db.WithContext(ctx).Model(&loanDomain.BorrowerLoan{}).
		Where("borrower = ?", borrower).
		Order("seq ASC").
		Pluck("loan_id", &ids).Error
	return ids, err
}

func (r *LoanRepository) ListExpiredActive(ctx context.Context, at time.Time, limit int) ([]uint64, error) {
	ids := []uint64{}
	q := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("status = ? AND expires_at <= ?", loanDomain.StatusActive, at.UTC()).
		Order("expires_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Pluck("id", &ids).Error
	return ids, err
}

// forUpdate adds a row lock where the dialect has one; sqlite serializes writers instead.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
