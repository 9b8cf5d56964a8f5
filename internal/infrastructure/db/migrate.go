package db

import (
	"collateral-lending/internal/domain/asset"
	"collateral-lending/internal/domain/event"
	"collateral-lending/internal/domain/kv"
	"collateral-lending/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Migrate creates or updates every table the service owns and seeds the
// rows that allocation locks on.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&kv.Entry{},
		&asset.Asset{},
		&loan.Loan{},
		&loan.CollateralLock{},
		&loan.BorrowerLoan{},
		&event.LoanEvent{},
	); err != nil {
		return err
	}
	// the counter row must exist before the first create so FOR UPDATE has a row to lock
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&kv.Entry{Key: loan.NextIDKey, Value: []byte("0")}).Error
}
