package loan

import "errors"

var (
	ErrNotCollateralOwner      = errors.New("borrower does not own the collateral")
	ErrCollateralAlreadyLocked = errors.New("collateral already locked by an active loan")
	ErrInvalidLoanTerms        = errors.New("invalid loan terms")
	ErrLoanNotFound            = errors.New("loan not found")
	ErrNotBorrower             = errors.New("caller is not the borrower")
	ErrLoanNotActive           = errors.New("loan is not active")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrLoanNotExpired          = errors.New("loan has not expired")
)
