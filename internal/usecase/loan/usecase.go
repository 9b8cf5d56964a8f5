package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainEvent "collateral-lending/internal/domain/event"
	"collateral-lending/internal/domain/gate"
	domainLoan "collateral-lending/internal/domain/loan"
	"collateral-lending/internal/domain/uow"
	"collateral-lending/pkg/id"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errNoUnitOfWork = errors.New("lending: unit of work not configured")

// Usecase is the loan lifecycle engine. Every mutation runs in exactly one
// transaction; a failed check returns before anything is written.
type Usecase struct {
	loanRepo  domainLoan.Repository
	eventRepo domainEvent.Repository
	uow       uow.UnitOfWork
	now       func() time.Time
}

type Option func(*Usecase)

// WithClock overrides the ledger clock (tests, replays).
func WithClock(now func() time.Time) Option {
	return func(u *Usecase) { u.now = now }
}

func NewUsecase(loans domainLoan.Repository, events domainEvent.Repository, tx uow.UnitOfWork, opts ...Option) *Usecase {
	u := &Usecase{loanRepo: loans, eventRepo: events, uow: tx, now: time.Now}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Usecase) ledgerTime() time.Time { return u.now().UTC().Truncate(time.Second) }

func (u *Usecase) CreateLoan(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	if u.uow == nil {
		return nil, errNoUnitOfWork
	}
	logger := log.With().
		Str("op", "create_loan").
		Str("borrower", in.Borrower).
		Uint64("collateral_id", in.CollateralID).
		Logger()

	now := u.ledgerTime()
	var created *domainLoan.Loan

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		// owner, lock, terms, pause, caller: the first failing check decides the error.
		// ownership is read inside the tx, never from an earlier call
		owner, found, err := r.Assets.OwnerOf(ctx, in.CollateralID)
		if err != nil {
			return fmt.Errorf("read collateral owner: %w", err)
		}
		if !found || owner != in.Borrower {
			return domainLoan.ErrNotCollateralOwner
		}

		locked, err := r.Loans.IsCollateralLocked(ctx, in.CollateralID)
		if err != nil {
			return fmt.Errorf("read collateral lock: %w", err)
		}
		if locked {
			return domainLoan.ErrCollateralAlreadyLocked
		}

		if !domainLoan.ValidAmount(in.Principal) || !domainLoan.ValidDuration(in.DurationDays) {
			return domainLoan.ErrInvalidLoanTerms
		}
		if err := gate.EnsureOpen(ctx, r.KV); err != nil {
			return err
		}
		if in.Caller != in.Borrower {
			return domainLoan.ErrNotBorrower
		}

		loanID, err := r.Loans.NextLoanID(ctx)
		if err != nil {
			return fmt.Errorf("allocate loan id: %w", err)
		}

		l := &domainLoan.Loan{
			ID:              loanID,
			Borrower:        in.Borrower,
			CollateralID:    in.CollateralID,
			Principal:       in.Principal,
			InterestRateBps: in.InterestRateBps,
			DurationDays:    in.DurationDays,
			Status:          domainLoan.StatusActive,
			RepaidAmount:    decimal.Zero,
			CreatedAt:       now,
			ExpiresAt:       now.AddDate(0, 0, int(in.DurationDays)),
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return fmt.Errorf("insert loan %d: %w", loanID, err)
		}
		if err := r.Loans.LockCollateral(ctx, in.CollateralID, loanID); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domainLoan.ErrCollateralAlreadyLocked
			}
			return fmt.Errorf("lock collateral: %w", err)
		}
		if err := r.Loans.AddToBorrowerIndex(ctx, in.Borrower, loanID); err != nil {
			return fmt.Errorf("index borrower loan: %w", err)
		}
		if err := recordEvent(ctx, r, loanID, domainEvent.KindCreated, in.Caller, in.Principal, now); err != nil {
			return err
		}
		created = l
		return nil
	})
	if err != nil {
		logFailure(logger, err, "create loan failed")
		return nil, err
	}

	logger.Info().
		Uint64("loan_id", created.ID).
		Str("principal", created.Principal.String()).
		Uint32("rate_bps", created.InterestRateBps).
		Uint32("duration_days", created.DurationDays).
		Msg("loan created")
	return toDTO(created, now), nil
}

func (u *Usecase) RepayLoan(ctx context.Context, in RepayInput) (*LoanDTO, error) {
	if u.uow == nil {
		return nil, errNoUnitOfWork
	}
	logger := log.With().
		Str("op", "repay_loan").
		Uint64("loan_id", in.LoanID).
		Str("caller", in.Caller).
		Logger()

	now := u.ledgerTime()
	var updated *domainLoan.Loan

	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Borrower != in.Caller {
			return domainLoan.ErrNotBorrower
		}
		if l.Status != domainLoan.StatusActive {
			return domainLoan.ErrLoanNotActive
		}
		if !domainLoan.ValidAmount(in.Amount) {
			return domainLoan.ErrInvalidAmount
		}

		kind := domainEvent.KindRepaid
		newRepaid := l.RepaidAmount.Add(in.Amount)
		if newRepaid.GreaterThanOrEqual(l.Principal) {
			// excess over principal is accepted but not credited
			l.RepaidAmount = l.Principal
			l.Status = domainLoan.StatusRepaid
			l.ClosedAt = &now
			kind = domainEvent.KindSettled
			if err := r.Loans.ReleaseCollateral(ctx, l.CollateralID); err != nil {
				return fmt.Errorf("release collateral: %w", err)
			}
		} else {
			l.RepaidAmount = newRepaid
		}

		if err := r.Loans.Save(ctx, l); err != nil {
			return fmt.Errorf("save loan: %w", err)
		}
		if err := recordEvent(ctx, r, l.ID, kind, in.Caller, in.Amount, now); err != nil {
			return err
		}
		updated = l
		return nil
	})
	if err != nil {
		err = mapNotFound(err)
		logFailure(logger, err, "repay loan failed")
		return nil, err
	}

	logger.Info().
		Str("amount", in.Amount.String()).
		Str("repaid", updated.RepaidAmount.String()).
		Str("status", string(updated.Status)).
		Msg("loan repayment applied")
	return toDTO(updated, now), nil
}

func (u *Usecase) LiquidateLoan(ctx context.Context, in LiquidateInput) (*LoanDTO, error) {
	if u.uow == nil {
		return nil, errNoUnitOfWork
	}
	logger := log.With().
		Str("op", "liquidate_loan").
		Uint64("loan_id", in.LoanID).
		Str("liquidator", in.Caller).
		Logger()

	now := u.ledgerTime()
	var liquidated *domainLoan.Loan

	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusActive {
			return domainLoan.ErrLoanNotActive
		}
		if !l.Expired(now) {
			return domainLoan.ErrLoanNotExpired
		}
		if err := gate.EnsureOpen(ctx, r.KV); err != nil {
			return err
		}

		l.Status = domainLoan.StatusLiquidated
		l.ClosedAt = &now
		if err := r.Loans.Save(ctx, l); err != nil {
			return fmt.Errorf("save loan: %w", err)
		}
		if err := r.Loans.ReleaseCollateral(ctx, l.CollateralID); err != nil {
			return fmt.Errorf("release collateral: %w", err)
		}
		if err := r.Assets.Transfer(ctx, l.Borrower, in.Caller, l.CollateralID); err != nil {
			return fmt.Errorf("transfer collateral %d to liquidator: %w", l.CollateralID, err)
		}
		if err := recordEvent(ctx, r, l.ID, domainEvent.KindLiquidated, in.Caller, l.Outstanding(), now); err != nil {
			return err
		}
		liquidated = l
		return nil
	})
	if err != nil {
		err = mapNotFound(err)
		logFailure(logger, err, "liquidate loan failed")
		return nil, err
	}

	logger.Info().
		Uint64("collateral_id", liquidated.CollateralID).
		Str("borrower", liquidated.Borrower).
		Msg("loan liquidated")
	return toDTO(liquidated, now), nil
}

func (u *Usecase) GetLoanInfo(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	l, err := u.loanRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return toDTO(l, u.ledgerTime()), nil
}

func (u *Usecase) IsCollateral(ctx context.Context, collateralID uint64) (bool, error) {
	return u.loanRepo.IsCollateralLocked(ctx, collateralID)
}

func (u *Usecase) GetUserLoans(ctx context.Context, borrower string) ([]uint64, error) {
	return u.loanRepo.LoansOf(ctx, borrower)
}

// Interest reports accrued interest at `at`; zero `at` means now.
func (u *Usecase) Interest(ctx context.Context, loanID uint64, at time.Time) (*InterestDTO, error) {
	l, err := u.loanRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if at.IsZero() {
		at = u.ledgerTime()
	}
	return &InterestDTO{
		LoanID:      l.ID,
		At:          at.UTC(),
		ElapsedDays: domainLoan.ElapsedDays(l, at),
		Interest:    domainLoan.CalculateInterest(l, at),
	}, nil
}

func (u *Usecase) LoanEvents(ctx context.Context, loanID uint64) ([]EventDTO, error) {
	if _, err := u.loanRepo.GetByLoanID(ctx, loanID); err != nil {
		return nil, mapNotFound(err)
	}
	rows, err := u.eventRepo.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	out := make([]EventDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toEventDTO(&rows[i]))
	}
	return out, nil
}

// LoanEvent fetches one event of loanID. An event that belongs to another
// loan is reported as missing.
func (u *Usecase) LoanEvent(ctx context.Context, loanID uint64, eventID string) (*EventDTO, error) {
	if _, err := u.loanRepo.GetByLoanID(ctx, loanID); err != nil {
		return nil, mapNotFound(err)
	}
	e, err := u.eventRepo.GetByEventID(ctx, eventID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && e.LoanID != loanID) {
		return nil, domainEvent.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	dto := toEventDTO(e)
	return &dto, nil
}

// ExpiredLoans lists active loans whose term has ended, oldest expiry first.
func (u *Usecase) ExpiredLoans(ctx context.Context, limit int) ([]uint64, error) {
	return u.loanRepo.ListExpiredActive(ctx, u.ledgerTime(), limit)
}

func recordEvent(ctx context.Context, r uow.Repos, loanID uint64, kind domainEvent.Kind, actor string, amount decimal.Decimal, at time.Time) error {
	e := &domainEvent.LoanEvent{
		EventID:    id.NewID32(),
		LoanID:     loanID,
		Kind:       kind,
		Actor:      actor,
		Amount:     amount,
		OccurredAt: at,
	}
	if err := r.Events.Create(ctx, e); err != nil {
		return fmt.Errorf("record %s event: %w", kind, err)
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainLoan.ErrLoanNotFound
	}
	return err
}

func toEventDTO(e *domainEvent.LoanEvent) EventDTO {
	return EventDTO{
		EventID:    e.EventID,
		LoanID:     e.LoanID,
		Kind:       string(e.Kind),
		Actor:      e.Actor,
		Amount:     e.Amount,
		OccurredAt: e.OccurredAt,
	}
}

func toDTO(l *domainLoan.Loan, at time.Time) *LoanDTO {
	return &LoanDTO{
		LoanID:          l.ID,
		Borrower:        l.Borrower,
		CollateralID:    l.CollateralID,
		Principal:       l.Principal,
		InterestRateBps: l.InterestRateBps,
		DurationDays:    l.DurationDays,
		Status:          string(l.Status),
		RepaidAmount:    l.RepaidAmount,
		CreatedAt:       l.CreatedAt,
		ExpiresAt:       l.ExpiresAt,
		ClosedAt:        l.ClosedAt,
		AccruedInterest: domainLoan.CalculateInterest(l, at),
		Outstanding:     l.Outstanding(),
	}
}

// logFailure keeps rejected requests at warn and infrastructure faults at error.
func logFailure(logger zerolog.Logger, err error, msg string) {
	if isRejection(err) {
		logger.Warn().Err(err).Msg(msg)
		return
	}
	logger.Error().Err(err).Msg(msg)
}

func isRejection(err error) bool {
	for _, target := range []error{
		domainLoan.ErrNotCollateralOwner,
		domainLoan.ErrCollateralAlreadyLocked,
		domainLoan.ErrInvalidLoanTerms,
		domainLoan.ErrLoanNotFound,
		domainLoan.ErrNotBorrower,
		domainLoan.ErrLoanNotActive,
		domainLoan.ErrInvalidAmount,
		domainLoan.ErrLoanNotExpired,
		gate.ErrContractPaused,
		gate.ErrNotAuthorized,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
