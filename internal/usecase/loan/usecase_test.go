package loan

import (
	"context"
	"errors"
	"testing"
	"time"

	domainEvent "collateral-lending/internal/domain/event"
	"collateral-lending/internal/domain/gate"
	domain "collateral-lending/internal/domain/loan"
	"collateral-lending/internal/domain/uow"
	"collateral-lending/internal/testutil/assetmock"
	"collateral-lending/internal/testutil/eventmock"
	"collateral-lending/internal/testutil/kvmock"
	"collateral-lending/internal/testutil/loanmock"
	"collateral-lending/internal/testutil/uowmock"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	borrower   = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	stranger   = "cccccccccccccccccccccccccccccccc"
	liquidator = "dddddddddddddddddddddddddddddddd"
)

var t0 = time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)

// ----- test doubles -----

type fixture struct {
	loans  *loanmock.Repo
	events *eventmock.Repo
	assets *assetmock.Memory
	kv     *kvmock.Memory
	now    time.Time

	recorded []domainEvent.Kind
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		loans:  &loanmock.Repo{},
		assets: assetmock.NewMemory(),
		kv:     kvmock.NewMemory(),
		now:    t0,
	}
	f.events = &eventmock.Repo{
		CreateFn: func(_ context.Context, e *domainEvent.LoanEvent) error {
			if len(e.EventID) != 32 {
				t.Fatalf("event id %q is not 32 chars", e.EventID)
			}
			f.recorded = append(f.recorded, e.Kind)
			return nil
		},
	}
	if err := f.assets.Mint(context.Background(), borrower, 1, "admin"); err != nil {
		t.Fatalf("seed asset: %v", err)
	}
	return f
}

func (f *fixture) usecase() *Usecase {
	repos := uow.Repos{Loans: f.loans, Assets: f.assets, Events: f.events, KV: f.kv}
	return NewUsecase(f.loans, f.events, uowmock.Passthrough(repos), WithClock(func() time.Time { return f.now }))
}

func activeLoan() *domain.Loan {
	return &domain.Loan{
		ID:              1,
		Borrower:        borrower,
		CollateralID:    1,
		Principal:       decimal.NewFromInt(1000),
		InterestRateBps: 500,
		DurationDays:    30,
		Status:          domain.StatusActive,
		RepaidAmount:    decimal.Zero,
		CreatedAt:       t0,
		ExpiresAt:       t0.AddDate(0, 0, 30),
	}
}

func validCreate() CreateLoanInput {
	return CreateLoanInput{
		Borrower:        borrower,
		CollateralID:    1,
		Principal:       decimal.NewFromInt(1000),
		InterestRateBps: 500,
		DurationDays:    30,
		Caller:          borrower,
	}
}

// ----- CreateLoan -----

func TestCreateLoan_Success(t *testing.T) {
	f := newFixture(t)
	var locked, indexed bool
	f.loans.IsCollateralLockedFn = func(context.Context, uint64) (bool, error) { return false, nil }
	f.loans.NextLoanIDFn = func(context.Context) (uint64, error) { return 1, nil }
	f.loans.CreateFn = func(_ context.Context, l *domain.Loan) error {
		if l.Status != domain.StatusActive || !l.RepaidAmount.IsZero() || !l.CreatedAt.Equal(t0) {
			t.Fatalf("unexpected record: %+v", l)
		}
		return nil
	}
	f.loans.LockCollateralFn = func(_ context.Context, collateralID, loanID uint64) error {
		locked = collateralID == 1 && loanID == 1
		return nil
	}
	f.loans.AddToBorrowerIndexFn = func(_ context.Context, b string, loanID uint64) error {
		indexed = b == borrower && loanID == 1
		return nil
	}

	dto, err := f.usecase().CreateLoan(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("CreateLoan err: %v", err)
	}
	if dto.LoanID != 1 || dto.Status != string(domain.StatusActive) {
		t.Fatalf("unexpected dto: %+v", dto)
	}
	if !dto.ExpiresAt.Equal(t0.Add(30 * 24 * time.Hour)) {
		t.Fatalf("expires_at = %v", dto.ExpiresAt)
	}
	if !locked || !indexed {
		t.Fatalf("lock=%v index=%v, want both", locked, indexed)
	}
	if len(f.recorded) != 1 || f.recorded[0] != domainEvent.KindCreated {
		t.Fatalf("events = %v", f.recorded)
	}
}

func TestCreateLoan_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture, in *CreateLoanInput)
		wantErr error
	}{
		{
			name: "paused",
			mutate: func(f *fixture, _ *CreateLoanInput) {
				_ = gate.SetPaused(context.Background(), f.kv, true)
			},
			wantErr: gate.ErrContractPaused,
		},
		{
			name:    "zero principal",
			mutate:  func(_ *fixture, in *CreateLoanInput) { in.Principal = decimal.Zero },
			wantErr: domain.ErrInvalidLoanTerms,
		},
		{
			name:    "negative principal",
			mutate:  func(_ *fixture, in *CreateLoanInput) { in.Principal = decimal.NewFromInt(-5) },
			wantErr: domain.ErrInvalidLoanTerms,
		},
		{
			name:    "fractional principal",
			mutate:  func(_ *fixture, in *CreateLoanInput) { in.Principal = decimal.RequireFromString("10.5") },
			wantErr: domain.ErrInvalidLoanTerms,
		},
		{
			name:    "principal beyond 128 bits",
			mutate:  func(_ *fixture, in *CreateLoanInput) { in.Principal = domain.MaxAmount.Add(decimal.NewFromInt(1)) },
			wantErr: domain.ErrInvalidLoanTerms,
		},
		{
			name:    "zero duration",
			mutate:  func(_ *fixture, in *CreateLoanInput) { in.DurationDays = 0 },
			wantErr: domain.ErrInvalidLoanTerms,
		},
		{
			name:    "borrower does not own collateral",
			mutate:  func(_ *fixture, in *CreateLoanInput) { in.Borrower, in.Caller = stranger, stranger },
			wantErr: domain.ErrNotCollateralOwner,
		},
		{
			name:    "collateral never minted",
			mutate:  func(_ *fixture, in *CreateLoanInput) { in.CollateralID = 42 },
			wantErr: domain.ErrNotCollateralOwner,
		},
		{
			name: "collateral locked, any caller",
			mutate: func(f *fixture, in *CreateLoanInput) {
				f.loans.IsCollateralLockedFn = func(context.Context, uint64) (bool, error) { return true, nil }
				in.Caller = stranger
			},
			wantErr: domain.ErrCollateralAlreadyLocked,
		},
		{
			name:    "caller is not the borrower",
			mutate:  func(_ *fixture, in *CreateLoanInput) { in.Caller = stranger },
			wantErr: domain.ErrNotBorrower,
		},
		{
			name: "locked collateral wins over bad terms",
			mutate: func(f *fixture, in *CreateLoanInput) {
				f.loans.IsCollateralLockedFn = func(context.Context, uint64) (bool, error) { return true, nil }
				in.Principal = decimal.Zero
			},
			wantErr: domain.ErrCollateralAlreadyLocked,
		},
		{
			name: "locked collateral wins over pause",
			mutate: func(f *fixture, _ *CreateLoanInput) {
				f.loans.IsCollateralLockedFn = func(context.Context, uint64) (bool, error) { return true, nil }
				_ = gate.SetPaused(context.Background(), f.kv, true)
			},
			wantErr: domain.ErrCollateralAlreadyLocked,
		},
		{
			name: "bad terms win over pause",
			mutate: func(f *fixture, in *CreateLoanInput) {
				_ = gate.SetPaused(context.Background(), f.kv, true)
				in.DurationDays = 0
			},
			wantErr: domain.ErrInvalidLoanTerms,
		},
		{
			name: "not owner wins over lock",
			mutate: func(f *fixture, in *CreateLoanInput) {
				f.loans.IsCollateralLockedFn = func(context.Context, uint64) (bool, error) { return true, nil }
				in.Borrower = stranger
			},
			wantErr: domain.ErrNotCollateralOwner,
		},
		{
			name: "lock lost to a concurrent loan",
			mutate: func(f *fixture, _ *CreateLoanInput) {
				f.loans.LockCollateralFn = func(context.Context, uint64, uint64) error { return gorm.ErrDuplicatedKey }
			},
			wantErr: domain.ErrCollateralAlreadyLocked,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.loans.IsCollateralLockedFn = func(context.Context, uint64) (bool, error) { return false, nil }
			f.loans.NextLoanIDFn = func(context.Context) (uint64, error) { return 1, nil }
			in := validCreate()
			tt.mutate(f, &in)

			_, err := f.usecase().CreateLoan(context.Background(), in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want err=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateLoan_NilUoW(t *testing.T) {
	uc := NewUsecase(nil, nil, nil)
	if _, err := uc.CreateLoan(context.Background(), validCreate()); !errors.Is(err, errNoUnitOfWork) {
		t.Fatalf("want errNoUnitOfWork, got %v", err)
	}
}

// ----- RepayLoan -----

func TestRepayLoan(t *testing.T) {
	tests := []struct {
		name        string
		loan        func() *domain.Loan
		in          RepayInput
		wantErr     error
		wantStatus  domain.Status
		wantRepaid  int64
		wantRelease bool
		wantEvent   domainEvent.Kind
	}{
		{
			name:       "partial payment stays active",
			loan:       activeLoan,
			in:         RepayInput{LoanID: 1, Amount: decimal.NewFromInt(500), Caller: borrower},
			wantStatus: domain.StatusActive,
			wantRepaid: 500,
			wantEvent:  domainEvent.KindRepaid,
		},
		{
			name: "final payment settles and releases",
			loan: func() *domain.Loan {
				l := activeLoan()
				l.RepaidAmount = decimal.NewFromInt(500)
				return l
			},
			in:          RepayInput{LoanID: 1, Amount: decimal.NewFromInt(500), Caller: borrower},
			wantStatus:  domain.StatusRepaid,
			wantRepaid:  1000,
			wantRelease: true,
			wantEvent:   domainEvent.KindSettled,
		},
		{
			name:        "overpayment is clamped to principal",
			loan:        activeLoan,
			in:          RepayInput{LoanID: 1, Amount: decimal.NewFromInt(5000), Caller: borrower},
			wantStatus:  domain.StatusRepaid,
			wantRepaid:  1000,
			wantRelease: true,
			wantEvent:   domainEvent.KindSettled,
		},
		{
			name:    "not the borrower",
			loan:    activeLoan,
			in:      RepayInput{LoanID: 1, Amount: decimal.NewFromInt(1), Caller: stranger},
			wantErr: domain.ErrNotBorrower,
		},
		{
			name: "already repaid",
			loan: func() *domain.Loan {
				l := activeLoan()
				l.Status = domain.StatusRepaid
				return l
			},
			in:      RepayInput{LoanID: 1, Amount: decimal.NewFromInt(1), Caller: borrower},
			wantErr: domain.ErrLoanNotActive,
		},
		{
			name: "liquidated",
			loan: func() *domain.Loan {
				l := activeLoan()
				l.Status = domain.StatusLiquidated
				return l
			},
			in:      RepayInput{LoanID: 1, Amount: decimal.NewFromInt(1), Caller: borrower},
			wantErr: domain.ErrLoanNotActive,
		},
		{
			name:    "zero amount",
			loan:    activeLoan,
			in:      RepayInput{LoanID: 1, Amount: decimal.Zero, Caller: borrower},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			loan:    activeLoan,
			in:      RepayInput{LoanID: 1, Amount: decimal.NewFromInt(-1), Caller: borrower},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "missing loan",
			loan:    nil,
			in:      RepayInput{LoanID: 9, Amount: decimal.NewFromInt(1), Caller: borrower},
			wantErr: domain.ErrLoanNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			released, saved := false, false
			f.loans.GetByLoanIDForUpdateFn = func(context.Context, uint64) (*domain.Loan, error) {
				if tt.loan == nil {
					return &domain.Loan{}, gorm.ErrRecordNotFound
				}
				return tt.loan(), nil
			}
			f.loans.ReleaseCollateralFn = func(_ context.Context, id uint64) error {
				released = id == 1
				return nil
			}
			f.loans.SaveFn = func(context.Context, *domain.Loan) error {
				saved = true
				return nil
			}

			dto, err := f.usecase().RepayLoan(context.Background(), tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want err=%v, got %v", tt.wantErr, err)
				}
				if saved || released || len(f.recorded) != 0 {
					t.Fatalf("rejected repayment wrote state: saved=%v released=%v events=%v", saved, released, f.recorded)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if dto.Status != string(tt.wantStatus) {
				t.Fatalf("status = %s, want %s", dto.Status, tt.wantStatus)
			}
			if !dto.RepaidAmount.Equal(decimal.NewFromInt(tt.wantRepaid)) {
				t.Fatalf("repaid = %s, want %d", dto.RepaidAmount, tt.wantRepaid)
			}
			if released != tt.wantRelease {
				t.Fatalf("released = %v, want %v", released, tt.wantRelease)
			}
			if tt.wantRelease && dto.ClosedAt == nil {
				t.Fatalf("closed_at not set on settlement")
			}
			if len(f.recorded) != 1 || f.recorded[0] != tt.wantEvent {
				t.Fatalf("events = %v, want [%s]", f.recorded, tt.wantEvent)
			}
		})
	}
}

// ----- LiquidateLoan -----

func TestLiquidateLoan(t *testing.T) {
	term := 30 * 24 * time.Hour

	tests := []struct {
		name    string
		at      time.Time
		loan    func() *domain.Loan
		paused  bool
		wantErr error
	}{
		{name: "one second before expiry", at: t0.Add(term - time.Second), loan: activeLoan, wantErr: domain.ErrLoanNotExpired},
		{name: "exactly at expiry", at: t0.Add(term), loan: activeLoan},
		{name: "long after expiry", at: t0.Add(term + 24*time.Hour), loan: activeLoan},
		{name: "paused", at: t0.Add(term), loan: activeLoan, paused: true, wantErr: gate.ErrContractPaused},
		{
			name: "already repaid",
			at:   t0.Add(term),
			loan: func() *domain.Loan {
				l := activeLoan()
				l.Status = domain.StatusRepaid
				return l
			},
			wantErr: domain.ErrLoanNotActive,
		},
		{name: "missing loan", at: t0.Add(term), wantErr: domain.ErrLoanNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.now = tt.at
			if tt.paused {
				_ = gate.SetPaused(context.Background(), f.kv, true)
			}
			released := false
			f.loans.GetByLoanIDForUpdateFn = func(context.Context, uint64) (*domain.Loan, error) {
				if tt.loan == nil {
					return &domain.Loan{}, gorm.ErrRecordNotFound
				}
				return tt.loan(), nil
			}
			f.loans.ReleaseCollateralFn = func(context.Context, uint64) error {
				released = true
				return nil
			}

			dto, err := f.usecase().LiquidateLoan(context.Background(), LiquidateInput{LoanID: 1, Caller: liquidator})
			owner, _, _ := f.assets.OwnerOf(context.Background(), 1)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want err=%v, got %v", tt.wantErr, err)
				}
				if released || owner != borrower {
					t.Fatalf("rejected liquidation changed state: released=%v owner=%s", released, owner)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if dto.Status != string(domain.StatusLiquidated) {
				t.Fatalf("status = %s", dto.Status)
			}
			if !released {
				t.Fatalf("collateral lock not released")
			}
			if owner != liquidator {
				t.Fatalf("collateral owner = %s, want liquidator", owner)
			}
			if len(f.recorded) != 1 || f.recorded[0] != domainEvent.KindLiquidated {
				t.Fatalf("events = %v", f.recorded)
			}
		})
	}
}

func TestLiquidateLoan_TransferFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.now = t0.AddDate(0, 0, 31)
	f.loans.GetByLoanIDForUpdateFn = func(context.Context, uint64) (*domain.Loan, error) {
		l := activeLoan()
		l.Borrower = stranger // registry says borrower owns token 1, so transfer must fail
		return l, nil
	}

	_, err := f.usecase().LiquidateLoan(context.Background(), LiquidateInput{LoanID: 1, Caller: liquidator})
	if err == nil {
		t.Fatal("expected error when the registry refuses the transfer")
	}
	if len(f.recorded) != 0 {
		t.Fatalf("event recorded for failed liquidation: %v", f.recorded)
	}
}

// ----- queries -----

func TestGetLoanInfo(t *testing.T) {
	f := newFixture(t)
	f.now = t0.AddDate(0, 0, 15)
	f.loans.GetByLoanIDFn = func(_ context.Context, id uint64) (*domain.Loan, error) {
		if id != 1 {
			return &domain.Loan{}, gorm.ErrRecordNotFound
		}
		return activeLoan(), nil
	}
	uc := f.usecase()

	dto, err := uc.GetLoanInfo(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetLoanInfo err: %v", err)
	}
	// 1000 * 500 * 15 / (10000 * 30) = 25
	if !dto.AccruedInterest.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("accrued interest = %s, want 25", dto.AccruedInterest)
	}
	again, _ := uc.GetLoanInfo(context.Background(), 1)
	if !again.AccruedInterest.Equal(dto.AccruedInterest) || again.Status != dto.Status {
		t.Fatalf("repeated reads differ: %+v vs %+v", again, dto)
	}

	if _, err := uc.GetLoanInfo(context.Background(), 2); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Fatalf("want ErrLoanNotFound, got %v", err)
	}
}

func TestInterest_DefaultsToNow(t *testing.T) {
	f := newFixture(t)
	f.now = t0.AddDate(0, 0, 30)
	f.loans.GetByLoanIDFn = func(context.Context, uint64) (*domain.Loan, error) { return activeLoan(), nil }

	got, err := f.usecase().Interest(context.Background(), 1, time.Time{})
	if err != nil {
		t.Fatalf("Interest err: %v", err)
	}
	if got.ElapsedDays != 30 || !got.Interest.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected interest: %+v", got)
	}
}

func TestLoanEvents_UnknownLoan(t *testing.T) {
	f := newFixture(t)
	f.loans.GetByLoanIDFn = func(context.Context, uint64) (*domain.Loan, error) {
		return &domain.Loan{}, gorm.ErrRecordNotFound
	}
	if _, err := f.usecase().LoanEvents(context.Background(), 7); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Fatalf("want ErrLoanNotFound, got %v", err)
	}
}

func TestLoanEvent(t *testing.T) {
	const evID = "0123456789abcdef0123456789abcdef"
	stored := &domainEvent.LoanEvent{
		EventID: evID, LoanID: 1, Kind: domainEvent.KindRepaid,
		Actor: borrower, Amount: decimal.NewFromInt(250), OccurredAt: t0,
	}
	cases := []struct {
		name    string
		loanErr error
		ev      *domainEvent.LoanEvent
		evErr   error
		wantErr error
	}{
		{name: "found", ev: stored},
		{name: "unknown loan", loanErr: gorm.ErrRecordNotFound, wantErr: domain.ErrLoanNotFound},
		{name: "unknown event", ev: &domainEvent.LoanEvent{}, evErr: gorm.ErrRecordNotFound, wantErr: domainEvent.ErrNotFound},
		{name: "event of another loan", ev: &domainEvent.LoanEvent{EventID: evID, LoanID: 2}, wantErr: domainEvent.ErrNotFound},
		{name: "store failure", ev: &domainEvent.LoanEvent{}, evErr: errors.New("boom")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.loans.GetByLoanIDFn = func(context.Context, uint64) (*domain.Loan, error) {
				return activeLoan(), tc.loanErr
			}
			f.events.GetByEventIDFn = func(_ context.Context, id string) (*domainEvent.LoanEvent, error) {
				if id != evID {
					t.Fatalf("looked up %q", id)
				}
				return tc.ev, tc.evErr
			}

			got, err := f.usecase().LoanEvent(context.Background(), 1, evID)
			switch {
			case tc.wantErr != nil:
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
			case tc.evErr != nil:
				if !errors.Is(err, tc.evErr) {
					t.Fatalf("want store error passed through, got %v", err)
				}
			default:
				if err != nil {
					t.Fatalf("LoanEvent: %v", err)
				}
				if got.Kind != "repaid" || !got.Amount.Equal(decimal.NewFromInt(250)) || got.LoanID != 1 {
					t.Fatalf("unexpected dto: %+v", got)
				}
			}
		})
	}
}
