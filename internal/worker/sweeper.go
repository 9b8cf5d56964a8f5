package worker

import (
	"context"
	"errors"
	"time"

	"collateral-lending/internal/domain/gate"
	domainLoan "collateral-lending/internal/domain/loan"
	"collateral-lending/internal/usecase/loan"

	"github.com/rs/zerolog/log"
)

// Liquidator is the slice of the loan usecase the sweeper drives.
type Liquidator interface {
	ExpiredLoans(ctx context.Context, limit int) ([]uint64, error)
	LiquidateLoan(ctx context.Context, in loan.LiquidateInput) (*loan.LoanDTO, error)
}

// Sweeper periodically liquidates expired loans on behalf of a house account.
type Sweeper struct {
	uc       Liquidator
	account  string
	interval time.Duration
	batch    int
}

func NewSweeper(uc Liquidator, account string, interval time.Duration, batch int) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{uc: uc, account: account, interval: interval, batch: batch}
}

// Start runs until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	logger := log.With().Str("component", "liquidation_sweeper").Logger()
	logger.Info().Dur("interval", s.interval).Str("liquidator", s.account).Msg("starting liquidation sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down liquidation sweeper")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				logger.Error().Err(err).Msg("sweep failed")
			}
		}
	}
}

// RunOnce liquidates one batch and reports how many loans it closed.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	logger := log.With().Str("component", "liquidation_sweeper").Logger()

	ids, err := s.uc.ExpiredLoans(ctx, s.batch)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	logger.Info().Int("expired_count", len(ids)).Msg("liquidating expired loans")

	done := 0
	for _, id := range ids {
		_, err := s.uc.LiquidateLoan(ctx, loan.LiquidateInput{LoanID: id, Caller: s.account})
		switch {
		case err == nil:
			done++
		case errors.Is(err, gate.ErrContractPaused):
			logger.Warn().Msg("gate paused, ending sweep early")
			return done, nil
		case errors.Is(err, domainLoan.ErrLoanNotActive), errors.Is(err, domainLoan.ErrLoanNotExpired):
			// closed or extended by someone else since the listing
			logger.Debug().Uint64("loan_id", id).Err(err).Msg("skipping loan")
		default:
			logger.Error().Uint64("loan_id", id).Err(err).Msg("liquidation failed")
		}
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
	}
	return done, nil
}
