package asset

import (
	"context"
	"errors"
	"fmt"

	domainAsset "collateral-lending/internal/domain/asset"
	"collateral-lending/internal/domain/gate"
	domainLoan "collateral-lending/internal/domain/loan"
	"collateral-lending/internal/domain/uow"

	"github.com/rs/zerolog/log"
)

var errNoUnitOfWork = errors.New("asset: unit of work not configured")

type Usecase struct {
	registry domainAsset.Registry
	loanRepo domainLoan.Repository
	uow      uow.UnitOfWork
	admin    string
}

// NewUsecase: admin is the only account allowed to mint; empty disables minting.
func NewUsecase(registry domainAsset.Registry, loans domainLoan.Repository, tx uow.UnitOfWork, admin string) *Usecase {
	return &Usecase{registry: registry, loanRepo: loans, uow: tx, admin: admin}
}

func (u *Usecase) Mint(ctx context.Context, in MintInput) (*AssetDTO, error) {
	if u.uow == nil {
		return nil, errNoUnitOfWork
	}
	if u.admin == "" || in.Caller != u.admin {
		return nil, gate.ErrNotAuthorized
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := gate.EnsureOpen(ctx, r.KV); err != nil {
			return err
		}
		return r.Assets.Mint(ctx, in.To, in.TokenID, in.Caller)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint64("token_id", in.TokenID).Str("owner", in.To).Msg("asset minted")
	return &AssetDTO{TokenID: in.TokenID, Owner: in.To}, nil
}

// Transfer moves a token between accounts. Tokens backing an active loan stay put.
func (u *Usecase) Transfer(ctx context.Context, in TransferInput) (*AssetDTO, error) {
	if u.uow == nil {
		return nil, errNoUnitOfWork
	}
	if in.Caller != in.From {
		return nil, domainAsset.ErrNotOwner
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := gate.EnsureOpen(ctx, r.KV); err != nil {
			return err
		}
		if err := requireOwner(ctx, r, in.TokenID, in.From); err != nil {
			return err
		}
		if err := requireUnlocked(ctx, r, in.TokenID); err != nil {
			return err
		}
		return r.Assets.Transfer(ctx, in.From, in.To, in.TokenID)
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Uint64("token_id", in.TokenID).
		Str("from", in.From).
		Str("to", in.To).
		Msg("asset transferred")
	return &AssetDTO{TokenID: in.TokenID, Owner: in.To}, nil
}

func (u *Usecase) Burn(ctx context.Context, in BurnInput) error {
	if u.uow == nil {
		return errNoUnitOfWork
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := requireOwner(ctx, r, in.TokenID, in.Caller); err != nil {
			return err
		}
		if err := gate.EnsureOpen(ctx, r.KV); err != nil {
			return err
		}
		if err := requireUnlocked(ctx, r, in.TokenID); err != nil {
			return err
		}
		return r.Assets.Burn(ctx, in.TokenID)
	})
	if err != nil {
		return err
	}
	log.Info().Uint64("token_id", in.TokenID).Str("owner", in.Caller).Msg("asset burned")
	return nil
}

func (u *Usecase) OwnerOf(ctx context.Context, tokenID uint64) (*AssetDTO, error) {
	owner, found, err := u.registry.OwnerOf(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainAsset.ErrNotFound
	}
	locked, err := u.loanRepo.IsCollateralLocked(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	return &AssetDTO{TokenID: tokenID, Owner: owner, IsLocked: locked}, nil
}

func (u *Usecase) AssetsOf(ctx context.Context, owner string) (*HoldingsDTO, error) {
	ids, err := u.registry.TokensOf(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &HoldingsDTO{Owner: owner, TokenIDs: ids}, nil
}

func requireOwner(ctx context.Context, r uow.Repos, tokenID uint64, account string) error {
	owner, found, err := r.Assets.OwnerOf(ctx, tokenID)
	if err != nil {
		return fmt.Errorf("read owner of %d: %w", tokenID, err)
	}
	if !found {
		return domainAsset.ErrNotFound
	}
	if owner != account {
		return domainAsset.ErrNotOwner
	}
	return nil
}

func requireUnlocked(ctx context.Context, r uow.Repos, tokenID uint64) error {
	locked, err := r.Loans.IsCollateralLocked(ctx, tokenID)
	if err != nil {
		return fmt.Errorf("read collateral lock: %w", err)
	}
	if locked {
		return domainLoan.ErrCollateralAlreadyLocked
	}
	return nil
}
