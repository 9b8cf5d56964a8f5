package assetmock

import (
	domain "collateral-lending/internal/domain/asset"
	"context"
)

var _ domain.Registry = (*Registry)(nil)

// Registry is a function-backed mock that satisfies domain.Registry.
type Registry struct {
	OwnerOfFn  func(ctx context.Context, tokenID uint64) (string, bool, error)
	TransferFn func(ctx context.Context, from, to string, tokenID uint64) error
	MintFn     func(ctx context.Context, to string, tokenID uint64, authorizedBy string) error
	BurnFn     func(ctx context.Context, tokenID uint64) error
	TokensOfFn func(ctx context.Context, owner string) ([]uint64, error)
}

func (m *Registry) OwnerOf(ctx context.Context, tokenID uint64) (string, bool, error) {
	if m.OwnerOfFn != nil {
		return m.OwnerOfFn(ctx, tokenID)
	}
	return "", false, context.Canceled
}

func (m *Registry) Transfer(ctx context.Context, from, to string, tokenID uint64) error {
	if m.TransferFn != nil {
		return m.TransferFn(ctx, from, to, tokenID)
	}
	return nil
}

func (m *Registry) Mint(ctx context.Context, to string, tokenID uint64, authorizedBy string) error {
	if m.MintFn != nil {
		return m.MintFn(ctx, to, tokenID, authorizedBy)
	}
	return nil
}

func (m *Registry) Burn(ctx context.Context, tokenID uint64) error {
	if m.BurnFn != nil {
		return m.BurnFn(ctx, tokenID)
	}
	return nil
}

func (m *Registry) TokensOf(ctx context.Context, owner string) ([]uint64, error) {
	if m.TokensOfFn != nil {
		return m.TokensOfFn(ctx, owner)
	}
	return nil, context.Canceled
}
