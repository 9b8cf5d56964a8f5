package asset

import "context"

// Registry tracks which account holds which collectible. The lending engine
// only relies on OwnerOf and Transfer.
type Registry interface {
	// OwnerOf reports found=false for tokens that were never minted or were burned.
	OwnerOf(ctx context.Context, tokenID uint64) (owner string, found bool, err error)
	// Transfer fails with ErrNotOwner unless from currently holds the token.
	Transfer(ctx context.Context, from, to string, tokenID uint64) error
	Mint(ctx context.Context, to string, tokenID uint64, authorizedBy string) error
	Burn(ctx context.Context, tokenID uint64) error
	TokensOf(ctx context.Context, owner string) ([]uint64, error)
}
