package mysql

import (
	"context"
	"errors"

	assetDomain "collateral-lending/internal/domain/asset"

	"gorm.io/gorm"
)

type AssetRepository struct{ db *gorm.DB }

func NewAssetRepository(db *gorm.DB) *AssetRepository { return &AssetRepository{db: db} }

func (r *AssetRepository) OwnerOf(ctx context.Context, tokenID uint64) (string, bool, error) {
	var out assetDomain.Asset
	res := r.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if res.Error != nil {
		return "", false, res.Error
	}
	return out.Owner, true, nil
}

// Transfer is a conditional update: it only moves the token if from still holds it.
func (r *AssetRepository) Transfer(ctx context.Context, from, to string, tokenID uint64) error {
	if from == to {
		owner, found, err := r.OwnerOf(ctx, tokenID)
		if err != nil {
			return err
		}
		if !found || owner != from {
			return assetDomain.ErrNotOwner
		}
		return nil
	}
	res := r.db.WithContext(ctx).Model(&assetDomain.Asset{}).
		Where("token_id = ? AND owner = ?", tokenID, from).
		Update("owner", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return assetDomain.ErrNotOwner
	}
	return nil
}

func (r *AssetRepository) Mint(ctx context.Context, to string, tokenID uint64, authorizedBy string) error {
	err := r.db.WithContext(ctx).Create(&assetDomain.Asset{TokenID: tokenID, Owner: to, MintedBy: authorizedBy}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return assetDomain.ErrAlreadyMinted
	}
	return err
}

func (r *AssetRepository) Burn(ctx context.Context, tokenID uint64) error {
	res := r.db.WithContext(ctx).Where("token_id = ?", tokenID).Delete(&assetDomain.Asset{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return assetDomain.ErrNotFound
	}
	return nil
}

func (r *AssetRepository) TokensOf(ctx context.Context, owner string) ([]uint64, error) {
	ids := []uint64{}
	err := r.db.WithContext(ctx).Model(&assetDomain.Asset{}).
		Where("owner = ?", owner).
		Order("token_id ASC").
		Pluck("token_id", &ids).Error
	return ids, err
}
