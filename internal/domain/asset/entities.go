package asset

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("asset not found")
	ErrNotOwner      = errors.New("account does not own the asset")
	ErrAlreadyMinted = errors.New("asset already minted")
)

// Table: assets
type Asset struct {
	TokenID   uint64    `gorm:"column:token_id;primaryKey;autoIncrement:false" json:"token_id"`
	Owner     string    `gorm:"column:owner;size:32;not null;index:idx_assets_owner" json:"owner"`
	MintedBy  string    `gorm:"column:minted_by;size:32;not null" json:"minted_by"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Asset) TableName() string { return "assets" }
