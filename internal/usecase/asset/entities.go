package asset

type MintInput struct {
	To      string
	TokenID uint64
	Caller  string
}

type TransferInput struct {
	From    string
	To      string
	TokenID uint64
	Caller  string
}

type BurnInput struct {
	TokenID uint64
	Caller  string
}

type AssetDTO struct {
	TokenID  uint64 `json:"token_id"`
	Owner    string `json:"owner"`
	IsLocked bool   `json:"is_collateral"`
}

type HoldingsDTO struct {
	Owner    string   `json:"owner"`
	TokenIDs []uint64 `json:"token_ids"`
}
