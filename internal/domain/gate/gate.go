package gate

import (
	"context"
	"errors"

	"collateral-lending/internal/domain/kv"
)

var (
	ErrNotAuthorized  = errors.New("caller is not the administrator")
	ErrContractPaused = errors.New("operations are paused")
)

const PausedKey = "gate:paused"

func IsPaused(ctx context.Context, s kv.Store) (bool, error) {
	return kv.GetBool(ctx, s, PausedKey, false)
}

func SetPaused(ctx context.Context, s kv.Store, paused bool) error {
	return kv.SetBool(ctx, s, PausedKey, paused)
}

// EnsureOpen returns ErrContractPaused while the pause flag is set.
func EnsureOpen(ctx context.Context, s kv.Store) error {
	paused, err := IsPaused(ctx, s)
	if err != nil {
		return err
	}
	if paused {
		return ErrContractPaused
	}
	return nil
}
