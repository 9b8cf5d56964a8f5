package gate

import (
	"context"

	domainGate "collateral-lending/internal/domain/gate"
	"collateral-lending/internal/domain/kv"

	"github.com/rs/zerolog/log"
)

type StatusDTO struct {
	Paused bool   `json:"paused"`
	Admin  string `json:"admin"`
}

// Usecase toggles the pause flag. The administrator is fixed at construction.
type Usecase struct {
	store kv.Store
	admin string
}

func NewUsecase(store kv.Store, admin string) *Usecase {
	return &Usecase{store: store, admin: admin}
}

func (u *Usecase) Pause(ctx context.Context, caller string) (*StatusDTO, error) {
	return u.set(ctx, caller, true)
}

func (u *Usecase) Unpause(ctx context.Context, caller string) (*StatusDTO, error) {
	return u.set(ctx, caller, false)
}

func (u *Usecase) Status(ctx context.Context) (*StatusDTO, error) {
	paused, err := domainGate.IsPaused(ctx, u.store)
	if err != nil {
		return nil, err
	}
	return &StatusDTO{Paused: paused, Admin: u.admin}, nil
}

func (u *Usecase) set(ctx context.Context, caller string, paused bool) (*StatusDTO, error) {
	if u.admin == "" || caller != u.admin {
		log.Warn().Str("caller", caller).Bool("paused", paused).Msg("gate change refused")
		return nil, domainGate.ErrNotAuthorized
	}
	if err := domainGate.SetPaused(ctx, u.store, paused); err != nil {
		return nil, err
	}
	log.Info().Str("admin", caller).Bool("paused", paused).Msg("gate updated")
	return &StatusDTO{Paused: paused, Admin: u.admin}, nil
}
