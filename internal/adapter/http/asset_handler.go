package http

import (
	"net/http"

	"collateral-lending/internal/usecase/asset"

	"github.com/labstack/echo/v4"
)

type AssetHandler struct{ uc *asset.Usecase }

func NewAssetHandler(uc *asset.Usecase) *AssetHandler { return &AssetHandler{uc: uc} }

type mintReq struct {
	To      string `json:"to"       validate:"required,hex32"`
	TokenID uint64 `json:"token_id"`
}

type transferReq struct {
	To string `json:"to" validate:"required,hex32"`
}

func (h *AssetHandler) Mint(c echo.Context) error {
	caller, ok, err := callerOf(c)
	if !ok {
		return err
	}
	var req mintReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Mint(c.Request().Context(), asset.MintInput{To: req.To, TokenID: req.TokenID, Caller: caller})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *AssetHandler) OwnerOf(c echo.Context) error {
	tokenID, ok, err := uintParam(c, "token_id")
	if !ok {
		return err
	}
	dto, err := h.uc.OwnerOf(c.Request().Context(), tokenID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Transfer always moves from the caller's own account.
func (h *AssetHandler) Transfer(c echo.Context) error {
	caller, ok, err := callerOf(c)
	if !ok {
		return err
	}
	tokenID, ok, err := uintParam(c, "token_id")
	if !ok {
		return err
	}
	var req transferReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Transfer(c.Request().Context(), asset.TransferInput{
		From:    caller,
		To:      req.To,
		TokenID: tokenID,
		Caller:  caller,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AssetHandler) Burn(c echo.Context) error {
	caller, ok, err := callerOf(c)
	if !ok {
		return err
	}
	tokenID, ok, err := uintParam(c, "token_id")
	if !ok {
		return err
	}
	if err := h.uc.Burn(c.Request().Context(), asset.BurnInput{TokenID: tokenID, Caller: caller}); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AssetHandler) AssetsOf(c echo.Context) error {
	account, ok, err := accountParam(c, "account_id")
	if !ok {
		return err
	}
	dto, err := h.uc.AssetsOf(c.Request().Context(), account)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
