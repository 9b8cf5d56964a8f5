package http

import (
	"net/http"

	"collateral-lending/internal/usecase/gate"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct{ uc *gate.Usecase }

func NewAdminHandler(uc *gate.Usecase) *AdminHandler { return &AdminHandler{uc: uc} }

func (h *AdminHandler) Status(c echo.Context) error {
	dto, err := h.uc.Status(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AdminHandler) Pause(c echo.Context) error {
	caller, ok, err := callerOf(c)
	if !ok {
		return err
	}
	dto, err := h.uc.Pause(c.Request().Context(), caller)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AdminHandler) Unpause(c echo.Context) error {
	caller, ok, err := callerOf(c)
	if !ok {
		return err
	}
	dto, err := h.uc.Unpause(c.Request().Context(), caller)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
