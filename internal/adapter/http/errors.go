package http

import (
	"errors"
	"net/http"
	"strconv"

	mw "collateral-lending/internal/adapter/middleware"
	domainAsset "collateral-lending/internal/domain/asset"
	domainEvent "collateral-lending/internal/domain/event"
	"collateral-lending/internal/domain/gate"
	domainLoan "collateral-lending/internal/domain/loan"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

var statusByErr = []struct {
	err    error
	status int
}{
	{domainLoan.ErrLoanNotFound, http.StatusNotFound},
	{domainAsset.ErrNotFound, http.StatusNotFound},
	{domainEvent.ErrNotFound, http.StatusNotFound},
	{domainLoan.ErrNotBorrower, http.StatusForbidden},
	{domainLoan.ErrNotCollateralOwner, http.StatusForbidden},
	{gate.ErrNotAuthorized, http.StatusForbidden},
	{domainAsset.ErrNotOwner, http.StatusForbidden},
	{domainLoan.ErrCollateralAlreadyLocked, http.StatusConflict},
	{domainLoan.ErrLoanNotActive, http.StatusConflict},
	{domainLoan.ErrLoanNotExpired, http.StatusConflict},
	{domainAsset.ErrAlreadyMinted, http.StatusConflict},
	{domainLoan.ErrInvalidLoanTerms, http.StatusUnprocessableEntity},
	{domainLoan.ErrInvalidAmount, http.StatusUnprocessableEntity},
	{gate.ErrContractPaused, http.StatusLocked},
}

// StatusFor maps a usecase error to its HTTP status; unknown errors are 500.
func StatusFor(err error) int {
	for _, m := range statusByErr {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

func respondError(c echo.Context, err error) error {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.JSON(status, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(status, ErrorResponse{Error: err.Error()})
}

func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

func uintParam(c echo.Context, name string) (uint64, bool, error) {
	raw := c.Param(name)
	if raw == "" {
		return 0, false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + name + " path param"})
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name + " path param"})
	}
	return n, true, nil
}

func accountParam(c echo.Context, name string) (string, bool, error) {
	raw := c.Param(name)
	if !reHex32.MatchString(raw) {
		return "", false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name + " path param"})
	}
	return raw, true, nil
}

func callerOf(c echo.Context) (string, bool, error) {
	caller, err := mw.CallerFrom(c)
	if err != nil {
		return "", false, c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}
	return caller, true, nil
}
