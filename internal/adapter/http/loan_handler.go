package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"collateral-lending/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	Borrower        string      `json:"borrower"          validate:"required,hex32"`
	CollateralID    uint64      `json:"collateral_id"`
	Principal       json.Number `json:"principal"         validate:"required,decimal"`
	InterestRateBps uint32      `json:"interest_rate_bps"`
	DurationDays    uint32      `json:"duration_days"`
}

type repayReq struct {
	Amount json.Number `json:"amount" validate:"required,decimal"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	caller, ok, err := callerOf(c)
	if !ok {
		return err
	}
	var req createLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	principal, _ := decimal.NewFromString(req.Principal.String())

	dto, err := h.uc.CreateLoan(c.Request().Context(), loan.CreateLoanInput{
		Borrower:        req.Borrower,
		CollateralID:    req.CollateralID,
		Principal:       principal,
		InterestRateBps: req.InterestRateBps,
		DurationDays:    req.DurationDays,
		Caller:          caller,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	loanID, ok, err := uintParam(c, "loan_id")
	if !ok {
		return err
	}
	dto, err := h.uc.GetLoanInfo(c.Request().Context(), loanID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Repay(c echo.Context) error {
	caller, ok, err := callerOf(c)
	if !ok {
		return err
	}
	loanID, ok, err := uintParam(c, "loan_id")
	if !ok {
		return err
	}
	var req repayReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	amount, _ := decimal.NewFromString(req.Amount.String())

	dto, err := h.uc.RepayLoan(c.Request().Context(), loan.RepayInput{LoanID: loanID, Amount: amount, Caller: caller})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Liquidate(c echo.Context) error {
	caller, ok, err := callerOf(c)
	if !ok {
		return err
	}
	loanID, ok, err := uintParam(c, "loan_id")
	if !ok {
		return err
	}
	dto, err := h.uc.LiquidateLoan(c.Request().Context(), loan.LiquidateInput{LoanID: loanID, Caller: caller})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Interest accepts ?at= as RFC3339 or epoch seconds; absent means now.
func (h *LoanHandler) Interest(c echo.Context) error {
	loanID, ok, err := uintParam(c, "loan_id")
	if !ok {
		return err
	}
	var at time.Time
	if raw := c.QueryParam("at"); raw != "" {
		if secs, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			at = time.Unix(secs, 0).UTC()
		} else if t, perr := time.Parse(time.RFC3339, raw); perr == nil {
			at = t
		} else {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "at must be RFC3339 or epoch seconds"})
		}
	}
	dto, err := h.uc.Interest(c.Request().Context(), loanID, at)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Events(c echo.Context) error {
	loanID, ok, err := uintParam(c, "loan_id")
	if !ok {
		return err
	}
	events, err := h.uc.LoanEvents(c.Request().Context(), loanID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": loanID, "events": events})
}

func (h *LoanHandler) Event(c echo.Context) error {
	loanID, ok, err := uintParam(c, "loan_id")
	if !ok {
		return err
	}
	eventID := c.Param("event_id")
	if !reHex32.MatchString(eventID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid event_id path param"})
	}
	dto, err := h.uc.LoanEvent(c.Request().Context(), loanID, eventID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) UserLoans(c echo.Context) error {
	account, ok, err := accountParam(c, "account_id")
	if !ok {
		return err
	}
	ids, err := h.uc.GetUserLoans(c.Request().Context(), account)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"borrower": account, "loan_ids": ids})
}

func (h *LoanHandler) IsCollateral(c echo.Context) error {
	tokenID, ok, err := uintParam(c, "token_id")
	if !ok {
		return err
	}
	locked, err := h.uc.IsCollateral(c.Request().Context(), tokenID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"token_id": tokenID, "is_collateral": locked})
}
