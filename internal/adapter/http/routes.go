package http

import "github.com/labstack/echo/v4"

type Routes struct {
	Health *Handler
	Loans  *LoanHandler
	Assets *AssetHandler
	Admin  *AdminHandler
}

// Register mounts /health unauthenticated; everything else goes through protected.
func Register(e *echo.Echo, r Routes, protected ...echo.MiddlewareFunc) {
	e.GET("/health", r.Health.Health)

	g := e.Group("", protected...)

	g.POST("/loans", r.Loans.CreateLoan)
	g.GET("/loans/:loan_id", r.Loans.GetLoan)
	g.POST("/loans/:loan_id/repay", r.Loans.Repay)
	g.POST("/loans/:loan_id/liquidate", r.Loans.Liquidate)
	g.GET("/loans/:loan_id/interest", r.Loans.Interest)
	g.GET("/loans/:loan_id/events", r.Loans.Events)
	g.GET("/loans/:loan_id/events/:event_id", r.Loans.Event)
	g.GET("/accounts/:account_id/loans", r.Loans.UserLoans)
	g.GET("/collateral/:token_id", r.Loans.IsCollateral)

	g.POST("/assets", r.Assets.Mint)
	g.GET("/assets/:token_id", r.Assets.OwnerOf)
	g.POST("/assets/:token_id/transfer", r.Assets.Transfer)
	g.DELETE("/assets/:token_id", r.Assets.Burn)
	g.GET("/accounts/:account_id/assets", r.Assets.AssetsOf)

	g.GET("/admin/gate", r.Admin.Status)
	g.POST("/admin/pause", r.Admin.Pause)
	g.POST("/admin/unpause", r.Admin.Unpause)
}
