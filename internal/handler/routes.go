package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sanchaya/society-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, memberHandler *MemberHandler, subscriptionHandler *SubscriptionHandler, loanHandler *LoanHandler, interestHandler *InterestHandler, depositHandler *DepositHandler, quarterHandler *QuarterHandler, reportHandler *ReportHandler, dashboardHandler *DashboardHandler) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())

	// Member routes
	members := api.Group("/members")
	members.POST("", memberHandler.CreateMember)
	members.GET("", memberHandler.GetMembers)
	members.GET("/:id", memberHandler.GetMember)
	members.PUT("/:id", memberHandler.UpdateMember)
	members.PATCH("/:id/suspend", memberHandler.SuspendMember)
	members.PATCH("/:id/activate", memberHandler.ActivateMember)

	// Subscription routes
	subscriptions := api.Group("/subscriptions")
	subscriptions.POST("", subscriptionHandler.RecordPayment)
	subscriptions.GET("", subscriptionHandler.GetByMonth)
	subscriptions.DELETE("/:id", subscriptionHandler.Delete)

	// Loan routes
	loans := api.Group("/loans")
	loans.POST("", loanHandler.IssueLoan)
	loans.GET("", loanHandler.GetLoans)
	loans.GET("/:id", loanHandler.GetLoan)
	loans.POST("/:id/top-up", loanHandler.TopUp)
	loans.POST("/:id/repayments", loanHandler.Repay)
	loans.GET("/:id/statement", loanHandler.GetStatement)

	// Monthly interest routes
	interest := api.Group("/interest")
	interest.GET("/preview", interestHandler.Preview)
	interest.POST("/post", interestHandler.Post)
	interest.GET("/missing-months", interestHandler.MissingMonths)

	// Fixed deposit routes
	deposits := api.Group("/deposits")
	deposits.POST("", depositHandler.CreateDeposit)
	deposits.GET("", depositHandler.GetDeposits)
	deposits.GET("/interest/history", depositHandler.GetInterestHistory)
	deposits.GET("/interest/:year/:quarter", depositHandler.CalculateQuarter)
	deposits.POST("/interest", depositHandler.PostQuarter)

	// Quarter settings routes
	quarters := api.Group("/quarters")
	quarters.GET("", quarterHandler.GetSettings)
	quarters.PUT("/:quarter", quarterHandler.UpdateSetting)

	// Report routes
	reports := api.Group("/reports")
	reports.GET("/income-expenditure", reportHandler.IncomeExpenditure)
	reports.GET("/profit-distribution", reportHandler.ProfitDistribution)
	reports.GET("/dues", reportHandler.DueReport)

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.GET("/summary", dashboardHandler.GetSummary)
}
