package models

import "github.com/shopspring/decimal"

// DashboardStats is the aggregate over a filtered set of orders.
type DashboardStats struct {
	OrderCount    int             `json:"order_count"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalCOGS     decimal.Decimal `json:"total_cogs"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	PendingOrders int             `json:"pending_orders"`
}

// DaySummary is the content of one daily report.
type DaySummary struct {
	Date        string          `json:"date"`
	OrderCount  int             `json:"order_count"`
	PaidCount   int             `json:"paid_count"`
	Revenue     decimal.Decimal `json:"revenue"`
	COGS        decimal.Decimal `json:"cogs"`
	Profit      decimal.Decimal `json:"profit"`
	PaidTotal   decimal.Decimal `json:"paid_total"`
	UnpaidTotal decimal.Decimal `json:"unpaid_total"`
}

// ClientSummary aggregates one client's order history.
type ClientSummary struct {
	TotalSpent   decimal.Decimal `json:"total_spent"`
	TotalOrders  int             `json:"total_orders"`
	PaidOrders   int             `json:"paid_orders"`
	UnpaidOrders int             `json:"unpaid_orders"`
}

// Page is a slice of a larger result set.
type Page[T any] struct {
	Data     []T `json:"data"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}
