package services

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"auto_service_backend/internal/models"
	"auto_service_backend/internal/money"
	"auto_service_backend/internal/timeutil"
)

// DefaultPageSize is used by invoice listings when the caller gives none.
const DefaultPageSize = 10

// CalculateOrderTotal is Σ quantity × unit_price over the order's lines.
// An order without lines totals zero.
func CalculateOrderTotal(o *models.Order) decimal.Decimal {
	total := decimal.Zero
	if o == nil {
		return total
	}
	for _, item := range o.Items {
		total = total.Add(decimal.NewFromInt(item.Quantity).Mul(item.UnitPrice))
	}
	return total
}

// CalculateOrderCOGS is Σ parts_cost over the order's lines.
func CalculateOrderCOGS(o *models.Order) decimal.Decimal {
	cogs := decimal.Zero
	if o == nil {
		return cogs
	}
	for _, item := range o.Items {
		cogs = cogs.Add(item.PartsCost)
	}
	return cogs
}

// CalculateOrderProfit is total minus COGS.
func CalculateOrderProfit(o *models.Order) decimal.Decimal {
	return CalculateOrderTotal(o).Sub(CalculateOrderCOGS(o))
}

// OrderBreakdown sums the per-line breakdown. Its Total always equals
// CalculateOrderTotal.
func OrderBreakdown(o *models.Order) money.Totals {
	lines := make([]money.Totals, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, item.Totals())
	}
	return money.Sum(lines...)
}

// CalculateDashboardStats aggregates an already filtered set of orders.
func CalculateDashboardStats(orders []models.Order) models.DashboardStats {
	stats := models.DashboardStats{
		OrderCount:   len(orders),
		TotalRevenue: decimal.Zero,
		TotalCOGS:    decimal.Zero,
		NetProfit:    decimal.Zero,
	}
	for i := range orders {
		o := &orders[i]
		stats.TotalRevenue = stats.TotalRevenue.Add(CalculateOrderTotal(o))
		stats.TotalCOGS = stats.TotalCOGS.Add(CalculateOrderCOGS(o))
		if !o.IsPaid {
			stats.PendingOrders++
		}
	}
	stats.NetProfit = stats.TotalRevenue.Sub(stats.TotalCOGS)
	return stats
}

// FilterActive keeps orders that are not archived.
func FilterActive(orders []models.Order) []models.Order {
	return filterOrders(orders, func(o *models.Order) bool { return !o.IsArchived() })
}

// FilterArchived keeps archived orders only.
func FilterArchived(orders []models.Order) []models.Order {
	return filterOrders(orders, func(o *models.Order) bool { return o.IsArchived() })
}

// FilterByDateRange keeps orders created within [from, to], both widened to whole local days.
// A nil bound is open.
func FilterByDateRange(orders []models.Order, from, to *time.Time) []models.Order {
	lower, upper := DayBounds(from, to)
	return filterOrders(orders, func(o *models.Order) bool {
		if lower != nil && o.CreatedAt.Before(*lower) {
			return false
		}
		if upper != nil && o.CreatedAt.After(*upper) {
			return false
		}
		return true
	})
}

// DayBounds widens from to the start of its local day and to to the end of its local day.
func DayBounds(from, to *time.Time) (*time.Time, *time.Time) {
	var lower, upper *time.Time
	if from != nil {
		l := timeutil.StartOfDay(*from)
		lower = &l
	}
	if to != nil {
		u := timeutil.EndOfDay(*to)
		upper = &u
	}
	return lower, upper
}

// SearchOrders matches client name, license plate or VIN, case-insensitively.
func SearchOrders(orders []models.Order, query string) []models.Order {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return orders
	}
	return filterOrders(orders, func(o *models.Order) bool {
		if o.Client != nil && strings.Contains(strings.ToLower(o.Client.FullName), q) {
			return true
		}
		if o.Vehicle != nil {
			if strings.Contains(strings.ToLower(o.Vehicle.LicensePlate), q) {
				return true
			}
			if o.Vehicle.VIN != nil && strings.Contains(strings.ToLower(*o.Vehicle.VIN), q) {
				return true
			}
		}
		return false
	})
}

// Paginate cuts a 1-based page out of items.
func Paginate[T any](items []T, page, pageSize int) models.Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * pageSize
	data := []T{}
	if start < len(items) {
		end := start + pageSize
		if end > len(items) {
			end = len(items)
		}
		data = items[start:end]
	}
	return models.Page[T]{Data: data, Total: len(items), Page: page, PageSize: pageSize}
}

// SummarizeClientOrders totals a client's history, optionally for one car.
func SummarizeClientOrders(orders []models.Order, carID *int64) models.ClientSummary {
	summary := models.ClientSummary{TotalSpent: decimal.Zero}
	for i := range orders {
		o := &orders[i]
		if carID != nil && o.CarID != *carID {
			continue
		}
		summary.TotalOrders++
		summary.TotalSpent = summary.TotalSpent.Add(CalculateOrderTotal(o))
		if o.IsPaid {
			summary.PaidOrders++
		} else {
			summary.UnpaidOrders++
		}
	}
	return summary
}

// SummarizeDay computes a daily report for orders created on date.
func SummarizeDay(date string, orders []models.Order) models.DaySummary {
	s := models.DaySummary{
		Date:        date,
		OrderCount:  len(orders),
		Revenue:     decimal.Zero,
		COGS:        decimal.Zero,
		PaidTotal:   decimal.Zero,
		UnpaidTotal: decimal.Zero,
	}
	for i := range orders {
		o := &orders[i]
		total := CalculateOrderTotal(o)
		s.Revenue = s.Revenue.Add(total)
		s.COGS = s.COGS.Add(CalculateOrderCOGS(o))
		if o.IsPaid {
			s.PaidCount++
			s.PaidTotal = s.PaidTotal.Add(total)
		} else {
			s.UnpaidTotal = s.UnpaidTotal.Add(total)
		}
	}
	s.Profit = s.Revenue.Sub(s.COGS)
	return s
}

// GroupByLocalDate buckets orders by the local calendar date of creation.
func GroupByLocalDate(orders []models.Order) map[string][]models.Order {
	groups := make(map[string][]models.Order)
	for _, o := range orders {
		key := timeutil.DateKey(o.CreatedAt)
		groups[key] = append(groups[key], o)
	}
	return groups
}

// SortedDates returns the keys of a date grouping, oldest first.
func SortedDates(groups map[string][]models.Order) []string {
	dates := make([]string, 0, len(groups))
	for d := range groups {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

func filterOrders(orders []models.Order, keep func(*models.Order) bool) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for i := range orders {
		if keep(&orders[i]) {
			out = append(out, orders[i])
		}
	}
	return out
}
