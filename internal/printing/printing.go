// Package printing renders orders and daily reports as printable HTML and PDF.
package printing

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"auto_service_backend/internal/models"
	"auto_service_backend/internal/money"
	"auto_service_backend/internal/services"
	"auto_service_backend/internal/timeutil"
)

//go:embed templates/*.html
var templateFS embed.FS

// Company is the shop identity printed in document headers.
type Company struct {
	Name    string
	Slogan  string
	Address string
	Phone   string
}

// Options toggles what a printed order shows.
type Options struct {
	ShowPrices  bool
	ShowOrderNo bool
}

func DefaultOptions() Options {
	return Options{ShowPrices: true, ShowOrderNo: true}
}

// Row is one printed invoice line.
type Row struct {
	No        int
	Label     string
	Strong    bool
	Note      string
	Quantity  string
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// InvoiceRows expands order lines into printed rows. A line with parts prints
// its labor (when non-zero) and each named part; a line without parts prints
// once with its description.
func InvoiceRows(items []models.OrderItem) []Row {
	var rows []Row
	next := func(r Row) {
		r.No = len(rows) + 1
		rows = append(rows, r)
	}
	for _, item := range items {
		if len(item.Parts) == 0 {
			note := ""
			if item.Description != nil {
				note = *item.Description
			}
			next(Row{
				Label:     item.ServiceName,
				Strong:    true,
				Note:      note,
				Quantity:  "1",
				UnitPrice: item.UnitPrice,
				Total:     decimal.NewFromInt(item.Quantity).Mul(item.UnitPrice),
			})
			continue
		}
		if item.LaborCost.IsPositive() {
			next(Row{
				Label:     item.ServiceName + " - Puna",
				Strong:    true,
				Quantity:  "1",
				UnitPrice: item.LaborCost,
				Total:     item.LaborCost,
			})
		}
		for _, p := range item.Parts {
			if strings.TrimSpace(p.Name) == "" {
				continue
			}
			qty := money.NormalizeQuantity(p.Quantity)
			next(Row{
				Label:     p.Name,
				Quantity:  qty.String(),
				UnitPrice: p.SellPrice,
				Total:     qty.Mul(p.SellPrice),
			})
		}
	}
	return rows
}

// ReportRow is one order in a daily report.
type ReportRow struct {
	No       int
	Order    models.Order
	Services string
	Total    decimal.Decimal
}

func reportRows(orders []models.Order) []ReportRow {
	rows := make([]ReportRow, 0, len(orders))
	for i := range orders {
		names := make([]string, 0, len(orders[i].Items))
		for _, item := range orders[i].Items {
			names = append(names, item.ServiceName)
		}
		rows = append(rows, ReportRow{
			No:       i + 1,
			Order:    orders[i],
			Services: strings.Join(names, ", "),
			Total:    services.CalculateOrderTotal(&orders[i]),
		})
	}
	return rows
}

// Renderer produces documents for one shop.
type Renderer struct {
	company Company
	tmpl    *template.Template
	now     func() time.Time
}

func NewRenderer(company Company) (*Renderer, error) {
	funcs := template.FuncMap{
		"eur":  money.FormatEUR,
		"date": func(t time.Time) string { return t.In(timeutil.Local).Format(timeutil.DisplayDate) },
		"km":   func(km int64) string { return money.FormatInt(km) },
	}
	tmpl, err := template.New("print").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing print templates: %w", err)
	}
	return &Renderer{company: company, tmpl: tmpl, now: timeutil.Now}, nil
}

type orderView struct {
	Company   Company
	Options   Options
	Order     *models.Order
	Rows      []Row
	Total     decimal.Decimal
	PrintedAt time.Time
}

type reportView struct {
	Company   Company
	Label     string
	Rows      []ReportRow
	Summary   models.DaySummary
	PrintedAt time.Time
}

// OrderHTML writes a standalone invoice page for order.
func (r *Renderer) OrderHTML(w io.Writer, order *models.Order, opts Options) error {
	view := orderView{
		Company:   r.company,
		Options:   opts,
		Order:     order,
		Rows:      InvoiceRows(order.Items),
		Total:     services.CalculateOrderTotal(order),
		PrintedAt: r.now(),
	}
	if err := r.tmpl.ExecuteTemplate(w, "order.html", view); err != nil {
		return fmt.Errorf("rendering order %d: %w", order.ID, err)
	}
	return nil
}

// DailyReportHTML writes the report page for the orders of one day.
func (r *Renderer) DailyReportHTML(w io.Writer, label string, orders []models.Order) error {
	view := reportView{
		Company:   r.company,
		Label:     label,
		Rows:      reportRows(orders),
		Summary:   services.SummarizeDay(label, orders),
		PrintedAt: r.now(),
	}
	if err := r.tmpl.ExecuteTemplate(w, "daily_report.html", view); err != nil {
		return fmt.Errorf("rendering daily report %s: %w", label, err)
	}
	return nil
}
