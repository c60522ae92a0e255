package printing

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf/v2"

	"auto_service_backend/internal/models"
	"auto_service_backend/internal/money"
	"auto_service_backend/internal/services"
	"auto_service_backend/internal/timeutil"
)

func (r *Renderer) newPDF() (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	// Core fonts are cp1252; this covers ë, ç and €.
	return pdf, pdf.UnicodeTranslatorFromDescriptor("")
}

func (r *Renderer) pdfHeader(pdf *gofpdf.Fpdf, tr func(string) string, title, subtitle string) {
	pdf.SetTextColor(255, 107, 53)
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(120, 8, tr(r.company.Name), "", 0, "L", false, 0, "")
	pdf.SetTextColor(26, 26, 46)
	pdf.CellFormat(70, 8, tr(title), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 6, tr(r.company.Slogan), "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(70, 6, tr(subtitle), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(190, 5, tr(r.company.Address+" | Tel: "+r.company.Phone), "B", 1, "L", false, 0, "")
	pdf.SetTextColor(26, 26, 46)
	pdf.Ln(3)
	pdf.CellFormat(190, 6, tr("Data e printimit: "+r.now().Format(timeutil.DisplayDate)), "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

// OrderPDF writes the invoice of order as a PDF.
func (r *Renderer) OrderPDF(w io.Writer, order *models.Order, opts Options) error {
	pdf, tr := r.newPDF()

	title, subtitle := "RAPORT SHËRBIMI", order.CreatedAt.In(timeutil.Local).Format(timeutil.DisplayDate)
	if opts.ShowOrderNo {
		title = fmt.Sprintf("POROSI #%d", order.ID)
	}
	r.pdfHeader(pdf, tr, title, subtitle)

	pdf.SetFillColor(248, 249, 250)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(95, 7, tr("Klienti"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(95, 7, tr("Automjeti"), "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)

	var clientLines, carLines []string
	if c := order.Client; c != nil {
		clientLines = append(clientLines, c.FullName)
		if c.Phone != nil {
			clientLines = append(clientLines, *c.Phone)
		}
		if c.Email != nil {
			clientLines = append(clientLines, *c.Email)
		}
	}
	if v := order.Vehicle; v != nil {
		carLines = append(carLines, v.DisplayName(), "Targa: "+v.LicensePlate)
		if v.VIN != nil {
			carLines = append(carLines, "VIN: "+*v.VIN)
		}
	}
	if order.Km != nil {
		carLines = append(carLines, "Km: "+money.FormatInt(*order.Km)+" km")
	}
	for i := 0; i < len(clientLines) || i < len(carLines); i++ {
		left, right := "", ""
		if i < len(clientLines) {
			left = clientLines[i]
		}
		if i < len(carLines) {
			right = carLines[i]
		}
		pdf.CellFormat(95, 6, tr(left), "LR", 0, "L", false, 0, "")
		pdf.CellFormat(95, 6, tr(right), "LR", 1, "L", false, 0, "")
	}
	pdf.CellFormat(190, 0, "", "T", 1, "L", false, 0, "")
	pdf.Ln(5)

	widths := []float64{12, 118, 20}
	if opts.ShowPrices {
		widths = []float64{12, 88, 20, 35, 35}
	}
	headers := []string{"#", "Produkti / Shërbimi", "Sasia", "Çmimi", "Totali"}
	pdf.SetFillColor(26, 26, 46)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 9)
	for i, wd := range widths {
		ln := 0
		if i == len(widths)-1 {
			ln = 1
		}
		pdf.CellFormat(wd, 8, tr(headers[i]), "1", ln, "C", true, 0, "")
	}
	pdf.SetTextColor(26, 26, 46)

	for _, row := range InvoiceRows(order.Items) {
		style := ""
		if row.Strong {
			style = "B"
		}
		label := row.Label
		if row.Note != "" {
			label += " (" + row.Note + ")"
		}
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(widths[0], 7, fmt.Sprintf("%d", row.No), "1", 0, "C", false, 0, "")
		pdf.SetFont("Arial", style, 9)
		pdf.CellFormat(widths[1], 7, tr(label), "1", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		if !opts.ShowPrices {
			pdf.CellFormat(widths[2], 7, row.Quantity, "1", 1, "C", false, 0, "")
			continue
		}
		pdf.CellFormat(widths[2], 7, row.Quantity, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 7, tr(money.FormatEUR(row.UnitPrice)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, tr(money.FormatEUR(row.Total)), "1", 1, "R", false, 0, "")
	}

	if opts.ShowPrices {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 13)
		pdf.SetTextColor(255, 107, 53)
		pdf.CellFormat(120, 9, "TOTALI", "T", 0, "L", false, 0, "")
		pdf.CellFormat(70, 9, tr(money.FormatEUR(services.CalculateOrderTotal(order))), "T", 1, "R", false, 0, "")
		pdf.SetTextColor(26, 26, 46)
		pdf.SetFont("Arial", "B", 10)
		status := "PA PAGUAR"
		if order.IsPaid {
			status = "PAGUAR"
		}
		pdf.CellFormat(190, 7, status, "", 1, "R", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(136, 136, 136)
	pdf.CellFormat(190, 6, tr("Faleminderit që zgjodhët "+r.company.Name+"!"), "T", 1, "C", false, 0, "")

	return pdf.Output(w)
}

// DailyReportPDF writes the daily report for orders as a PDF.
func (r *Renderer) DailyReportPDF(w io.Writer, label string, orders []models.Order) error {
	pdf, tr := r.newPDF()
	r.pdfHeader(pdf, tr, "RAPORTI DITOR", label)

	summary := services.SummarizeDay(label, orders)
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	boxes := []struct{ value, caption string }{
		{fmt.Sprintf("%d", summary.OrderCount), "POROSI"},
		{money.FormatEUR(summary.Revenue), "TË ARDHURA"},
		{money.FormatEUR(summary.COGS), "KOSTO"},
		{money.FormatEUR(summary.Profit), "FITIMI"},
	}
	for i, b := range boxes {
		ln := 0
		if i == len(boxes)-1 {
			ln = 1
		}
		pdf.CellFormat(47.5, 9, tr(b.value), "LTR", ln, "C", true, 0, "")
	}
	pdf.SetFont("Arial", "", 8)
	for i, b := range boxes {
		ln := 0
		if i == len(boxes)-1 {
			ln = 1
		}
		pdf.CellFormat(47.5, 6, tr(b.caption), "LBR", ln, "C", true, 0, "")
	}
	pdf.Ln(5)

	widths := []float64{10, 16, 42, 40, 42, 22, 18}
	headers := []string{"#", "ID", "Klienti", "Automjeti", "Shërbimet", "Totali", "Statusi"}
	pdf.SetFillColor(26, 26, 46)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 8)
	for i, wd := range widths {
		ln := 0
		if i == len(widths)-1 {
			ln = 1
		}
		pdf.CellFormat(wd, 7, tr(headers[i]), "1", ln, "C", true, 0, "")
	}
	pdf.SetTextColor(26, 26, 46)
	pdf.SetFont("Arial", "", 8)
	for _, row := range reportRows(orders) {
		client, car := "", ""
		if row.Order.Client != nil {
			client = row.Order.Client.FullName
		}
		if row.Order.Vehicle != nil {
			car = row.Order.Vehicle.DisplayName() + " " + row.Order.Vehicle.LicensePlate
		}
		status := "Pa paguar"
		if row.Order.IsPaid {
			status = "Paguar"
		}
		pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", row.No), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprintf("#%d", row.Order.ID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(truncate(client, 26)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, tr(truncate(car, 24)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, tr(truncate(row.Services, 26)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[5], 6, tr(money.FormatEUR(row.Total)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[6], 6, status, "1", 1, "C", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(140, 7, "Paguar:", "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, tr(money.FormatEUR(summary.PaidTotal)), "", 1, "R", false, 0, "")
	pdf.CellFormat(140, 7, "Pa paguar:", "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, tr(money.FormatEUR(summary.UnpaidTotal)), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(255, 107, 53)
	pdf.CellFormat(140, 9, tr("TOTALI I DITËS"), "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 9, tr(money.FormatEUR(summary.Revenue)), "T", 1, "R", false, 0, "")

	return pdf.Output(w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
