package pdfgen

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"app/internal/domain/model"
)

// PDF化するドキュメントのデータ。usecase側で組み立てて渡す。
type InvoiceDocument struct {
	Invoice      model.Invoice
	Order        model.Order
	Items        []model.OrderItem
	Currency     string
	SupportEmail string
}

type QuoteDocument struct {
	Quote    model.Quote
	Items    []model.QuoteItem
	Currency string
}

type WarrantyDocument struct {
	Warranty model.Warranty
}

// Renderer はfpdfでA4縦のPDFを組み立ててバイト列で返す。
type Renderer struct {
	companyName string
}

func NewRenderer(companyName string) *Renderer {
	return &Renderer{companyName: companyName}
}

func (r *Renderer) Invoice(doc InvoiceDocument) ([]byte, error) {
	pdf := r.newPage(fmt.Sprintf("Invoice %s", doc.Invoice.Number))

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Order: %s", doc.Order.Reference), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Issued: %s", doc.Invoice.IssuedAt.Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Bill to: %s <%s>", doc.Order.CustomerName, doc.Order.CustomerEmail), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	//明細テーブル
	r.tableHeader(pdf, []string{"Item", "Qty", "Unit", "Amount"}, []float64{90, 20, 35, 35})
	for _, it := range doc.Items {
		r.tableRow(pdf, []string{
			it.ProductNameSnapshot,
			fmt.Sprintf("%d", it.Quantity),
			money(doc.Currency, it.UnitPriceSnapshot),
			money(doc.Currency, it.UnitPriceSnapshot*it.Quantity),
		}, []float64{90, 20, 35, 35})
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Subtotal: %s", money(doc.Currency, doc.Invoice.Subtotal)), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Tax: %s", money(doc.Currency, doc.Invoice.Tax)), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Total: %s", money(doc.Currency, doc.Invoice.Total)), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Payment status: %s", doc.Invoice.PaymentStatus), "", 1, "R", false, 0, "")

	if doc.SupportEmail != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Questions? %s", doc.SupportEmail), "", 1, "L", false, 0, "")
	}

	return output(pdf)
}

func (r *Renderer) Quote(doc QuoteDocument) ([]byte, error) {
	pdf := r.newPage(fmt.Sprintf("Quotation %s", doc.Quote.Reference))

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Prepared for: %s <%s>", doc.Quote.CustomerName, doc.Quote.CustomerEmail), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Valid until: %s", doc.Quote.ValidUntil.Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	r.tableHeader(pdf, []string{"Description", "Qty", "Unit", "Amount"}, []float64{90, 20, 35, 35})
	for _, it := range doc.Items {
		r.tableRow(pdf, []string{
			it.Description,
			fmt.Sprintf("%d", it.Quantity),
			money(doc.Currency, it.UnitPrice),
			money(doc.Currency, it.UnitPrice*it.Quantity),
		}, []float64{90, 20, 35, 35})
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Subtotal: %s", money(doc.Currency, doc.Quote.Subtotal)), "", 1, "R", false, 0, "")
	if doc.Quote.Discount > 0 {
		pdf.CellFormat(0, 6, fmt.Sprintf("Discount: -%s", money(doc.Currency, doc.Quote.Discount)), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Total: %s", money(doc.Currency, doc.Quote.Total)), "", 1, "R", false, 0, "")

	return output(pdf)
}

func (r *Renderer) WarrantyCertificate(doc WarrantyDocument) ([]byte, error) {
	pdf := r.newPage("Warranty Certificate")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Certificate: %s", doc.Warranty.Reference), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Product: %s", doc.Warranty.ProductNameSnapshot), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Holder: %s", doc.Warranty.CustomerEmail), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Coverage: %s - %s",
		doc.Warranty.StartDate.Format("2006-01-02"),
		doc.Warranty.EndDate.Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Status: %s", doc.Warranty.Status), "", 1, "L", false, 0, "")

	return output(pdf)
}

func (r *Renderer) newPage(title string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, r.companyName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", time.Now().Format(time.RFC3339)), "", 1, "L", false, 0, "")
	pdf.Ln(3)
	return pdf
}

func (r *Renderer) tableHeader(pdf *fpdf.Fpdf, cols []string, widths []float64) {
	pdf.SetFont("Helvetica", "B", 10)
	for i, c := range cols {
		pdf.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
}

func (r *Renderer) tableRow(pdf *fpdf.Fpdf, cols []string, widths []float64) {
	for i, c := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, c, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

// 最小通貨単位 → "1,234.56" 形式
func money(currency string, minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, currency, minor/100, minor%100)
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
