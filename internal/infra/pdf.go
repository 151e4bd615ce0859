package infra

// pdf.go builds receipt-style tickets for a Sale with go-pdf/fpdf:
// store header, invoice number and timestamp, item table, totals
// and payment line. Output is kept in memory so handlers can stream it
// and the receipt worker can attach it to an e-mail.

import (
	"bytes"
	"fmt"

	"inventrack/internal/model"

	"github.com/go-pdf/fpdf"
)

// ReceiptFileName is the attachment / download name for a sale's receipt.
func ReceiptFileName(sale *model.Sale) string {
	return fmt.Sprintf("receipt_%s.pdf", sale.InvoiceNumber)
}

// GenerateReceiptPDF renders the receipt for sale. Items must have Product preloaded
// for names to appear; otherwise a short product id is printed.
func GenerateReceiptPDF(sale *model.Sale, storeName string) ([]byte, error) {
	// 80mm wide thermal roll; height grows with the number of lines
	height := 90.0 + float64(len(sale.Items))*5
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, storeName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sales receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Invoice "+sale.InvoiceNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, sale.CreatedAt.Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	if sale.Customer != nil {
		pdf.CellFormat(contentW, 4, "Customer: "+sale.Customer.Name, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.46
	col2 := contentW * 0.14
	col3 := contentW * 0.12
	col4 := contentW * 0.28

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Disc%", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col4, 5, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range sale.Items {
		name := item.ProductID.String()[:8]
		if item.Product != nil {
			name = item.Product.Name
		}
		if len(name) > 24 {
			name = name[:23] + "."
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("%d x %s", item.Quantity, item.UnitPrice.StringFixed(2)), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, item.DiscountPct.StringFixed(0), "", 0, "C", false, 0, "")
		pdf.CellFormat(col4, 5, item.Total.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	labelW := col1 + col2 + col3
	line := func(label, value string) {
		pdf.CellFormat(labelW, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 5, value, "", 1, "R", false, 0, "")
	}
	line("Subtotal:", sale.Subtotal.StringFixed(2))
	if !sale.Discount.IsZero() {
		line("Discount:", "-"+sale.Discount.StringFixed(2))
	}
	if !sale.Tax.IsZero() {
		line(fmt.Sprintf("Tax (%s%%):", sale.TaxRate.StringFixed(2)), sale.Tax.StringFixed(2))
	}
	pdf.SetFont("Helvetica", "B", 9)
	line("TOTAL:", sale.Total.StringFixed(2))

	pdf.SetFont("Helvetica", "", 7)
	line("Paid ("+sale.PaymentMethod+"):", sale.PaidAmount.StringFixed(2))
	line("Change:", sale.ChangeDue().StringFixed(2))

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
