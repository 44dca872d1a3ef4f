package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/challanai/invoice-chat-service/internal/models"
)

var columns = []struct {
	title string
	width float64
	align string
}{
	{"#", 8, "C"},
	{"Product", 62, "L"},
	{"Qty", 14, "R"},
	{"Rate", 24, "R"},
	{"CGST", 24, "R"},
	{"SGST", 24, "R"},
	{"Amount", 34, "R"},
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// InvoicePDF renders inv as a one-page A4 challan
func InvoicePDF(inv *models.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(inv.InvoiceName, true)
	pdf.SetAuthor(inv.BillerDetails.BusinessName, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Biller
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 8, tr(inv.BillerDetails.BusinessName), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{
		inv.BillerDetails.Address,
		inv.BillerDetails.Phone,
		inv.BillerDetails.Email,
	} {
		if line != "" {
			pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)

	// Header
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(95, 7, "Invoice "+inv.InvoiceName, "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, "Date: "+inv.IssueDate.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr("Bill to: "+inv.CustomerName+" ("+inv.CustomerPhone+")"), "", 1, "L", false, 0, "")
	if inv.BusinessName != "" {
		pdf.CellFormat(0, 6, tr("Store: "+inv.BusinessName), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// Entries
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for i, e := range inv.Entries {
		cells := []string{
			fmt.Sprint(i + 1),
			tr(e.ProductName),
			fmt.Sprint(e.ProductQuantity),
			money(e.ProductCost),
			fmt.Sprintf("%s (%s%%)", money(e.Tax.CGST.Amount), e.Tax.CGST.Rate.String()),
			fmt.Sprintf("%s (%s%%)", money(e.Tax.SGST.Amount), e.Tax.SGST.Rate.String()),
			money(e.LineTotal()),
		}
		for j, c := range columns {
			pdf.CellFormat(c.width, 7, cells[j], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)

	// Totals
	labelWidth, valueWidth := 156.0, 34.0
	totals := []struct {
		label string
		value string
	}{
		{"Total", money(inv.TotalCost)},
		{fmt.Sprintf("Discount (%s%%)", inv.Discount.Rate.String()), "-" + money(inv.Discount.Amount)},
		{"Amount payable", money(inv.TotalAmountPayable)},
	}
	for i, t := range totals {
		if i == len(totals)-1 {
			pdf.SetFont("Arial", "B", 11)
		}
		pdf.CellFormat(labelWidth, 7, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(valueWidth, 7, t.value, "", 1, "R", false, 0, "")
	}

	if owner := inv.BillerDetails.OwnerName; owner != "" {
		pdf.Ln(12)
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr("For "+inv.BillerDetails.BusinessName+" - "+owner), "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
