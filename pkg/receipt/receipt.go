// Package receipt renders booking confirmations as PDF documents.
package receipt

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/angelmondragon/wanderlust-backend/pkg/money"
)

// Data is everything printed on a receipt.
type Data struct {
	CompanyName     string
	SupportEmail    string
	BookingID       string
	PaymentIntentID string
	ItemType        string
	ItemName        string
	Location        string
	Travelers       int
	Dates           string
	AmountCents     int64
	Status          string
	IssuedAt        time.Time
}

// Filename returns the download name for a booking's receipt.
func Filename(bookingID string) string {
	if bookingID == "" {
		return "receipt.pdf"
	}
	return fmt.Sprintf("receipt_%s.pdf", bookingID)
}

// Render writes a single-page A4 receipt to w.
func Render(w io.Writer, data Data) error {
	if w == nil {
		return errors.New("receipt writer is required")
	}
	if data.BookingID == "" && data.PaymentIntentID == "" {
		return errors.New("receipt needs a booking or payment reference")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Booking receipt", true)
	pdf.SetCreator(data.CompanyName, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(190, 10, tr(data.CompanyName))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(90, 90, 90)
	pdf.Cell(190, 6, "Booking confirmation")
	pdf.Ln(12)
	pdf.SetTextColor(0, 0, 0)

	rows := [][2]string{
		{"Confirmation number", data.BookingID},
		{"Payment reference", data.PaymentIntentID},
		{"Issued", data.IssuedAt.UTC().Format("2006-01-02 15:04 MST")},
		{"Item", describeItem(data)},
		{"Location", data.Location},
		{"Travelers", fmt.Sprintf("%d", data.Travelers)},
		{"Travel dates", data.Dates},
		{"Status", data.Status},
	}
	for _, row := range rows {
		if strings.TrimSpace(row[1]) == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(55, 8, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(135, 8, tr(row[1]), "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(55, 10, "Amount charged", "", 0, "L", false, 0, "")
	pdf.CellFormat(135, 10, money.FormatDisplay(data.AmountCents), "", 1, "L", false, 0, "")

	if data.SupportEmail != "" {
		pdf.Ln(10)
		pdf.SetFont("Arial", "I", 9)
		pdf.SetTextColor(90, 90, 90)
		pdf.Cell(190, 6, tr("Questions about this booking? Contact "+data.SupportEmail))
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}
	return pdf.Output(w)
}

func describeItem(data Data) string {
	switch {
	case data.ItemName != "" && data.ItemType != "":
		return fmt.Sprintf("%s (%s)", data.ItemName, data.ItemType)
	case data.ItemName != "":
		return data.ItemName
	default:
		return data.ItemType
	}
}
