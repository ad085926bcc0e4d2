package branding

import (
	"context"
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rentfold/rentfold/internal/billing"
	"github.com/rentfold/rentfold/internal/view"
)

// PDFConverter turns rendered HTML into a PDF. Satisfied by report.Client.
type PDFConverter interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Renderer produces landlord-branded invoice documents.
type Renderer struct {
	service   *Service
	engine    *view.Engine
	converter PDFConverter
}

func NewRenderer(service *Service, engine *view.Engine, converter PDFConverter) *Renderer {
	return &Renderer{service: service, engine: engine, converter: converter}
}

type invoiceLineData struct {
	Description string
	Quantity    float64
	UnitAmount  string
	Amount      string
}

type paymentData struct {
	ReceivedAt any
	Method     string
	Amount     string
}

type invoiceDocData struct {
	Invoice     *billing.Invoice
	Lines       []invoiceLineData
	Payments    []paymentData
	Total       string
	Paid        string
	Outstanding string
	DisplayName string
	AccentColor string
	FooterText  string
	LogoURL     string
}

// RenderInvoice builds the invoice HTML and converts it to a PDF.
func (r *Renderer) RenderInvoice(ctx context.Context, inv *billing.Invoice, payments []billing.Payment) ([]byte, error) {
	if r.converter == nil {
		return nil, fmt.Errorf("branding: pdf converter not configured")
	}
	html, err := r.InvoiceHTML(ctx, inv, payments)
	if err != nil {
		return nil, err
	}
	return r.converter.RenderHTML(ctx, html)
}

// InvoiceHTML renders the document body without the PDF conversion step.
func (r *Renderer) InvoiceHTML(ctx context.Context, inv *billing.Invoice, payments []billing.Payment) (string, error) {
	profile, err := r.service.ForLease(ctx, inv.LeaseID)
	if err != nil {
		return "", err
	}

	format := amountFormatter(inv.Currency)
	data := invoiceDocData{
		Invoice:     inv,
		Total:       format(inv.Total),
		Paid:        format(inv.Paid),
		Outstanding: format(inv.Outstanding()),
		DisplayName: profile.DisplayName,
		AccentColor: profile.AccentColor,
		FooterText:  profile.FooterText,
		LogoURL:     profile.LogoURL,
	}
	for _, line := range inv.Lines {
		data.Lines = append(data.Lines, invoiceLineData{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitAmount:  format(line.UnitAmount),
			Amount:      format(line.Amount),
		})
	}
	for _, p := range payments {
		data.Payments = append(data.Payments, paymentData{
			ReceivedAt: p.ReceivedAt,
			Method:     p.Method,
			Amount:     format(p.Amount),
		})
	}
	return r.engine.Render("documents/invoice", data)
}

// amountFormatter localises money with its currency symbol. Unknown ISO codes
// fall back to a plain numeric rendering rather than failing the document.
func amountFormatter(code string) func(float64) string {
	unit, err := currency.ParseISO(code)
	printer := message.NewPrinter(language.English)
	if err != nil {
		return func(v float64) string {
			return printer.Sprintf("%s %.2f", code, v)
		}
	}
	return func(v float64) string {
		return printer.Sprint(currency.NarrowSymbol(unit.Amount(v)))
	}
}
