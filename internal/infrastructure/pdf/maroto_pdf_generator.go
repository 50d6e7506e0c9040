// Package pdf genera el PDF de las facturas con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor + ICE        │  N° Facture + Date            │
//	│  CLIENT: nombre                                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Qté | Désignation | P.U. HT | TVA | Total HT         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Total HT / TVA / Total TTC                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbilling "github.com/jhoicas/facturati-api/internal/application/billing"
	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/domain/inventory"
	appconfig "github.com/jhoicas/facturati-api/pkg/config"
)

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 98, Blue: 65}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	issuer appconfig.IssuerConfig
}

// NewMarotoPDFGenerator construye el generador con los datos del emisor.
func NewMarotoPDFGenerator(issuer appconfig.IssuerConfig) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{issuer: issuer}
}

// GenerateInvoicePDF genera el PDF y devuelve sus bytes. Maroto pagina solo.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(
	_ context.Context,
	invoice *entity.Invoice,
	lines []appbilling.InvoiceLineForPDF,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Facture "+invoice.Number, true).
		WithAuthor(g.issuer.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(invoice))
	m.AddRows(clientRow(invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableLineRows(lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(invoice))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *MarotoPDFGenerator) headerRow(invoice *entity.Invoice) core.Row {
	contact := strings.TrimSpace(strings.Join(nonEmptyParts(g.issuer.Address, g.issuer.Phone), "  |  "))
	ice := ""
	if g.issuer.ICE != "" {
		ice = "ICE: " + g.issuer.ICE
	}
	return row.New(20).Add(
		col.New(7).Add(
			text.New(g.issuer.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(ice, props.Text{Size: 8, Top: 9, Color: colorGray}),
			text.New(contact, props.Text{Size: 8, Top: 14, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("FACTURE", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(invoice.Number, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Date : "+invoice.Date.Format("02/01/2006"), props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorGray}),
		),
	)
}

func clientRow(invoice *entity.Invoice) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("CLIENT", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(invoice.ClientName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qté", 2, align.Center),
		h("Désignation", 4, align.Left),
		h("P.U. HT", 2, align.Right),
		h("TVA", 1, align.Center),
		h("Total HT", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableLineRows(lines []appbilling.InvoiceLineForPDF) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(inventory.FormatQuantity(l.Quantity, l.Unit)+" "+l.Unit,
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(l.ProductName,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatMAD(l.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(l.TaxRate.StringFixed(0)+"%",
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New(formatMAD(l.Subtotal),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalsRow(invoice *entity.Invoice) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Total HT :", 1),
			label("TVA :", 7),
			label("Total TTC :", 13),
		),
		col.New(3).Add(
			value(formatMAD(invoice.NetTotal), 1),
			value(formatMAD(invoice.TaxTotal), 7),
			value(formatMAD(invoice.GrandTotal), 13),
		),
	)
}

// formatMAD formatea un importe en dirhams: espacio como separador de miles y coma decimal.
// Ej: 1234567.5 → "1 234 567,50 MAD"
func formatMAD(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "," + frac + " MAD"
	if neg {
		out = "-" + out
	}
	return out
}

func nonEmptyParts(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
