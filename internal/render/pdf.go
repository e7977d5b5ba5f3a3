package render

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/Dan9191/rental-service/internal/models"
)

var (
	labelStyle  = props.Text{Size: 10, Style: fontstyle.Bold}
	valueStyle  = props.Text{Size: 10}
	amountStyle = props.Text{Size: 10, Align: align.Right}
	headStyle   = props.Text{Size: 10, Style: fontstyle.Bold, Top: 1}
)

// InvoicePDF renders an invoice as an A4 PDF document
func InvoicePDF(inv *models.Invoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Vertical).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithBottomMargin(10).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterFooter(
		row.New(5).Add(col.New(12).Add(line.New())),
		row.New(6).Add(
			text.NewCol(12, "Thank you for your prompt payment.",
				props.Text{Size: 8, Align: align.Center}),
		),
	); err != nil {
		return nil, fmt.Errorf("failed to register footer: %w", err)
	}

	m.AddRow(14,
		text.NewCol(12, "RENT INVOICE", props.Text{
			Top:   3,
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)
	m.AddRow(5, line.NewCol(12))

	addField(m, "Invoice no.", inv.Number)
	addField(m, "Date", inv.IssuedOn)
	addField(m, "Tenant", inv.Name)
	addField(m, "House number", inv.HouseNumber)
	addField(m, "Contact", inv.Contact)

	m.AddRow(6)

	m.AddRow(8,
		text.NewCol(4, "Item", headStyle),
		text.NewCol(5, "Details", headStyle),
		text.NewCol(3, "Amount", props.Text{Size: 10, Style: fontstyle.Bold, Top: 1, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	addItem(m, "Monthly rent", "", inv.Rent)
	addItem(m, "UEDCL electricity",
		fmt.Sprintf("%d units (%d to %d)", inv.UEDCLUnits, inv.Readings.UEDCLPrev, inv.Readings.UEDCLCurr),
		inv.UEDCLCost)
	addItem(m, "NSWC water",
		fmt.Sprintf("%d units (%d to %d)", inv.NSWCUnits, inv.Readings.NSWCPrev, inv.Readings.NSWCCurr),
		inv.NSWCCost)
	addItem(m, "Security fee", "", inv.SecurityFee)
	addItem(m, "Garbage fee", "", inv.GarbageFee)

	m.AddRow(2, line.NewCol(12))
	m.AddRow(10,
		text.NewCol(9, "TOTAL", props.Text{Size: 12, Style: fontstyle.Bold, Top: 2}),
		text.NewCol(3, FormatAmount(inv.Total), props.Text{Size: 12, Style: fontstyle.Bold, Top: 2, Align: align.Right}),
	)
	m.AddRow(10,
		text.NewCol(12, "Amount in words: "+inv.AmountInWords, props.Text{Size: 10, Style: fontstyle.Italic, Top: 2}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addField(m core.Maroto, label, value string) {
	if value == "" {
		value = "-"
	}
	m.AddRow(7,
		col.New(4).Add(text.New(label+":", labelStyle)),
		col.New(8).Add(text.New(value, valueStyle)),
	)
}

func addItem(m core.Maroto, item, details string, amount int64) {
	m.AddRow(7,
		text.NewCol(4, item, valueStyle),
		text.NewCol(5, details, valueStyle),
		text.NewCol(3, FormatAmount(amount), amountStyle),
	)
}
