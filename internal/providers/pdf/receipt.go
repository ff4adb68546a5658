package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func NewPDFProvider() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error) {
	cfg := config.NewBuilder().Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(12, data.StoreName, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)
	if data.StoreAddress != "" {
		m.AddRow(8,
			text.NewCol(12, data.StoreAddress, props.Text{Size: 9, Align: align.Center}),
		)
	}

	m.AddRow(16,
		col.New(6).Add(
			text.New("Bill: "+data.BillNumber, props.Text{Top: 0, Size: 9}),
			text.New("Date: "+data.Date, props.Text{Top: 5, Size: 9}),
		),
		col.New(6).Add(
			text.New("Payment: "+data.Payment, props.Text{Top: 0, Size: 9, Align: align.Right}),
			text.New(customerLine(data.CustomerName), props.Text{Top: 5, Size: 9, Align: align.Right}),
		),
	)

	m.AddRow(8,
		text.NewCol(5, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "GST", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range data.Items {
		m.AddRow(8,
			text.NewCol(5, item.Name, props.Text{Size: 9}),
			text.NewCol(1, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.GSTRate, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Size: 9}),
		text.NewCol(2, data.Subtotal, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "GST", props.Text{Size: 9}),
		text.NewCol(2, data.TaxTotal, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(2, data.GrandTotal, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
	)

	if data.FooterNote != "" {
		m.AddRow(12,
			text.NewCol(12, data.FooterNote, props.Text{Size: 9, Align: align.Center, Top: 4}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

func customerLine(name string) string {
	if name == "" {
		return "Customer: walk-in"
	}
	return "Customer: " + name
}
