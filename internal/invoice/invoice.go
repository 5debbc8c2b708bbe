// Package invoice renders a single bill as a printable HTML page.
package invoice

import (
	"fmt"
	"html/template"
	"io"

	"github.com/shopspring/decimal"

	"github.com/spsworld03/sps-bill-brew/internal/domain"
)

// Shop is the letterhead printed at the top of every invoice.
type Shop struct {
	Name         string
	AddressLines []string
	Phone        string
	Footer       string
}

var DefaultShop = Shop{
	Name: "SPS SPORTS WEAR",
	AddressLines: []string{
		"Near HP Petrol Bunk (Erode Main Road)",
		"Nathakadaiyur, Kangayam (Po)",
		"Tiruppur (Dt) - 638108",
	},
	Phone:  "9698786494",
	Footer: "Thank you for shopping with SPS_WORLD",
}

type line struct {
	Description string
	Quantity    int
	UnitPrice   string
	Total       string
}

type view struct {
	Shop     Shop
	Bill     domain.BillRecord
	Lines    []line
	Subtotal string
	Shipping string
	Discount string
	Total    string
}

var page = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Bill {{.Bill.BillNumber}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 24px; color: #000; }
h1 { color: #ff6b35; margin: 0; }
header { border-bottom: 2px solid #ff6b35; padding-bottom: 8px; margin-bottom: 16px; }
.meta { display: flex; justify-content: space-between; font-weight: bold; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th { background: #ff6b35; color: #fff; text-align: left; padding: 6px; }
td { padding: 6px; border-bottom: 1px solid #eee; }
td.num, th.num { text-align: right; }
.summary { width: 40%; margin-left: auto; margin-top: 16px; }
.summary .total { color: #ff6b35; font-weight: bold; font-size: 1.2em; border-top: 1px solid #000; }
footer { text-align: center; font-style: italic; margin-top: 48px; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<header>
<h1>{{.Shop.Name}}</h1>
{{range .Shop.AddressLines}}<div>{{.}}</div>
{{end}}<div>Phone: {{.Shop.Phone}}</div>
</header>
<section class="meta">
<div>
<div>Bill No: {{.Bill.BillNumber}}</div>
<div>Date: {{.Bill.Date}}</div>
<div>Payment: {{.Bill.PaymentMode}}</div>
</div>
<div>
<div>Customer: {{.Bill.CustomerName}}</div>
{{if .Bill.CustomerPhone}}<div>Phone: {{.Bill.CustomerPhone}}</div>{{end}}
</div>
</section>
<table>
<thead><tr><th>Description</th><th class="num">Quantity</th><th class="num">Unit Price</th><th class="num">Total</th></tr></thead>
<tbody>
{{range .Lines}}<tr><td>{{.Description}}</td><td class="num">{{.Quantity}}</td><td class="num">&#8377;{{.UnitPrice}}</td><td class="num">&#8377;{{.Total}}</td></tr>
{{end}}</tbody>
</table>
<table class="summary">
<tr><td>Subtotal:</td><td class="num">&#8377;{{.Subtotal}}</td></tr>
<tr><td>Shipping Charge:</td><td class="num">&#8377;{{.Shipping}}</td></tr>
<tr><td>Discount:</td><td class="num">-&#8377;{{.Discount}}</td></tr>
<tr class="total"><td>Total Payable:</td><td class="num">&#8377;{{.Total}}</td></tr>
</table>
<footer>{{.Shop.Footer}}</footer>
</body>
</html>
`))

// Render writes the invoice for bill. Shipping is not stored on the record,
// so it is recovered as total - subtotal + discount.
func Render(w io.Writer, shop Shop, bill domain.BillRecord) error {
	lines := make([]line, 0, len(bill.LineItems))
	for _, item := range bill.LineItems {
		lines = append(lines, line{
			Description: item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Total:       item.Total().StringFixed(2),
		})
	}

	shipping := bill.Total.Sub(bill.Subtotal).Add(bill.Discount)
	if shipping.IsNegative() {
		shipping = decimal.Zero
	}

	err := page.Execute(w, view{
		Shop:     shop,
		Bill:     bill,
		Lines:    lines,
		Subtotal: bill.Subtotal.StringFixed(2),
		Shipping: shipping.StringFixed(2),
		Discount: bill.Discount.StringFixed(2),
		Total:    bill.Total.StringFixed(2),
	})
	if err != nil {
		return fmt.Errorf("render invoice %s: %w", bill.BillNumber, err)
	}
	return nil
}
