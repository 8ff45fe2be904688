package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// Line is one rendered bill row.
type Line struct {
	Name            string
	Price           float64
	Discount        float64
	DiscountedPrice float64
	RoundedPrice    int64
}

// Snapshot is the read-only view of a ledger handed to the renderer.
type Snapshot struct {
	SessionID          string
	Lines              []Line
	TotalPrice         float64
	FinalPrice         float64
	DiscountPercentage float64
	GeneratedAt        time.Time
}

const printableTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Bill Details</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; background: #fff; color: #1f2937; margin: 0; padding: 24px; }
  h1 { font-size: 20px; margin: 0 0 4px; }
  .meta { color: #6b7280; font-size: 12px; margin-bottom: 16px; }
  table { width: 100%; border-collapse: collapse; font-size: 14px; }
  th { text-align: left; border-bottom: 2px solid #e5e7eb; padding: 6px 8px; }
  td { border-bottom: 1px solid #f3f4f6; padding: 6px 8px; }
  td.amount, th.amount { text-align: right; white-space: nowrap; }
  tfoot td { border-bottom: none; font-weight: bold; padding-top: 10px; }
</style>
</head>
<body>
<h1>Bill Details</h1>
<div class="meta">Generated {{.GeneratedAt.Format "2006-01-02 15:04"}}</div>
<table>
<thead>
<tr><th>Item</th><th class="amount">Price</th><th class="amount">Discount</th><th class="amount">Final Price</th><th class="amount">Rounded</th></tr>
</thead>
<tbody>
{{range .Lines}}<tr>
<td>{{.Name}}</td>
<td class="amount">{{rupiah .Price}}</td>
<td class="amount">{{rupiah .Discount}}</td>
<td class="amount">{{rupiah .DiscountedPrice}}</td>
<td class="amount">{{rupiah (int64ToFloat .RoundedPrice)}}</td>
</tr>
{{end}}</tbody>
<tfoot>
<tr><td>Total</td><td class="amount">{{rupiah .TotalPrice}}</td><td class="amount">{{percent .DiscountPercentage}}</td><td class="amount" colspan="2">{{rupiah .FinalPrice}}</td></tr>
</tfoot>
</table>
</body>
</html>
`

var printable = template.Must(template.New("printable").Funcs(template.FuncMap{
	"rupiah":       FormatRupiah,
	"percent":      FormatPercent,
	"int64ToFloat": func(v int64) float64 { return float64(v) },
}).Parse(printableTemplate))

// HTML renders the printable bill page for the snapshot.
func HTML(snap Snapshot) ([]byte, error) {
	if snap.GeneratedAt.IsZero() {
		snap.GeneratedAt = time.Now().UTC()
	}
	var buf bytes.Buffer
	if err := printable.Execute(&buf, snap); err != nil {
		return nil, fmt.Errorf("render bill html: %w", err)
	}
	return buf.Bytes(), nil
}
