// Package letter renders the order acknowledgment sent to customers.
package letter

import (
	"bytes"
	"html/template"
	"strings"

	"order-taking-system/models"
)

const defaultTemplate = `<html>
<body>
<p>Dear {{.FirstName}} {{.LastName}},</p>
<p>Thank you for your order {{.OrderID}}.</p>
<table>
<tr><th>Line</th><th>Product</th><th>Quantity</th><th>Price</th></tr>
{{- range .Lines}}
<tr><td>{{.OrderLineID}}</td><td>{{.ProductCode}}</td><td>{{.Quantity}}</td><td>{{.LinePrice}}</td></tr>
{{- end}}
</table>
<p>Amount to bill: {{.AmountToBill}}</p>
<p>Shipping to:<br>{{range .ShippingLines}}{{.}}<br>{{end}}</p>
<p>{{.Signature}}</p>
</body>
</html>`

type letterLine struct {
	OrderLineID string
	ProductCode string
	Quantity    string
	LinePrice   string
}

type letterData struct {
	FirstName     string
	LastName      string
	OrderID       string
	Lines         []letterLine
	AmountToBill  string
	ShippingLines []string
	Signature     string
}

// Renderer renders acknowledgment letters from a template.
type Renderer struct {
	tmpl      *template.Template
	signature string
}

// NewRenderer returns a Renderer using the built-in template.
func NewRenderer(signature string) *Renderer {
	return &Renderer{
		tmpl:      template.Must(template.New("acknowledgment").Parse(defaultTemplate)),
		signature: signature,
	}
}

// NewRendererFromTemplate parses a custom letter template.
func NewRendererFromTemplate(text, signature string) (*Renderer, error) {
	tmpl, err := template.New("acknowledgment").Parse(text)
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl, signature: signature}, nil
}

// CreateLetter renders the letter for order. A template failure falls back
// to a plain escaped message so the acknowledgment can still be sent.
func (r *Renderer) CreateLetter(order models.PricedOrder) models.HTMLString {
	data := letterData{
		FirstName:    order.CustomerInfo.Name.FirstName.String(),
		LastName:     order.CustomerInfo.Name.LastName.String(),
		OrderID:      order.OrderID.String(),
		AmountToBill: order.AmountToBill.Value().StringFixed(2),
		Signature:    r.signature,
	}
	for _, line := range order.Lines {
		data.Lines = append(data.Lines, letterLine{
			OrderLineID: line.OrderLineID.String(),
			ProductCode: line.ProductCode.String(),
			Quantity:    line.Quantity.String(),
			LinePrice:   line.LinePrice.Value().StringFixed(2),
		})
	}
	for _, l := range order.ShippingAddress.Lines() {
		data.ShippingLines = append(data.ShippingLines, l.String())
	}
	data.ShippingLines = append(data.ShippingLines,
		strings.TrimSpace(order.ShippingAddress.City.String()+" "+order.ShippingAddress.ZipCode.String()))

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return Fallback(order)
	}
	return models.HTMLString(buf.String())
}

// Fallback is the plain letter used when the template cannot be rendered.
func Fallback(order models.PricedOrder) models.HTMLString {
	return models.HTMLString("<p>Thank you for your order " + template.HTMLEscapeString(order.OrderID.String()) + ".</p>")
}
