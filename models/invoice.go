package models

import "time"

// UnpaidInvoice is raised by the billing context for a BillableOrderPlaced
// event.
type UnpaidInvoice struct {
	InvoiceID      string        `json:"invoice_id"`
	OrderID        OrderID       `json:"order_id"`
	BillingAddress Address       `json:"billing_address"`
	AmountDue      BillingAmount `json:"amount_due"`
	IssuedAt       time.Time     `json:"issued_at"`
}

// InvoiceStatus is the lifecycle label published with an invoice.
type InvoiceStatus string

const (
	InvoiceStatusIssued InvoiceStatus = "ISSUED"
	InvoiceStatusVoided InvoiceStatus = "VOIDED"
)
