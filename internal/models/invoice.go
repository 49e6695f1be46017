package models

import (
	"math"
	"time"
)

// InvoiceStatus is the billing state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

var InvoiceStatuses = []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue, InvoiceCancelled}

var invoiceStatusLabels = map[InvoiceStatus]string{
	InvoiceDraft:     "Bozza",
	InvoiceSent:      "Inviata",
	InvoicePaid:      "Pagata",
	InvoiceOverdue:   "Scaduta",
	InvoiceCancelled: "Annullata",
}

func (s InvoiceStatus) IsValid() bool {
	_, ok := invoiceStatusLabels[s]
	return ok
}

func (s InvoiceStatus) Label() string {
	return invoiceStatusLabels[s]
}

// DefaultVatRate is the Italian standard VAT rate, in percent.
const DefaultVatRate = 22

// InvoiceItem is a single billed line, optionally tied to a trip.
type InvoiceItem struct {
	Description string  `json:"description" bson:"description"`
	Quantity    float64 `json:"quantity" bson:"quantity"`
	UnitPrice   float64 `json:"unitPrice" bson:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice" bson:"totalPrice"`
	TripID      string  `json:"tripId,omitempty" bson:"tripId,omitempty"`
}

// Invoice represents a bill issued to a client.
type Invoice struct {
	Base          `bson:",inline"`
	InvoiceNumber string        `json:"invoiceNumber" bson:"invoiceNumber"`
	ClientID      string        `json:"clientId" bson:"clientId"`
	IssueDate     time.Time     `json:"issueDate" bson:"issueDate"`
	DueDate       time.Time     `json:"dueDate" bson:"dueDate"`
	Status        InvoiceStatus `json:"status" bson:"status"`
	Items         []InvoiceItem `json:"items" bson:"items"`
	Subtotal      float64       `json:"subtotal" bson:"subtotal"`
	VatRate       float64       `json:"vatRate" bson:"vatRate"` // percent
	VatAmount     float64       `json:"vatAmount" bson:"vatAmount"`
	Total         float64       `json:"total" bson:"total"`
	Notes         string        `json:"notes,omitempty" bson:"notes,omitempty"`
	PaidDate      *time.Time    `json:"paidDate,omitempty" bson:"paidDate,omitempty"`
}

// Validate implements Entity.
func (i *Invoice) Validate() error {
	if err := i.Base.Validate(); err != nil {
		return err
	}
	if !i.Status.IsValid() {
		return enumError("status", i.Status)
	}
	if i.VatRate < 0 {
		return &ValidationError{Field: "vatRate", Reason: "must not be negative"}
	}
	return nil
}

// ApplyDefaults implements Defaulter.
func (i *Invoice) ApplyDefaults() {
	if i.Status == "" {
		i.Status = InvoiceDraft
	}
}

// Recalculate derives line totals, subtotal, VAT and total from the items.
func (i *Invoice) Recalculate() {
	var subtotal float64
	for n := range i.Items {
		item := &i.Items[n]
		item.TotalPrice = Round2(item.Quantity * item.UnitPrice)
		subtotal += item.TotalPrice
	}
	i.Subtotal = Round2(subtotal)
	i.VatAmount = Round2(i.Subtotal * i.VatRate / 100)
	i.Total = Round2(i.Subtotal + i.VatAmount)
}

// IsOverdue reports whether an unpaid invoice is past its due date.
func (i *Invoice) IsOverdue(now time.Time) bool {
	switch i.Status {
	case InvoicePaid, InvoiceCancelled, InvoiceDraft:
		return false
	}
	return DaysUntil(i.DueDate, now) < 0
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
