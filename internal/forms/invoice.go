package forms

import (
	"time"

	"github.com/ukydev/fleet-console/internal/models"
)

// InvoiceItemForm is one editable invoice line.
type InvoiceItemForm struct {
	Description string  `form:"description" validate:"required"`
	Quantity    float64 `form:"quantity" validate:"gt=0"`
	UnitPrice   float64 `form:"unitPrice" validate:"min=0"`
	TripID      string  `form:"tripId"`
}

// InvoiceForm holds the editable fields of an invoice. Line totals,
// subtotal, VAT and total are derived.
type InvoiceForm struct {
	InvoiceNumber string               `form:"invoiceNumber" validate:"required"`
	ClientID      string               `form:"clientId" validate:"required"`
	IssueDate     time.Time            `form:"issueDate" validate:"required"`
	DueDate       time.Time            `form:"dueDate" validate:"required,gtefield=IssueDate"`
	Status        models.InvoiceStatus `form:"status" validate:"oneof=draft sent paid overdue cancelled"`
	Items         []InvoiceItemForm    `form:"items" validate:"min=1,dive"`
	VatRate       float64              `form:"vatRate" validate:"min=0,max=100"`
	Notes         string               `form:"notes"`
	PaidDate      *time.Time           `form:"paidDate"`

	now func() time.Time
}

func NewInvoiceForm(now func() time.Time) *InvoiceForm {
	if now == nil {
		now = time.Now
	}
	f := &InvoiceForm{now: now}
	f.Reset()
	return f
}

func (f *InvoiceForm) Reset() {
	issued := today(f.now)
	*f = InvoiceForm{
		IssueDate: issued,
		DueDate:   issued.AddDate(0, 0, 30),
		Status:    models.InvoiceDraft,
		VatRate:   models.DefaultVatRate,
		now:       f.now,
	}
}

// AddTrip appends a line billing a trip at its price.
func (f *InvoiceForm) AddTrip(t *models.Trip) {
	f.Items = append(f.Items, InvoiceItemForm{
		Description: "Viaggio " + t.TripNumber + " " + t.Route(),
		Quantity:    1,
		UnitPrice:   t.Price,
		TripID:      t.ID,
	})
}

func (f *InvoiceForm) Fill(i *models.Invoice) {
	f.InvoiceNumber = i.InvoiceNumber
	f.ClientID = i.ClientID
	f.IssueDate = i.IssueDate
	f.DueDate = i.DueDate
	f.Status = i.Status
	f.VatRate = i.VatRate
	f.Notes = i.Notes
	f.PaidDate = i.PaidDate
	f.Items = make([]InvoiceItemForm, 0, len(i.Items))
	for _, it := range i.Items {
		f.Items = append(f.Items, InvoiceItemForm{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TripID:      it.TripID,
		})
	}
}

func (f *InvoiceForm) Build(prev *models.Invoice) *models.Invoice {
	i := &models.Invoice{}
	if prev != nil {
		*i = *prev
	}
	i.InvoiceNumber = f.InvoiceNumber
	i.ClientID = f.ClientID
	i.IssueDate = f.IssueDate
	i.DueDate = f.DueDate
	i.Status = f.Status
	i.VatRate = f.VatRate
	i.Notes = f.Notes
	i.PaidDate = f.PaidDate
	i.Items = make([]models.InvoiceItem, 0, len(f.Items))
	for _, it := range f.Items {
		i.Items = append(i.Items, models.InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TripID:      it.TripID,
		})
	}
	i.Recalculate()
	return i
}

// Total previews the invoice total for the current lines.
func (f *InvoiceForm) Total() float64 {
	return f.Build(nil).Total
}
