package forms

import (
	"strings"

	"github.com/ukydev/fleet-console/internal/models"
)

// ClientForm holds the editable fields of a client.
type ClientForm struct {
	CompanyName   string `form:"companyName" validate:"required,min=2"`
	VatNumber     string `form:"vatNumber" validate:"required,len=11,digits"`
	FiscalCode    string `form:"fiscalCode"`
	Address       string `form:"address" validate:"required"`
	City          string `form:"city" validate:"required"`
	Province      string `form:"province" validate:"required,len=2"`
	PostalCode    string `form:"postalCode" validate:"required,len=5,digits"`
	Country       string `form:"country" validate:"required"`
	Phone         string `form:"phone" validate:"required"`
	Email         string `form:"email" validate:"required,email"`
	PEC           string `form:"pec" validate:"omitempty,email"`
	SDICode       string `form:"sdiCode" validate:"max=7"`
	ContactPerson string `form:"contactPerson"`
	Notes         string `form:"notes"`
	IsActive      bool   `form:"isActive"`
}

func NewClientForm() *ClientForm {
	f := &ClientForm{}
	f.Reset()
	return f
}

func (f *ClientForm) Reset() {
	*f = ClientForm{Country: models.DefaultCountry, IsActive: true}
}

func (f *ClientForm) Fill(c *models.Client) {
	f.CompanyName = c.CompanyName
	f.VatNumber = c.VatNumber
	f.FiscalCode = c.FiscalCode
	f.Address = c.Address
	f.City = c.City
	f.Province = c.Province
	f.PostalCode = c.PostalCode
	f.Country = c.Country
	f.Phone = c.Phone
	f.Email = c.Email
	f.PEC = c.PEC
	f.SDICode = c.SDICode
	f.ContactPerson = c.ContactPerson
	f.Notes = c.Notes
	f.IsActive = c.IsActive
}

func (f *ClientForm) Build(prev *models.Client) *models.Client {
	c := &models.Client{}
	if prev != nil {
		*c = *prev
	}
	c.CompanyName = f.CompanyName
	c.VatNumber = f.VatNumber
	c.FiscalCode = f.FiscalCode
	c.Address = f.Address
	c.City = f.City
	c.Province = strings.ToUpper(f.Province)
	c.PostalCode = f.PostalCode
	c.Country = f.Country
	c.Phone = f.Phone
	c.Email = f.Email
	c.PEC = f.PEC
	c.SDICode = strings.ToUpper(f.SDICode)
	c.ContactPerson = f.ContactPerson
	c.Notes = f.Notes
	c.IsActive = f.IsActive
	return c
}
