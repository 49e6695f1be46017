package models

// DefaultCountry is used for clients and addresses entered without one.
const DefaultCountry = "Italia"

// Client represents a customer company.
type Client struct {
	Base          `bson:",inline"`
	CompanyName   string `json:"companyName" bson:"companyName"`
	VatNumber     string `json:"vatNumber" bson:"vatNumber"`
	FiscalCode    string `json:"fiscalCode,omitempty" bson:"fiscalCode,omitempty"`
	Address       string `json:"address" bson:"address"`
	City          string `json:"city" bson:"city"`
	Province      string `json:"province" bson:"province"`
	PostalCode    string `json:"postalCode" bson:"postalCode"`
	Country       string `json:"country" bson:"country"`
	Phone         string `json:"phone" bson:"phone"`
	Email         string `json:"email" bson:"email"`
	PEC           string `json:"pec,omitempty" bson:"pec,omitempty"`
	SDICode       string `json:"sdiCode,omitempty" bson:"sdiCode,omitempty"`
	ContactPerson string `json:"contactPerson,omitempty" bson:"contactPerson,omitempty"`
	Notes         string `json:"notes,omitempty" bson:"notes,omitempty"`
	IsActive      bool   `json:"isActive" bson:"isActive"`
}

// Validate implements Entity.
func (c *Client) Validate() error {
	return c.Base.Validate()
}

// ApplyDefaults implements Defaulter.
func (c *Client) ApplyDefaults() {
	if c.Country == "" {
		c.Country = DefaultCountry
	}
}

// ActiveLabel is the Italian label for the active flag.
func (c *Client) ActiveLabel() string {
	if c.IsActive {
		return "Attivo"
	}
	return "Inattivo"
}
