package models

// Resource describes how an entity is exposed over REST and how the
// console reports failures for it.
type Resource struct {
	Name      string // singular, used in logs and events
	Path      string // REST collection path, without slashes
	IDPrefix  string
	Label     string // Italian singular noun shown in titles
	Feminine  bool
	LoadError string
	NotFound  string
}

var (
	VehicleResource = Resource{
		Name:      "vehicle",
		Path:      "vehicles",
		IDPrefix:  "v",
		Label:     "Veicolo",
		LoadError: "Errore nel caricamento dei veicoli",
		NotFound:  "Veicolo non trovato",
	}
	DriverResource = Resource{
		Name:      "driver",
		Path:      "drivers",
		IDPrefix:  "d",
		Label:     "Autista",
		LoadError: "Errore nel caricamento degli autisti",
		NotFound:  "Autista non trovato",
	}
	TripResource = Resource{
		Name:      "trip",
		Path:      "trips",
		IDPrefix:  "t",
		Label:     "Viaggio",
		LoadError: "Errore nel caricamento dei viaggi",
		NotFound:  "Viaggio non trovato",
	}
	ClientResource = Resource{
		Name:      "client",
		Path:      "clients",
		IDPrefix:  "c",
		Label:     "Cliente",
		LoadError: "Errore nel caricamento dei clienti",
		NotFound:  "Cliente non trovato",
	}
	InvoiceResource = Resource{
		Name:      "invoice",
		Path:      "invoices",
		IDPrefix:  "inv",
		Label:     "Fattura",
		Feminine:  true,
		LoadError: "Errore nel caricamento delle fatture",
		NotFound:  "Fattura non trovata",
	}
	MaintenanceResource = Resource{
		Name:      "maintenance",
		Path:      "maintenance",
		IDPrefix:  "m",
		Label:     "Manutenzione",
		Feminine:  true,
		LoadError: "Errore nel caricamento delle manutenzioni",
		NotFound:  "Manutenzione non trovata",
	}
	FuelResource = Resource{
		Name:      "fuel",
		Path:      "fuel",
		IDPrefix:  "f",
		Label:     "Rifornimento",
		LoadError: "Errore nel caricamento dei rifornimenti",
		NotFound:  "Rifornimento non trovato",
	}
)

// Resources lists every resource in navigation order.
var Resources = []Resource{
	TripResource, VehicleResource, DriverResource, ClientResource,
	InvoiceResource, MaintenanceResource, FuelResource,
}

// ListRoute is the console route of the resource's list view.
func (r Resource) ListRoute() string {
	return "/" + r.Path
}

// DetailRoute is the console route of a single entity.
func (r Resource) DetailRoute(id string) string {
	return "/" + r.Path + "/" + id
}

// NewTitle is the heading of the create form, e.g. "Nuova Fattura".
func (r Resource) NewTitle() string {
	if r.Feminine {
		return "Nuova " + r.Label
	}
	return "Nuovo " + r.Label
}

// EditTitle is the heading of the edit form.
func (r Resource) EditTitle() string {
	return "Modifica " + r.Label
}
