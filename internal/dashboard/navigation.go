package dashboard

import (
	"time"

	"github.com/ukydev/fleet-console/internal/models"
	"github.com/ukydev/fleet-console/internal/store"
)

type BadgeColor string

const (
	BadgeAccent BadgeColor = "accent"
	BadgeGreen  BadgeColor = "green"
	BadgeRed    BadgeColor = "red"
)

// NavItem is a sidebar link. A zero Badge is not shown.
type NavItem struct {
	Label      string     `json:"label"`
	Icon       string     `json:"icon"`
	Route      string     `json:"route"`
	Badge      int        `json:"badge,omitempty"`
	BadgeColor BadgeColor `json:"badgeColor,omitempty"`
}

type NavSection struct {
	Title string    `json:"title"`
	Items []NavItem `json:"items"`
}

// Navigation builds the sidebar with live counters: vehicles on the road,
// trips not yet completed and overdue invoices.
func Navigation(s store.Snapshot, now time.Time) []NavSection {
	inTransit := store.CountWhere(s.Vehicles, func(v *models.Vehicle) bool {
		return v.Status == models.VehicleInTransit
	})
	activeTrips := store.CountWhere(s.Trips, func(t *models.Trip) bool {
		return t.Status == models.TripPlanned || t.Status == models.TripInProgress
	})
	overdue := store.CountWhere(s.Invoices, func(i *models.Invoice) bool {
		return i.Status == models.InvoiceOverdue || i.IsOverdue(now)
	})

	return []NavSection{
		{Title: "Principale", Items: []NavItem{
			{Label: "Dashboard", Icon: "dashboard", Route: "/dashboard"},
			badged(NavItem{Label: "Mappa Live", Icon: "map", Route: "/live-map"}, inTransit, BadgeGreen),
		}},
		{Title: "Operazioni", Items: []NavItem{
			badged(NavItem{Label: "Viaggi", Icon: "route", Route: models.TripResource.ListRoute()}, activeTrips, BadgeAccent),
			{Label: "Veicoli", Icon: "local_shipping", Route: models.VehicleResource.ListRoute()},
			{Label: "Autisti", Icon: "badge", Route: models.DriverResource.ListRoute()},
			{Label: "Clienti", Icon: "business", Route: models.ClientResource.ListRoute()},
		}},
		{Title: "Gestione", Items: []NavItem{
			badged(NavItem{Label: "Fatture", Icon: "receipt_long", Route: models.InvoiceResource.ListRoute()}, overdue, BadgeRed),
			{Label: "Manutenzioni", Icon: "build", Route: models.MaintenanceResource.ListRoute()},
			{Label: "Rifornimenti", Icon: "local_gas_station", Route: models.FuelResource.ListRoute()},
		}},
	}
}

func badged(item NavItem, n int, color BadgeColor) NavItem {
	if n > 0 {
		item.Badge = n
		item.BadgeColor = color
	}
	return item
}
