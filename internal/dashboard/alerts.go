package dashboard

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/ukydev/fleet-console/internal/models"
	"github.com/ukydev/fleet-console/internal/store"
)

type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

func (s Severity) rank() int {
	switch s {
	case SeverityDanger:
		return 0
	case SeverityWarning:
		return 1
	}
	return 2
}

const (
	// InvoiceDueSoonDays flags sent invoices about to fall due.
	InvoiceDueSoonDays = 7
	// ConsumptionThreshold is the relative increase over a vehicle's
	// average L/100km that counts as anomalous.
	ConsumptionThreshold = 0.15
)

type Alert struct {
	ID          string   `json:"id"`
	Severity    Severity `json:"type"`
	Icon        string   `json:"icon"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Route       string   `json:"route"`
}

// Alerts lists everything needing attention as of now, dangers first.
func Alerts(s store.Snapshot, now time.Time) []Alert {
	var out []Alert
	out = append(out, driverAlerts(s.Drivers, now)...)
	out = append(out, vehicleAlerts(s.Vehicles, now)...)
	out = append(out, maintenanceAlerts(s.Maintenance, s.Vehicles, now)...)
	out = append(out, invoiceAlerts(s.Invoices, s.Clients, now)...)
	out = append(out, fuelAlerts(s.Fuel, s.Vehicles)...)
	slices.SortStableFunc(out, func(a, b Alert) int {
		return a.Severity.rank() - b.Severity.rank()
	})
	return out
}

// expiry builds the alert for a document expiring within the window or
// already expired. ok is false when the date needs no attention.
func expiry(id, icon, document, who, route string, date, now time.Time) (Alert, bool) {
	if date.IsZero() {
		return Alert{}, false
	}
	days := models.DaysUntil(date, now)
	a := Alert{ID: id, Icon: icon, Route: route}
	switch {
	case days < 0:
		a.Severity = SeverityDanger
		a.Title = document + " scaduta"
		a.Description = fmt.Sprintf("%s - scaduta da %d giorni", who, -days)
	case days <= models.ExpiryWindowDays:
		a.Severity = SeverityWarning
		a.Title = document + " in scadenza"
		a.Description = fmt.Sprintf("%s - scade tra %d giorni", who, days)
	default:
		return Alert{}, false
	}
	return a, true
}

func driverAlerts(drivers []*models.Driver, now time.Time) []Alert {
	var out []Alert
	for _, d := range drivers {
		if d.Status == models.DriverInactive {
			continue
		}
		route := models.DriverResource.DetailRoute(d.ID)
		name := d.FullName()
		if a, ok := expiry("license-"+d.ID, "badge", "Patente", name, route, d.LicenseExpiry, now); ok {
			out = append(out, a)
		}
		if a, ok := expiry("cqc-"+d.ID, "badge", "CQC", name, route, d.CQCExpiry, now); ok {
			out = append(out, a)
		}
		if d.ADRExpiry != nil {
			if a, ok := expiry("adr-"+d.ID, "warning", "Patente ADR", name, route, *d.ADRExpiry, now); ok {
				out = append(out, a)
			}
		}
	}
	return out
}

func vehicleAlerts(vehicles []*models.Vehicle, now time.Time) []Alert {
	var out []Alert
	for _, v := range vehicles {
		if v.Status == models.VehicleInactive {
			continue
		}
		route := models.VehicleResource.DetailRoute(v.ID)
		if v.InsuranceExpiry != nil {
			if a, ok := expiry("insurance-"+v.ID, "shield", "Assicurazione", v.Plate, route, *v.InsuranceExpiry, now); ok {
				out = append(out, a)
			}
		}
		if v.RevisionExpiry != nil {
			if a, ok := expiry("revision-"+v.ID, "fact_check", "Revisione", v.Plate, route, *v.RevisionExpiry, now); ok {
				out = append(out, a)
			}
		}
	}
	return out
}

// maintenanceAlerts reports scheduled work due within the expiry window,
// overdue work included.
func maintenanceAlerts(records []*models.Maintenance, vehicles []*models.Vehicle, now time.Time) []Alert {
	plates := make(map[string]string, len(vehicles))
	for _, v := range vehicles {
		plates[v.ID] = v.Plate
	}
	var out []Alert
	for _, m := range records {
		if m.Status != models.MaintenanceScheduled || models.DaysUntil(m.Date, now) > models.ExpiryWindowDays {
			continue
		}
		plate := plates[m.VehicleID]
		if plate == "" {
			plate = m.VehicleID
		}
		out = append(out, Alert{
			ID:          "maintenance-" + m.ID,
			Severity:    SeverityInfo,
			Icon:        "build",
			Title:       "Manutenzione programmata",
			Description: fmt.Sprintf("%s - %s %s", plate, m.Type.Label(), m.Date.Format("02/01")),
			Route:       models.MaintenanceResource.DetailRoute(m.ID),
		})
	}
	return out
}

func invoiceAlerts(invoices []*models.Invoice, clients []*models.Client, now time.Time) []Alert {
	names := make(map[string]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.CompanyName
	}
	var out []Alert
	for _, i := range invoices {
		desc := i.InvoiceNumber
		if name := names[i.ClientID]; name != "" {
			desc += " - " + name
		}
		a := Alert{
			ID:          "invoice-" + i.ID,
			Icon:        "receipt_long",
			Description: desc,
			Route:       models.InvoiceResource.DetailRoute(i.ID),
		}
		switch {
		case i.Status == models.InvoiceOverdue || i.IsOverdue(now):
			a.Severity = SeverityDanger
			a.Title = "Fattura scaduta"
		case i.Status == models.InvoiceSent && models.DaysUntil(i.DueDate, now) <= InvoiceDueSoonDays:
			a.Severity = SeverityWarning
			a.Title = "Fattura in scadenza"
		default:
			continue
		}
		out = append(out, a)
	}
	return out
}

func fuelAlerts(records []*models.Fuel, vehicles []*models.Vehicle) []Alert {
	byVehicle := store.GroupBy(records, func(f *models.Fuel) string { return f.VehicleID })
	var out []Alert
	// Walk vehicles rather than the map so the order is stable.
	for _, v := range vehicles {
		latest, avg, ok := Consumption(byVehicle[v.ID])
		if !ok || latest <= avg*(1+ConsumptionThreshold) {
			continue
		}
		out = append(out, Alert{
			ID:          "fuel-" + v.ID,
			Severity:    SeverityWarning,
			Icon:        "local_gas_station",
			Title:       "Consumo anomalo",
			Description: fmt.Sprintf("%s - +%d%% vs media", v.Plate, int(math.Round((latest/avg-1)*100))),
			Route:       models.VehicleResource.DetailRoute(v.ID),
		})
	}
	return out
}

// Consumption measures L/100km between consecutive full tanks of one
// vehicle. It returns the latest interval and the average of the ones
// before it; ok is false with fewer than two intervals.
func Consumption(records []*models.Fuel) (latest, average float64, ok bool) {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b *models.Fuel) int { return a.Odometer - b.Odometer })

	var intervals []float64
	lastFull := -1
	var liters float64
	for _, f := range sorted {
		if lastFull >= 0 {
			liters += f.Liters
		}
		if !f.FullTank {
			continue
		}
		if lastFull >= 0 && f.Odometer > lastFull {
			intervals = append(intervals, liters/float64(f.Odometer-lastFull)*100)
		}
		lastFull = f.Odometer
		liters = 0
	}
	if len(intervals) < 2 {
		return 0, 0, false
	}
	prev := intervals[:len(intervals)-1]
	return intervals[len(intervals)-1], store.AverageOf(prev, func(x float64) float64 { return x }), true
}
