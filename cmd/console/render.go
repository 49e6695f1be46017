package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ukydev/fleet-console/internal/dashboard"
	"github.com/ukydev/fleet-console/internal/models"
	"github.com/ukydev/fleet-console/internal/search"
)

const dateLayout = "02/01/2006"

// euro formats v the Italian way, e.g. 1537.5 -> "1.537,50 €".
func euro(v float64) string {
	return number(v, 2) + " €"
}

// number formats v with a dot thousands separator and decimals digits
// after a decimal comma.
func number(v float64, decimals int) string {
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func datePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return date(*t)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// table writes tab-separated rows aligned in columns.
func table(out io.Writer, header string, rows [][]string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, header)
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func renderVehicles(out io.Writer, items []*models.Vehicle) error {
	rows := make([][]string, 0, len(items))
	for _, v := range items {
		rows = append(rows, []string{
			v.ID, v.Plate, v.Brand, v.Model, strconv.Itoa(v.Year), v.Status.Label(), number(float64(v.KmTotal), 0),
		})
	}
	return table(out, "ID\tTARGA\tMARCA\tMODELLO\tANNO\tSTATO\tKM", rows)
}

func renderDrivers(out io.Writer, items []*models.Driver, now time.Time) error {
	rows := make([][]string, 0, len(items))
	for _, d := range items {
		licence := date(d.LicenseExpiry)
		switch {
		case models.IsExpired(d.LicenseExpiry, now):
			licence += " (scaduta)"
		case models.IsExpiringSoon(d.LicenseExpiry, now):
			licence += " (in scadenza)"
		}
		rows = append(rows, []string{
			d.ID, d.FullName(), d.FiscalCode, d.Phone, d.Status.Label(), licence,
		})
	}
	return table(out, "ID\tNOME\tCODICE FISCALE\tTELEFONO\tSTATO\tPATENTE", rows)
}

func renderClients(out io.Writer, items []*models.Client) error {
	rows := make([][]string, 0, len(items))
	for _, c := range items {
		rows = append(rows, []string{
			c.ID, c.CompanyName, c.VatNumber, c.City, c.Email, c.ActiveLabel(),
		})
	}
	return table(out, "ID\tRAGIONE SOCIALE\tP.IVA\tCITTÀ\tEMAIL\tSTATO", rows)
}

func renderTrips(out io.Writer, items []*models.Trip, refs search.Refs) error {
	rows := make([][]string, 0, len(items))
	for _, t := range items {
		rows = append(rows, []string{
			t.ID, t.TripNumber, t.Route(),
			orDash(refs.ClientName(t.ClientID)),
			orDash(refs.VehiclePlate(t.VehicleID)),
			orDash(refs.DriverName(t.DriverID)),
			date(t.PlannedDeparture), t.Status.Label(), euro(t.Price),
		})
	}
	return table(out, "ID\tNUMERO\tPERCORSO\tCLIENTE\tVEICOLO\tAUTISTA\tPARTENZA\tSTATO\tPREZZO", rows)
}

func renderInvoices(out io.Writer, items []*models.Invoice, refs search.Refs) error {
	rows := make([][]string, 0, len(items))
	for _, i := range items {
		rows = append(rows, []string{
			i.ID, i.InvoiceNumber, orDash(refs.ClientName(i.ClientID)),
			date(i.IssueDate), date(i.DueDate), i.Status.Label(), euro(i.Total),
		})
	}
	return table(out, "ID\tNUMERO\tCLIENTE\tEMISSIONE\tSCADENZA\tSTATO\tTOTALE", rows)
}

func renderMaintenance(out io.Writer, items []*models.Maintenance, refs search.Refs) error {
	rows := make([][]string, 0, len(items))
	for _, m := range items {
		plate := refs.VehiclePlate(m.VehicleID)
		if plate == "" {
			plate = m.VehicleID
		}
		rows = append(rows, []string{
			m.ID, date(m.Date), plate, m.Type.Label(), m.Description, orDash(m.Workshop), m.Status.Label(), euro(m.Cost),
		})
	}
	return table(out, "ID\tDATA\tVEICOLO\tTIPO\tDESCRIZIONE\tOFFICINA\tSTATO\tCOSTO", rows)
}

func renderFuel(out io.Writer, items []*models.Fuel, refs search.Refs) error {
	rows := make([][]string, 0, len(items))
	for _, f := range items {
		plate := refs.VehiclePlate(f.VehicleID)
		if plate == "" {
			plate = f.VehicleID
		}
		rows = append(rows, []string{
			f.ID, date(f.Date), plate, f.FuelType.Label(), number(f.Liters, 1),
			number(f.PricePerLiter, 3), euro(f.TotalCost), orDash(f.StationName),
		})
	}
	return table(out, "ID\tDATA\tVEICOLO\tTIPO\tLITRI\t€/L\tTOTALE\tSTAZIONE", rows)
}

var severityMarks = map[dashboard.Severity]string{
	dashboard.SeverityDanger:  "!!",
	dashboard.SeverityWarning: "! ",
	dashboard.SeverityInfo:    "i ",
}

func renderKPIs(out io.Writer, k dashboard.KPIs) error {
	return table(out, "INDICATORE\tVALORE", [][]string{
		{"Viaggi oggi", strconv.Itoa(k.TripsToday)},
		{"Veicoli in transito", strconv.Itoa(k.VehiclesInTransit)},
		{"Km questo mese", number(k.KmThisMonth, 0)},
		{"Fatturato mese", euro(k.RevenueThisMonth)},
	})
}

func renderDashboard(out io.Writer, d dashboard.Dashboard) error {
	if err := renderKPIs(out, d.KPIs); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nAvvisi (%d)\n", len(d.Alerts))
	for _, a := range d.Alerts {
		fmt.Fprintf(out, "%s %s: %s\n", severityMarks[a.Severity], a.Title, a.Description)
	}

	fmt.Fprintln(out, "\nViaggi recenti")
	rows := make([][]string, 0, len(d.RecentTrips))
	for _, t := range d.RecentTrips {
		rows = append(rows, []string{
			t.TripNumber, t.Route, orDash(t.Client), orDash(t.Plate), date(t.Departure), t.StatusLabel, euro(t.Price),
		})
	}
	if err := table(out, "NUMERO\tPERCORSO\tCLIENTE\tVEICOLO\tPARTENZA\tSTATO\tPREZZO", rows); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nViaggi per mese")
	rows = rows[:0]
	for _, b := range d.TripsChart {
		bar := strings.Repeat("#", int(math.Round(b.Height/5)))
		if b.Projection {
			bar = strings.Repeat(".", len(bar))
		}
		rows = append(rows, []string{b.Month, strconv.Itoa(b.Value), bar})
	}
	return table(out, "MESE\tVIAGGI\t", rows)
}

func renderNavigation(out io.Writer, sections []dashboard.NavSection) {
	for _, s := range sections {
		fmt.Fprintln(out, s.Title)
		for _, item := range s.Items {
			line := fmt.Sprintf("  %-14s %s", item.Label, item.Route)
			if item.Badge > 0 {
				line += fmt.Sprintf(" [%d]", item.Badge)
			}
			fmt.Fprintln(out, line)
		}
	}
}
