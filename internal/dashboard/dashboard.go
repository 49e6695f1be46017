// Package dashboard derives the home page of the console from a fleet
// snapshot: KPI cards, alerts, recent trips, the monthly trips chart and
// the live map preview.
package dashboard

import (
	"slices"
	"time"

	"github.com/ukydev/fleet-console/internal/models"
	"github.com/ukydev/fleet-console/internal/store"
)

// RecentTripsLimit caps the recent trips table.
const RecentTripsLimit = 5

var monthNames = [12]string{"Gen", "Feb", "Mar", "Apr", "Mag", "Giu", "Lug", "Ago", "Set", "Ott", "Nov", "Dic"}

// KPIs are the four cards at the top of the dashboard.
type KPIs struct {
	TripsToday        int     `json:"tripsToday"`
	VehiclesInTransit int     `json:"vehiclesInTransit"`
	KmThisMonth       float64 `json:"kmThisMonth"`
	RevenueThisMonth  float64 `json:"revenueThisMonth"`
}

// RecentTrip is one row of the recent trips table, references resolved.
type RecentTrip struct {
	ID          string            `json:"id"`
	TripNumber  string            `json:"tripNumber"`
	Route       string            `json:"route"`
	Client      string            `json:"client"`
	Plate       string            `json:"plate"`
	Status      models.TripStatus `json:"status"`
	StatusLabel string            `json:"statusLabel"`
	Price       float64           `json:"price"`
	Km          float64           `json:"km"`
	Departure   time.Time         `json:"departure"`
}

// MonthBar is one bar of the trips-per-month chart. Height is the bar
// height as a percentage of the tallest bar.
type MonthBar struct {
	Month      string  `json:"month"`
	Value      int     `json:"value"`
	Projection bool    `json:"isProjection,omitempty"`
	Height     float64 `json:"height"`
}

// MapPreview stands in for the live map until positions are streamed.
type MapPreview struct {
	VehiclesInTransit int `json:"vehiclesInTransit"`
}

type Dashboard struct {
	KPIs        KPIs         `json:"kpis"`
	Alerts      []Alert      `json:"alerts"`
	RecentTrips []RecentTrip `json:"recentTrips"`
	TripsChart  []MonthBar   `json:"tripsChart"`
	Map         MapPreview   `json:"map"`
}

// Build computes the dashboard as of now. It only reads s.
func Build(s store.Snapshot, now time.Time) Dashboard {
	inTransit := store.CountWhere(s.Vehicles, func(v *models.Vehicle) bool {
		return v.Status == models.VehicleInTransit
	})
	return Dashboard{
		KPIs:        kpis(s, now, inTransit),
		Alerts:      Alerts(s, now),
		RecentTrips: recentTrips(s),
		TripsChart:  TripsChart(s.Trips, now),
		Map:         MapPreview{VehiclesInTransit: inTransit},
	}
}

func kpis(s store.Snapshot, now time.Time, inTransit int) KPIs {
	return KPIs{
		TripsToday: store.CountWhere(s.Trips, func(t *models.Trip) bool {
			return t.Status != models.TripCancelled && sameDay(t.PlannedDeparture, now)
		}),
		VehiclesInTransit: inTransit,
		KmThisMonth: store.SumOf(s.Trips, func(t *models.Trip) bool {
			return t.Status == models.TripCompleted && sameMonth(arrival(t), now)
		}, (*models.Trip).Km),
		RevenueThisMonth: models.Round2(store.SumOf(s.Invoices, func(i *models.Invoice) bool {
			return i.Status != models.InvoiceDraft && i.Status != models.InvoiceCancelled && sameMonth(i.IssueDate, now)
		}, func(i *models.Invoice) float64 { return i.Total })),
	}
}

func recentTrips(s store.Snapshot) []RecentTrip {
	trips := slices.Clone(s.Trips)
	slices.SortStableFunc(trips, func(a, b *models.Trip) int {
		return b.PlannedDeparture.Compare(a.PlannedDeparture)
	})
	if len(trips) > RecentTripsLimit {
		trips = trips[:RecentTripsLimit]
	}

	plates := make(map[string]string, len(s.Vehicles))
	for _, v := range s.Vehicles {
		plates[v.ID] = v.Plate
	}
	clients := make(map[string]string, len(s.Clients))
	for _, c := range s.Clients {
		clients[c.ID] = c.CompanyName
	}

	out := make([]RecentTrip, 0, len(trips))
	for _, t := range trips {
		out = append(out, RecentTrip{
			ID:          t.ID,
			TripNumber:  t.TripNumber,
			Route:       t.Route(),
			Client:      clients[t.ClientID],
			Plate:       plates[t.VehicleID],
			Status:      t.Status,
			StatusLabel: t.Status.Label(),
			Price:       t.Price,
			Km:          t.Km(),
			Departure:   t.PlannedDeparture,
		})
	}
	return out
}

// TripsChart counts the non-cancelled trips departing in each month of
// now's year. The current month and the ones after it are projections.
func TripsChart(trips []*models.Trip, now time.Time) []MonthBar {
	var counts [12]int
	for _, t := range trips {
		if t.Status == models.TripCancelled || t.PlannedDeparture.In(now.Location()).Year() != now.Year() {
			continue
		}
		counts[t.PlannedDeparture.In(now.Location()).Month()-1]++
	}
	highest := slices.Max(counts[:])

	bars := make([]MonthBar, 12)
	for i, n := range counts {
		bars[i] = MonthBar{
			Month:      monthNames[i],
			Value:      n,
			Projection: time.Month(i+1) >= now.Month(),
		}
		if highest > 0 {
			bars[i].Height = float64(n) / float64(highest) * 100
		}
	}
	return bars
}

func arrival(t *models.Trip) time.Time {
	if t.ActualArrival != nil {
		return *t.ActualArrival
	}
	return t.PlannedArrival
}

func sameDay(t, now time.Time) bool {
	y1, m1, d1 := t.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func sameMonth(t, now time.Time) bool {
	t = t.In(now.Location())
	return t.Year() == now.Year() && t.Month() == now.Month()
}
