package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-console/internal/dashboard"
	"github.com/ukydev/fleet-console/internal/db"
	"github.com/ukydev/fleet-console/internal/events"
	"github.com/ukydev/fleet-console/internal/middleware"
	"github.com/ukydev/fleet-console/internal/models"
)

type RouterOptions struct {
	AllowedOrigins []string
	// RateLimit is the number of requests per client per RateWindow
	// seconds; zero disables it.
	RateLimit  int
	RateWindow int
	// TrustProxy keys the rate limit on X-Forwarded-For / X-Real-IP. Only
	// set it when the server sits behind a proxy that overwrites them.
	TrustProxy bool
	Now        func() time.Time
}

// NewRouter wires the seven resources, the dashboard and the health check.
func NewRouter(set db.Set, pub events.Publisher, log logrus.FieldLogger, opts RouterOptions) http.Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.NewRateLimitMiddleware(opts.TrustProxy).RateLimit(opts.RateLimit, opts.RateWindow))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mount(r, models.VehicleResource, set.Vehicles, pub, log, opts.Now)
	mount(r, models.DriverResource, set.Drivers, pub, log, opts.Now)
	mount(r, models.TripResource, set.Trips, pub, log, opts.Now)
	mount(r, models.ClientResource, set.Clients, pub, log, opts.Now)
	mount(r, models.InvoiceResource, set.Invoices, pub, log, opts.Now)
	mount(r, models.MaintenanceResource, set.Maintenance, pub, log, opts.Now)
	mount(r, models.FuelResource, set.Fuel, pub, log, opts.Now)

	dash := &DashboardHandler{set: set, log: log, now: opts.Now}
	r.Get("/dashboard", dash.Dashboard)
	r.Get("/navigation", dash.Navigation)
	return r
}

func mount[E models.Entity](r chi.Router, res models.Resource, coll db.Collection[E], pub events.Publisher, log logrus.FieldLogger, now func() time.Time) {
	h := NewResourceHandler(res, coll, pub, log)
	h.now = now
	r.Mount(res.ListRoute(), h.Routes())
}

// DashboardHandler serves the dashboard computed from the stored data.
type DashboardHandler struct {
	set db.Set
	log logrus.FieldLogger
	now func() time.Time
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.set.Snapshot(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to build dashboard")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Build(snap, h.now()))
}

func (h *DashboardHandler) Navigation(w http.ResponseWriter, r *http.Request) {
	snap, err := h.set.Snapshot(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to build navigation")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Navigation(snap, h.now()))
}
