// Command console is a terminal front end to the fleet API: dashboard,
// navigation counters, filtered lists, entity detail and deletion, and a
// watch mode that reloads lists when change events arrive over MQTT.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-console/internal/client"
	"github.com/ukydev/fleet-console/internal/config"
	"github.com/ukydev/fleet-console/internal/dashboard"
	"github.com/ukydev/fleet-console/internal/events"
	"github.com/ukydev/fleet-console/internal/logging"
	"github.com/ukydev/fleet-console/internal/models"
	"github.com/ukydev/fleet-console/internal/search"
	"github.com/ukydev/fleet-console/internal/store"
)

const usage = `usage: console [-api URL] [-json] <command> [args]

commands:
  dashboard                 KPIs, alerts, recent trips and trips per month
  nav                       navigation with live counters
  list <resource> [filters] list a resource; filters: -q -status -type -vehicle -driver -client -active
  show <resource> <id>      print one entity as JSON
  delete <resource> <id>    delete one entity
  watch                     reload on change events and print the KPIs

resources: vehicles drivers trips clients invoices maintenance fuel
`

var errUsage = errors.New("invalid usage")

// subscriber delivers change events until closed.
type subscriber interface {
	Subscribe(fn func(events.Event)) error
	Close()
}

type console struct {
	fleet  *store.Fleet
	out    io.Writer
	now    func() time.Time
	asJSON bool
	log    log.FieldLogger
}

// load refreshes every list and reports load failures the way the list
// views do, as a banner per resource.
func (c *console) load(ctx context.Context) {
	c.fleet.LoadAll(ctx)
	errs := c.fleet.Errors()
	paths := make([]string, 0, len(errs))
	for p := range errs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		fmt.Fprintf(c.out, "! %s\n", errs[p])
	}
}

func (c *console) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *console) dashboard(ctx context.Context) error {
	c.load(ctx)
	d := dashboard.Build(c.fleet.Snapshot(), c.now())
	if c.asJSON {
		return c.printJSON(d)
	}
	return renderDashboard(c.out, d)
}

func (c *console) navigation(ctx context.Context) error {
	c.load(ctx)
	nav := dashboard.Navigation(c.fleet.Snapshot(), c.now())
	if c.asJSON {
		return c.printJSON(nav)
	}
	renderNavigation(c.out, nav)
	return nil
}

type listFilters struct {
	query, status, kind     string
	vehicle, driver, client string
	active                  string
}

func parseListFilters(args []string) (listFilters, error) {
	var f listFilters
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.query, "q", "", "free-text search")
	fs.StringVar(&f.status, "status", "", "status")
	fs.StringVar(&f.kind, "type", "", "maintenance or fuel type")
	fs.StringVar(&f.vehicle, "vehicle", "", "vehicle id")
	fs.StringVar(&f.driver, "driver", "", "driver id")
	fs.StringVar(&f.client, "client", "", "client id")
	fs.StringVar(&f.active, "active", "", "true or false (clients)")
	if err := fs.Parse(args); err != nil {
		return f, errors.Wrap(errUsage, err.Error())
	}
	if fs.NArg() > 0 {
		return f, errors.Wrapf(errUsage, "unexpected argument %q", fs.Arg(0))
	}
	return f, nil
}

func (f listFilters) activeFlag() (*bool, error) {
	switch f.active {
	case "":
		return nil, nil
	case "true", "false":
		v := f.active == "true"
		return &v, nil
	default:
		return nil, errors.Wrapf(errUsage, "-active must be true or false, got %q", f.active)
	}
}

func (c *console) list(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.Wrap(errUsage, "list needs a resource")
	}
	res, err := resourceByPath(args[0])
	if err != nil {
		return err
	}
	f, err := parseListFilters(args[1:])
	if err != nil {
		return err
	}
	active, err := f.activeFlag()
	if err != nil {
		return err
	}

	c.load(ctx)
	snap := c.fleet.Snapshot()
	refs := search.RefsFrom(snap)

	switch res.Path {
	case models.VehicleResource.Path:
		items := search.VehicleFilter{Query: f.query, Status: models.VehicleStatus(f.status)}.Apply(snap.Vehicles)
		return c.emit(items, func() error { return renderVehicles(c.out, items) })
	case models.DriverResource.Path:
		items := search.DriverFilter{Query: f.query, Status: models.DriverStatus(f.status)}.Apply(snap.Drivers)
		return c.emit(items, func() error { return renderDrivers(c.out, items, c.now()) })
	case models.ClientResource.Path:
		items := search.ClientFilter{Query: f.query, Active: active}.Apply(snap.Clients)
		return c.emit(items, func() error { return renderClients(c.out, items) })
	case models.TripResource.Path:
		items := search.TripFilter{
			Query:     f.query,
			Status:    models.TripStatus(f.status),
			VehicleID: f.vehicle,
			DriverID:  f.driver,
			ClientID:  f.client,
		}.Apply(snap.Trips, refs)
		return c.emit(items, func() error { return renderTrips(c.out, items, refs) })
	case models.InvoiceResource.Path:
		items := search.InvoiceFilter{Query: f.query, Status: models.InvoiceStatus(f.status), ClientID: f.client}.Apply(snap.Invoices, refs)
		return c.emit(items, func() error { return renderInvoices(c.out, items, refs) })
	case models.MaintenanceResource.Path:
		items := search.MaintenanceFilter{
			Query:     f.query,
			Status:    models.MaintenanceStatus(f.status),
			Type:      models.MaintenanceType(f.kind),
			VehicleID: f.vehicle,
		}.Apply(snap.Maintenance, refs)
		return c.emit(items, func() error { return renderMaintenance(c.out, items, refs) })
	default:
		items := search.FuelFilter{Query: f.query, FuelType: models.FuelType(f.kind), VehicleID: f.vehicle}.Apply(snap.Fuel, refs)
		return c.emit(items, func() error { return renderFuel(c.out, items, refs) })
	}
}

func (c *console) emit(items any, render func() error) error {
	if c.asJSON {
		return c.printJSON(items)
	}
	return render()
}

func showEntity[E models.Entity](ctx context.Context, c *console, coll *store.Collection[E], id string) error {
	e, err := coll.GetByID(ctx, id)
	if err != nil {
		return errors.New(coll.LastError())
	}
	return c.printJSON(e)
}

func (c *console) show(ctx context.Context, args []string) error {
	res, id, err := resourceAndID("show", args)
	if err != nil {
		return err
	}
	f := c.fleet
	switch res.Path {
	case models.VehicleResource.Path:
		return showEntity(ctx, c, f.Vehicles.Collection, id)
	case models.DriverResource.Path:
		return showEntity(ctx, c, f.Drivers.Collection, id)
	case models.TripResource.Path:
		return showEntity(ctx, c, f.Trips.Collection, id)
	case models.ClientResource.Path:
		return showEntity(ctx, c, f.Clients.Collection, id)
	case models.InvoiceResource.Path:
		return showEntity(ctx, c, f.Invoices.Collection, id)
	case models.MaintenanceResource.Path:
		return showEntity(ctx, c, f.Maintenance.Collection, id)
	default:
		return showEntity(ctx, c, f.Fuel.Collection, id)
	}
}

func (c *console) remove(ctx context.Context, args []string) error {
	res, id, err := resourceAndID("delete", args)
	if err != nil {
		return err
	}
	f := c.fleet
	switch res.Path {
	case models.VehicleResource.Path:
		err = f.Vehicles.Delete(ctx, id)
	case models.DriverResource.Path:
		err = f.Drivers.Delete(ctx, id)
	case models.TripResource.Path:
		err = f.Trips.Delete(ctx, id)
	case models.ClientResource.Path:
		err = f.Clients.Delete(ctx, id)
	case models.InvoiceResource.Path:
		err = f.Invoices.Delete(ctx, id)
	case models.MaintenanceResource.Path:
		err = f.Maintenance.Delete(ctx, id)
	default:
		err = f.Fuel.Delete(ctx, id)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s %s eliminato\n", res.Label, id)
	return nil
}

// watch prints the KPIs, then reloads the affected list and prints them
// again for every change event until ctx ends.
func (c *console) watch(ctx context.Context, sub subscriber) error {
	c.load(ctx)
	if err := renderKPIs(c.out, dashboard.Build(c.fleet.Snapshot(), c.now()).KPIs); err != nil {
		return err
	}

	changes := make(chan events.Event, 16)
	err := sub.Subscribe(func(e events.Event) {
		select {
		case changes <- e:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return err
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-changes:
			if !c.fleet.Reload(ctx, e.Resource) {
				c.log.WithField("resource", e.Resource).Warn("Ignoring event for unknown resource")
				continue
			}
			fmt.Fprintf(c.out, "\n%s %s %s %s\n", e.At.In(time.Local).Format("15:04:05"), e.Resource, e.ID, e.Action)
			if err := renderKPIs(c.out, dashboard.Build(c.fleet.Snapshot(), c.now()).KPIs); err != nil {
				return err
			}
		}
	}
}

func resourceByPath(path string) (models.Resource, error) {
	for _, r := range models.Resources {
		if r.Path == path {
			return r, nil
		}
	}
	return models.Resource{}, errors.Wrapf(errUsage, "unknown resource %q", path)
}

func resourceAndID(cmd string, args []string) (models.Resource, string, error) {
	if len(args) != 2 {
		return models.Resource{}, "", errors.Wrapf(errUsage, "%s needs a resource and an id", cmd)
	}
	res, err := resourceByPath(args[0])
	return res, args[1], err
}

// run executes the command in args. dial connects to the event broker for
// watch.
func run(ctx context.Context, args []string, cfg *config.Config, out io.Writer, logger log.FieldLogger, dial func() (subscriber, error)) error {
	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	api := fs.String("api", cfg.API.BaseURL, "API base URL")
	asJSON := fs.Bool("json", false, "print JSON instead of tables")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errUsage, err.Error())
	}
	if fs.NArg() == 0 {
		return errors.Wrap(errUsage, "missing command")
	}

	c := &console{
		fleet:  store.NewFleet(client.New(*api, cfg.APITimeout()), store.WithLogger(logger)),
		out:    out,
		now:    time.Now,
		asJSON: *asJSON,
		log:    logger,
	}
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "dashboard":
		return c.dashboard(ctx)
	case "nav":
		return c.navigation(ctx)
	case "list":
		return c.list(ctx, rest)
	case "show":
		return c.show(ctx, rest)
	case "delete":
		return c.remove(ctx, rest)
	case "watch":
		sub, err := dial()
		if err != nil {
			return err
		}
		return c.watch(ctx, sub)
	default:
		return errors.Wrapf(errUsage, "unknown command %q", cmd)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.WithError(err).Fatal("Failed to configure logging")
	}
	logger.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dial := func() (subscriber, error) {
		if cfg.MQTT.Broker == "" {
			return nil, errors.New("watch needs MQTT_BROKER")
		}
		pub, err := events.Dial(cfg.MQTT.Broker, cfg.MQTT.ClientID+"-console", cfg.MQTT.TopicPrefix, logger)
		if err != nil {
			return nil, err
		}
		return pub, nil
	}

	if err := run(ctx, os.Args[1:], cfg, os.Stdout, logger, dial); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
			os.Exit(2)
		}
		logger.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}
