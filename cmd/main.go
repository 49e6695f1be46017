package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-console/internal/config"
	"github.com/ukydev/fleet-console/internal/db"
	"github.com/ukydev/fleet-console/internal/events"
	"github.com/ukydev/fleet-console/internal/handlers"
	"github.com/ukydev/fleet-console/internal/logging"
)

// openStorage returns the collections selected by cfg and a function that
// releases them.
func openStorage(ctx context.Context, cfg *config.Config) (db.Set, func(context.Context) error, error) {
	if cfg.Storage.Driver != config.StorageMongo {
		return db.NewMemorySet(), func(context.Context) error { return nil }, nil
	}
	client, err := db.ConnectMongo(ctx, cfg.Storage.MongoURI)
	if err != nil {
		return db.Set{}, nil, errors.Wrap(err, "failed to connect to MongoDB")
	}
	return db.NewMongoSet(client.Database(cfg.Storage.MongoDB)), client.Disconnect, nil
}

// openEvents connects to the MQTT broker when one is configured.
func openEvents(cfg *config.Config, logger log.FieldLogger) (events.Publisher, error) {
	if cfg.MQTT.Broker == "" {
		return events.Nop{}, nil
	}
	pub, err := events.Dial(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.TopicPrefix, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MQTT broker")
	}
	return pub, nil
}

func newServer(cfg *config.Config, set db.Set, pub events.Publisher, logger log.FieldLogger) *http.Server {
	router := handlers.NewRouter(set, pub, logger, handlers.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      cfg.Server.RateLimit,
		RateWindow:     cfg.Server.RateWindowSeconds,
		TrustProxy:     cfg.Server.TrustProxy,
	})
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// serve runs srv on ln until ctx is cancelled, then shuts it down within
// timeout.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config, logger log.FieldLogger) error {
	set, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStorage(context.Background()); err != nil {
			logger.WithError(err).Warn("Failed to close storage")
		}
	}()

	pub, err := openEvents(cfg, logger)
	if err != nil {
		return err
	}
	defer pub.Close()

	srv := newServer(cfg, set, pub, logger)
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", srv.Addr)
	}

	logger.WithFields(log.Fields{
		"addr":    srv.Addr,
		"storage": cfg.Storage.Driver,
		"mqtt":    cfg.MQTT.Broker != "",
	}).Info("HTTP server listening")

	if err := serve(ctx, srv, ln, cfg.ShutdownTimeout()); err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Server exited")
	}
}
