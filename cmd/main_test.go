package main

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-console/internal/config"
	"github.com/ukydev/fleet-console/internal/events"
	"github.com/ukydev/fleet-console/internal/models"
)

func memoryConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Port = "0"
	cfg.Server.ShutdownTimeoutSeconds = 2
	return &cfg
}

func TestOpenStorage_Memory(t *testing.T) {
	set, closeStorage, err := openStorage(context.Background(), memoryConfig())
	require.NoError(t, err)
	defer closeStorage(context.Background())

	now := time.Now()
	v := &models.Vehicle{Base: models.Base{ID: "v-1", CreatedAt: now, UpdatedAt: now}, Plate: "AB123CD", Status: models.VehicleAvailable}
	require.NoError(t, set.Vehicles.Insert(context.Background(), v))

	all, err := set.Vehicles.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOpenStorage_MongoUnreachable(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage.Driver = config.StorageMongo
	cfg.Storage.MongoURI = "not-a-mongo-uri"

	_, _, err := openStorage(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to MongoDB")
}

func TestOpenEvents_WithoutBrokerIsNop(t *testing.T) {
	logger, _ := test.NewNullLogger()
	pub, err := openEvents(memoryConfig(), logger)
	require.NoError(t, err)
	assert.IsType(t, events.Nop{}, pub)
}

func TestNewServer_ServesAPI(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := memoryConfig()
	set, _, err := openStorage(context.Background(), cfg)
	require.NoError(t, err)
	srv := newServer(cfg, set, events.Nop{}, logger)
	assert.Equal(t, ":0", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := `{"plate":"AB123CD","brand":"Iveco","model":"Daily","year":2021,"kmTotal":1000}`
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/vehicles", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vehicles", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"plate":"AB123CD"`)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, ln, time.Second) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_MemoryStorage(t *testing.T) {
	logger, hook := test.NewNullLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	require.NoError(t, run(ctx, memoryConfig(), logger))

	var messages []string
	for _, e := range hook.AllEntries() {
		messages = append(messages, e.Message)
	}
	assert.Contains(t, messages, "HTTP server listening")
	assert.Contains(t, messages, "HTTP server stopped")
}

func TestRun_InvalidMongo(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := memoryConfig()
	cfg.Storage.Driver = config.StorageMongo
	cfg.Storage.MongoURI = "not-a-mongo-uri"

	assert.Error(t, run(context.Background(), cfg, logger))
}
