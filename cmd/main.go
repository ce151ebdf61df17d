package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/mux"

	cache "github.com/krisalay/memo-cache"
	"github.com/krisalay/memo-cache/config"
	"github.com/krisalay/memo-cache/dispatcher"
	"github.com/krisalay/memo-cache/refresh"
	"github.com/krisalay/memo-cache/types"
)

var configPath = flag.String("config", "/etc/memo-cache/memo.conf", "path to the INI config file")

// ================= METRICS =================

type Metrics struct {
	hits, misses, stale, expired, refreshes, refreshErrors atomic.Int64
}

func (m *Metrics) Hit()          { m.hits.Add(1) }
func (m *Metrics) Miss()         { m.misses.Add(1) }
func (m *Metrics) Stale()        { m.stale.Add(1) }
func (m *Metrics) Expire()       { m.expired.Add(1) }
func (m *Metrics) Refresh()      { m.refreshes.Add(1) }
func (m *Metrics) RefreshError() { m.refreshErrors.Add(1) }

func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"hits":           m.hits.Load(),
		"misses":         m.misses.Load(),
		"stale":          m.stale.Load(),
		"expired":        m.expired.Load(),
		"refreshes":      m.refreshes.Load(),
		"refresh_errors": m.refreshErrors.Load(),
	}
}

// ================= PRODUCERS =================

// slowReport stands in for an expensive query: it takes "latency" to answer.
func slowReport(ctx context.Context, args types.Args) (any, error) {
	latency, _ := args.Get("latency")
	d, _ := latency.(time.Duration)

	select {
	case <-time.After(d):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	name, _ := args.Get("name")
	return map[string]any{
		"report":       name,
		"generated_at": time.Now().Format(time.RFC3339Nano),
	}, nil
}

func registerProducers(d *dispatcher.Dispatcher) error {
	reports := []struct {
		key     string
		ttl     time.Duration
		latency time.Duration
	}{
		{"daily-sales", 30 * time.Second, 2 * time.Second},
		{"active-users", 5 * time.Second, 500 * time.Millisecond},
		{"inventory", 15 * time.Second, time.Second},
	}
	for _, r := range reports {
		args := types.Args{"name": r.key, "latency": r.latency}
		if err := d.Register(r.key, r.ttl, slowReport, args); err != nil {
			return fmt.Errorf("register %q: %w", r.key, err)
		}
	}
	return nil
}

// ================= HTTP =================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.Errorf("encode response: %v", err)
	}
}

func valueHandler(d *dispatcher.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := mux.Vars(r)["key"]

		start := time.Now()
		v, err := d.Get(r.Context(), key)
		switch {
		case errors.Is(err, types.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		case errors.Is(err, types.ErrProducerFailure):
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		case err != nil:
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"key":     key,
			"value":   v,
			"elapsed": time.Since(start).String(),
		})
	}
}

func newRouter(d *dispatcher.Dispatcher, store *cache.AutoStore, metrics *Metrics) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/values/{key}", valueHandler(d)).Methods(http.MethodGet)
	r.HandleFunc("/keys", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"registered": d.Keys(),
			"cached":     store.Keys(),
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}).Methods(http.MethodGet)
	return r
}

// ================= MAIN =================

func main() {
	// Also used to init glog
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load(*configPath)
	if err != nil {
		glog.Fatal(err)
	}

	metrics := &Metrics{}
	store := cache.NewAutoStore(
		cfg.Staleness,
		cache.WithShards(cfg.Shards),
		cache.WithMetrics(metrics),
	)
	defer store.Close()

	d := dispatcher.New(
		store,
		dispatcher.Eager(cfg.EagerBootstrap),
		dispatcher.BootstrapConcurrency(cfg.BootstrapConcurrency),
	)
	if err := registerProducers(d); err != nil {
		glog.Fatal(err)
	}

	if cfg.SweepSchedule != "" {
		sched, err := refresh.Schedule(cfg.SweepSchedule, store)
		if err != nil {
			glog.Fatalf("sweep schedule %q: %v", cfg.SweepSchedule, err)
		}
		defer sched.Stop()
	}

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           newRouter(d, store, metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Catch closing signal, drain and flush logs
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		sig := <-sigc
		glog.Warningf("caught %v, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			glog.Errorf("shutdown: %v", err)
		}
	}()

	glog.Infof("memo cache listening on %s (staleness=%s eager=%t)", cfg.Listen, cfg.Staleness, cfg.EagerBootstrap)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		glog.Fatal(err)
	}
	d.Wait()
}
