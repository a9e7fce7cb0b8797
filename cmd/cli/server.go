package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mchmarny/lingopulse/pkg/config"
	"github.com/mchmarny/lingopulse/pkg/data"
	"github.com/mchmarny/lingopulse/pkg/dimension"
	"github.com/mchmarny/lingopulse/pkg/logging"
	"github.com/mchmarny/lingopulse/pkg/stats"
	"github.com/urfave/cli/v2"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 300
	serverMaxHeaderBytes      = 20
	serverPortDefault         = 8080
)

var (
	portFlag = &cli.IntFlag{
		Name:     "port",
		Usage:    "Port on which the server will listen",
		Value:    serverPortDefault,
		Required: false,
	}

	serverCmd = &cli.Command{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Start local HTTP server exposing the analysis outputs",
		Action:  cmdStartServer,
		Flags: []cli.Flag{
			portFlag,
		},
	}
)

func cmdStartServer(c *cli.Context) error {
	level := "info"
	if c.Bool(debugFlag.Name) {
		level = "debug"
	}
	logging.SetDefaultCLILogger(level)

	cfg := getConfigOrFail()
	db := getDBOrFail(cfg)
	defer db.Close()

	port := c.Int(portFlag.Name)
	address := fmt.Sprintf("127.0.0.1:%d", port)

	s := &http.Server{
		Addr:           address,
		Handler:        makeRouter(db, cfg),
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("error starting server", "error", err)
		}
	}()

	slog.Info("server started", "address", address)

	<-done

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil && err != http.ErrServerClosed {
		slog.Error("error shutting down server", "error", err)
	}
	return nil
}

func makeRouter(db *data.DB, cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(serverTimeoutSeconds * time.Second))

	r.Get("/api/aggregates", aggregatesHandler(db))
	r.Get("/api/baseline", baselineHandler(db))
	r.Get("/api/coherence", coherenceHandler(db, cfg))

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	slog.Error("request failed", "error", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// queryWindow pulls the since/until query params, both required.
func queryWindow(r *http.Request) (since, until string, ok bool) {
	since = r.URL.Query().Get("since")
	until = r.URL.Query().Get("until")
	return since, until, since != "" && until != ""
}

func aggregatesHandler(db *data.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		since, until, ok := queryWindow(r)
		dim := dimension.Dimension(r.URL.Query().Get("dimension"))
		if !ok || !dim.IsValid() {
			writeError(w, http.StatusBadRequest, fmt.Errorf("dimension, since, and until are required"))
			return
		}

		list, err := data.QueryDailyAggregates(r.Context(), db, dim, since, until)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func baselineHandler(db *data.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		since, until, ok := queryWindow(r)
		dim := dimension.Dimension(r.URL.Query().Get("dimension"))
		if !ok || !dim.IsValid() {
			writeError(w, http.StatusBadRequest, fmt.Errorf("dimension, since, and until are required"))
			return
		}

		aggs, err := data.QueryDailyAggregates(r.Context(), db, dim, since, until)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		samples := make([]float64, 0, len(aggs))
		for _, a := range aggs {
			samples = append(samples, a.Mean)
		}
		b, err := stats.NewBaseline(samples)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func coherenceHandler(db *data.DB, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		since, until, ok := queryWindow(r)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Errorf("since and until are required"))
			return
		}

		days, series, err := alignedDailySeries(r.Context(), db, since, until)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		samples, err := stats.EventCoherence(days, series, cfg.Analysis)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, samples)
	}
}
