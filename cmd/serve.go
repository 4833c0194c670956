package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

// maxErrorsInResponse truncates the error list in HTTP responses; the
// full list is still logged.
const maxErrorsInResponse = 5

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for lead scraping",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close() //nolint:errcheck

		p := buildPipeline(cfg)

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/api/leads/scrape", func(w http.ResponseWriter, r *http.Request) {
			// Credentials are checked before any network activity; a
			// missing key is a distinct state, not an empty result.
			if !cfg.Search.Configured() {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "not_configured",
					"error":  "search API key and engine id must be configured",
				})
				return
			}

			var req struct {
				Prompt     string `json:"prompt"`
				MaxResults int    `json:"max_results"`
				Save       bool   `json:"save"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if req.Prompt == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prompt is required"})
				return
			}
			if req.MaxResults <= 0 {
				req.MaxResults = cfg.Pipeline.MaxResults
			}

			result := p.ScrapeLeads(r.Context(), req.Prompt, req.MaxResults)

			if len(result.Errors) > maxErrorsInResponse {
				zap.L().Warn("scrape errors truncated in response",
					zap.Int("total", len(result.Errors)),
					zap.Strings("errors", result.Errors),
				)
				result.Errors = result.Errors[:maxErrorsInResponse]
			}

			if req.Save && len(result.Leads) > 0 {
				if batch, err := st.SaveBatch(r.Context(), req.Prompt, result); err != nil {
					zap.L().Error("save batch failed", zap.Error(err))
				} else {
					zap.L().Info("batch saved",
						zap.String("batch_id", batch.ID),
						zap.Int("leads", batch.LeadCount),
					)
				}
			}

			writeJSON(w, http.StatusOK, result)
		})

		r.Get("/api/leads/batches", func(w http.ResponseWriter, r *http.Request) {
			batches, err := st.ListBatches(r.Context(), 50)
			if err != nil {
				zap.L().Error("list batches failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list batches failed"})
				return
			}
			writeJSON(w, http.StatusOK, batches)
		})

		r.Get("/api/leads/batches/{batchID}", func(w http.ResponseWriter, r *http.Request) {
			leads, err := st.GetLeads(r.Context(), chi.URLParam(r, "batchID"))
			if err != nil {
				zap.L().Error("get leads failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "get leads failed"})
				return
			}
			writeJSON(w, http.StatusOK, leads)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
