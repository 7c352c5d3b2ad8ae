package exporter

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turbolytics/scribe/internal/config"
)

func newServeCommand() *cobra.Command {
	var configPath string
	var port int

	var cmd = &cobra.Command{
		Use:   "serve",
		Short: "Starts the export daemon. Exports are invoked over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("scribe.exporter")
			l.Info("starting exporter!")

			c, err := config.NewScribeFromFile(configPath)
			if err != nil {
				return err
			}

			e, err := config.InitializeExporter(ctx, c, l)
			if err != nil {
				return err
			}
			defer e.Close(ctx)

			logMiddleware := func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					start := time.Now()
					ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

					defer func() {
						logger.Info("request",
							zap.String("from", r.RemoteAddr),
							zap.String("protocol", r.Proto),
							zap.String("method", r.Method),
							zap.String("path", r.URL.Path),
							zap.Int("status", ww.Status()),
							zap.Int("bytes", ww.BytesWritten()),
							zap.Duration("duration", time.Since(start)),
						)
					}()

					next.ServeHTTP(ww, r)
				})
			}

			r := chi.NewRouter()
			r.Use(logMiddleware)

			e.RegisterRoutes(r)

			address := fmt.Sprintf(":%d", port)
			l.Info("Starting server",
				zap.Int("port", port),
			)

			if err := http.ListenAndServe(address, r); err != nil {
				log.Fatalf("Failed to start server: %v", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.MarkFlagRequired("config")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")

	return cmd
}
