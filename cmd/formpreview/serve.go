package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formpreview/components/locations"
	"github.com/goliatone/go-formpreview/components/previews"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the previews and locations HTTP APIs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			handler, svc, err := a.routes()
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				a.logger.Info("http server listening", zap.String("addr", addr), zap.String("base_path", a.cfg.Server.BasePath))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				err := svc.Run(gctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
				defer cancel()
				a.logger.Info("http server shutting down")
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr)")
	return cmd
}

// routes wires every HTTP component onto one mux.
func (a *app) routes() (http.Handler, *previews.Service, error) {
	mux := http.NewServeMux()
	base := a.cfg.Server.BasePath

	static, err := locations.NewStaticLookup(nil)
	if err != nil {
		return nil, nil, err
	}
	cache := locations.NewCache(static, a.cfg.Locations.CacheTTL, a.cfg.Locations.CacheSize, nil)
	locPath, err := locations.New(locations.WithLookup(cache)).RegisterRoutes(mux, base)
	if err != nil {
		return nil, nil, err
	}

	svc := previews.NewService(
		previews.WithSessionTTL(a.cfg.Server.SessionTTL),
		previews.WithMaxSessions(a.cfg.Server.MaxSessions),
		previews.WithSanitize(a.cfg.Sources.Sanitize),
		previews.WithEngine(a.engine()),
		previews.WithLogger(a.logger),
		previews.WithSectionOptions(a.sectionOpts...),
	)
	previewPath, err := svc.RegisterRoutes(mux, base)
	if err != nil {
		return nil, nil, err
	}

	mux.HandleFunc("GET "+locations.JoinPath(base, "/healthz"), func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	a.logger.Debug("routes registered", zap.String("locations", locPath), zap.String("previews", previewPath))
	return logRequests(a.logger, mux), svc, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(started)),
		)
	})
}
