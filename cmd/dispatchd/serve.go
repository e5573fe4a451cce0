package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dispatchd/internal/httpapi"
	"dispatchd/internal/hub"
	"dispatchd/internal/script"
)

type serveFlags struct {
	addr         string
	spoolDir     string
	maxBodyBytes int64
	httpLog      string
	cors         bool
	corsOrigins  []string
}

func newServeCmd(a *app) *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(cmd, a)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, nil)
		},
	}
	cmd.Flags().StringVar(&f.addr, "addr", "", "HTTP listen address, e.g. :8080")
	cmd.Flags().StringVar(&f.spoolDir, "spool-dir", "", "Directory watched for *.ndjson event scripts")
	cmd.Flags().Int64Var(&f.maxBodyBytes, "max-body-bytes", 0, "Maximum JSON request body size")
	cmd.Flags().StringVar(&f.httpLog, "http-log", "", "Default request log level: off|error|info|debug")
	cmd.Flags().BoolVar(&f.cors, "cors", false, "Enable CORS")
	cmd.Flags().StringSliceVar(&f.corsOrigins, "cors-origins", nil, "Allowed CORS origins (comma separated)")
	return cmd
}

// apply overlays the flags the user actually set onto the resolved config.
func (f *serveFlags) apply(cmd *cobra.Command, a *app) {
	fl := cmd.Flags()
	if fl.Changed("addr") {
		a.cfg.Addr = f.addr
	}
	if fl.Changed("spool-dir") {
		a.cfg.SpoolDir = f.spoolDir
	}
	if fl.Changed("max-body-bytes") {
		a.cfg.MaxBodyBytes = f.maxBodyBytes
	}
	if fl.Changed("cors") {
		a.cfg.CORS.Enabled = f.cors
	}
	if fl.Changed("cors-origins") {
		a.cfg.CORS.Origins = f.corsOrigins
	}
	if fl.Changed("http-log") {
		httpapi.SetDefaultLogLevel(f.httpLog)
	}
	a.cfg.Defaults()
}

// serve runs the daemon until ctx is done. When ready is non-nil it receives
// the bound address once the listener is up.
func (a *app) serve(ctx context.Context, ready chan<- string) error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	hc, err := a.cfg.HubConfig(a.log)
	if err != nil {
		return err
	}
	h, err := hub.NewWithConfig(hc)
	if err != nil {
		return fmt.Errorf("build hub: %w", err)
	}
	defer func() {
		if err := h.Close(); err != nil {
			a.log.Warn().Err(err).Msg("hub close")
		}
	}()

	httpapi.SetLogger(a.log.With().Str("component", "http").Logger())
	httpapi.SetMaxBodyBytes(a.cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(a.cfg.CORS.Enabled, a.cfg.CORS.Origins, a.cfg.CORS.Methods, a.cfg.CORS.Headers)

	listen := a.listen
	if listen == nil {
		listen = net.Listen
	}
	ln, err := listen("tcp", a.cfg.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           httpapi.NewMux(h),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	// the spool must stop before the deferred hub close on every return path
	ctx, stop := context.WithCancel(ctx)
	spoolDone := make(chan struct{})
	defer func() {
		stop()
		<-spoolDone
	}()
	if a.cfg.SpoolDir != "" {
		sp := script.NewSpool(a.cfg.SpoolDir, h, a.log)
		go func() {
			defer close(spoolDone)
			if err := sp.Run(ctx); err != nil {
				a.log.Error().Err(err).Msg("spool")
			}
		}()
	} else {
		close(spoolDone)
	}

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", ln.Addr().String()).Int("channels", len(a.cfg.Channels)).Int("sinks", len(a.cfg.Sinks)).Msg("dispatchd listening")
		serveErr <- srv.Serve(ln)
	}()
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("graceful shutdown error")
	}
	<-spoolDone
	a.log.Info().Msg("dispatchd stopped")
	return nil
}
