package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"calendar/src-server/metric"
	"calendar/src-server/route"
	"calendar/src-server/utils"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and Prometheus metrics over HTTP",
		Long: `Serve people, events and attendances as JSON over HTTP, with
Prometheus metrics on /metrics. SIGINT or SIGTERM shuts the server down.

Examples:
  calendar serve --db ./calendar.db
  PORT=9000 calendar serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				port := as.Config.GetPort()
				if opts.Port != "" {
					port = opts.Port
				}
				listener, err := net.Listen("tcp", ":"+port)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to listen", err)
				}
				return serve(ctx, as, listener, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Port, "port", "", "HTTP port (default $PORT or 8080)")

	return cmd
}

// serve owns listener and closes it on return.
func serve(ctx context.Context, as *utils.AppState, listener net.Listener, reg prometheus.Registerer, gatherer prometheus.Gatherer) error {
	if _, err := metric.Init(as, reg); err != nil {
		listener.Close()
		return WrapExitError(ExitCommandError, "failed to register metrics", err)
	}

	server := &http.Server{
		Handler:           route.NewHandler(as, gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("cannot start HTTP server", "error", err)
			serveErr <- err
		}
		close(serveErr)
	}()

	slog.Info("app is now running, press Ctrl+C to exit", "addr", listener.Addr().String())

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(as.AppCloseSignalChan)

	var failure error
	select {
	case <-as.AppCloseSignalChan:
	case <-ctx.Done():
	case failure = <-serveErr:
	}

	slog.Info("Gracefully shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("can't shut down HTTP server", "error", err)
	}
	as.GracefulShutdown()

	if failure != nil {
		return WrapExitError(ExitCommandError, "HTTP server failed", failure)
	}
	return nil
}
