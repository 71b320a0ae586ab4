package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/kiosk/internal/cli"
	"github.com/aretw0/kiosk/internal/logging"
	httpAdapter "github.com/aretw0/kiosk/pkg/adapters/http"
	"github.com/aretw0/kiosk/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP intake server",
	Long: `Starts kiosk in server mode, exposing a JSON API over HTTP. Each visitor
gets their own session; snapshots stream over SSE while the prompt types
itself out.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")
		script, _ := cmd.Flags().GetString("script")
		storePath, _ := cmd.Flags().GetString("store")
		redisURL, _ := cmd.Flags().GetString("redis")
		launchers, _ := cmd.Flags().GetString("launchers")

		logger := logging.FromEnv()
		metrics := observability.NewMetrics()

		factory, err := cli.BuildFactory(cli.FactoryOptions{
			ScriptPath:    script,
			LaunchersPath: launchers,
			StorePath:     storePath,
			RedisURL:      redisURL,
			Logger:        logger,
			Hooks:         metrics.Hooks(),
		})
		if err != nil {
			fmt.Printf("Error initializing kiosk: %v\n", err)
			os.Exit(1)
		}
		defer factory.Close()

		server := httpAdapter.NewServer(factory.NewSession,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetricsHandler(promhttp.Handler()),
		)
		defer server.Close()

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: server.Handler(),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Kiosk Server on %s\n", srv.Addr)
			fmt.Printf("Serving script from: %s\n", script)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Kiosk Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("script", ".", "Script directory or .md file to serve")
	serveCmd.Flags().String("store", "", "Directory for session state (default .kiosk/sessions)")
	serveCmd.Flags().String("redis", "", "Redis URL for shared session state")
	serveCmd.Flags().String("launchers", "", "Path to the launcher registry")
}
