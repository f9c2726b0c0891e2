package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/staff-clock/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the clock API server",
	Long: `Start the Staff Clock API server.
Clock terminals post face embeddings, camera frames or PINs; the admin
console manages enrollments, settings and the staff roster.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

// warmEnrollments loads the enrollment cache so the first clock request is fast.
func warmEnrollments(ctx context.Context, b *backend) {
	fmt.Printf("Loading face enrollments...\n")
	status, err := b.service.RebuildIndex(ctx)
	if err != nil {
		fmt.Printf("Warning: Failed to load enrollments: %v\n", err)
		fmt.Printf("Enrollments will be loaded on the first clock request\n")
		return
	}
	fmt.Printf("Loaded %d enrollments (look-alike index: %v)\n", status.Enrollments, status.HNSWActive)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Printf("Connecting to PostgreSQL database...\n")
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	warmEnrollments(ctx, b)

	deps := web.Deps{Service: b.service, DB: b.pool}
	roster, err := openRoster(b.cfg)
	if err != nil {
		fmt.Printf("Warning: Failed to connect to roster database: %v\n", err)
		fmt.Printf("Staff sync is disabled\n")
	} else if roster != nil {
		defer roster.Close()
		deps.Roster = roster
		fmt.Printf("Roster sync enabled (MariaDB)\n")
	}
	if b.embedder != nil {
		if err := b.embedder.Health(ctx); err != nil {
			fmt.Printf("Warning: Embedding service is not healthy: %v\n", err)
		} else {
			fmt.Printf("Image clock-in enabled (%s)\n", b.cfg.Embedding.URL)
		}
	}

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(b.cfg, deps, port, host)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	fmt.Printf("Starting Staff Clock API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	return serveUntilSignal(server, sigChan, shutdownTimeout)
}

const shutdownTimeout = 30 * time.Second

type lifecycle interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// serveUntilSignal runs the server until a signal arrives.
// It returns only after Shutdown has finished draining requests and audit writes.
func serveUntilSignal(server lifecycle, sigChan <-chan os.Signal, timeout time.Duration) error {
	stopped := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		select {
		case <-sigChan:
		case <-stopped:
			return
		}
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	err := server.Start()
	close(stopped)
	<-done
	if err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
