package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/rezonia/efactura/internal/server"
	"github.com/rezonia/efactura/internal/tokenstore"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
	redisAddr    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server wrapping the e-Factura client.

The API provides endpoints for:
  - GET  /api/v1/auth/login            - Build an authorization URL
  - GET  /api/v1/auth/callback         - Complete the OAuth2 flow
  - POST /api/v1/auth/logout           - Drop the stored token
  - POST /api/v1/invoices              - Upload a UBL invoice
  - GET  /api/v1/invoices/:id/status   - Poll upload state
  - GET  /api/v1/invoices/:id/download - Download the response archive
  - GET  /api/v1/messages              - List SPV messages
  - POST /api/v1/validate              - Validate invoice XML locally
  - POST /api/v1/format                - Re-indent invoice XML
  - GET  /health                       - Health check

Tokens live in memory by default; pass --redis to share them across
instances.

Examples:
  efactura serve
  efactura serve --address :8080 --redis localhost:6379
  efactura serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 2*time.Minute, "HTTP write timeout")
	serveCmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for shared token storage")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}

	var store tokenstore.Store
	if redisAddr != "" {
		store = tokenstore.NewRedisStore(redis.NewClient(&redis.Options{Addr: redisAddr}))
	}

	srv := server.NewServer(cfg, &server.Config{
		Address:      serverAddr,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug,
	}, store, log)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s (%s environment)\n", serverAddr, cfg.Environment)
	if redisAddr != "" {
		fmt.Println("Token storage: redis")
	} else {
		fmt.Println("Token storage: in-memory")
	}

	return srv.Run()
}
