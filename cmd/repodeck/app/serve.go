package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/jmalmgren/repodeck/internal/httpapi"
	"github.com/jmalmgren/repodeck/internal/logger"
)

const (
	defaultGracefulTimeout = 30 * time.Second
	serverRequestTimeout   = 60 * time.Second
	serverReadTimeout      = 10 * time.Second
	serverWriteTimeout     = 65 * time.Second
	serverIdleTimeout      = 60 * time.Second
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the repodeck API server",
	Long: `Start the HTTP API server. The server loads persisted tokens and groups,
installs the repository cache, and keeps it fresh with periodic background
refreshes while running.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", ":8080", "Address to listen on")
}

func runServe(cmd *cobra.Command, _ []string) error {
	st, err := newStore()
	if err != nil {
		return err
	}
	defer st.Close()

	st.Initialize(cmd.Context())

	router := httpapi.NewServer(st,
		httpapi.WithMiddlewares(
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(serverRequestTimeout),
			httpapi.LoggingMiddleware,
		),
	)

	server := &http.Server{
		Addr:         serveAddress,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	go func() {
		logger.Log("server listening on %s", serveAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
			os.Exit(1)
		}
	}()
	fmt.Printf("repodeck listening on %s\n", serveAddress)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.LogError("SERVER_SHUTDOWN", serveAddress, err)
		return err
	}

	logger.Log("server shutdown complete")
	return nil
}
