// Command chatd runs the chat server: the WebSocket event channel and the
// online-users presence endpoint.
package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/irvelervel/apr21-chat/internal/server"
)

// envKeyReplacer maps flag names to CHAT_* environment variables, for
// example allowed-origins -> CHAT_ALLOWED_ORIGINS.
var envKeyReplacer = strings.NewReplacer("-", "_")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "chatd",
		Short:         "Real-time chat server",
		Long:          "chatd serves the chat event channel over WebSocket and exposes the online-users presence endpoint.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(v)
		},
	}

	flags := rootCmd.Flags()
	flags.String(server.ConfigKeyPort, ":8080", "listen address")
	flags.StringSlice(server.ConfigKeyAllowedOrigins, []string{"http://localhost:8080"}, "allowed WebSocket origins (use * to allow all)")
	flags.Int64(server.ConfigKeyMaxMessageSize, 4096, "maximum inbound frame size in bytes")
	flags.Duration(server.ConfigKeyShutdownTimeout, 10*time.Second, "graceful shutdown timeout")

	v.SetEnvPrefix("CHAT")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		log.Fatalf("Failed to bind flags: %v", err)
	}

	return rootCmd
}

func runServer(v *viper.Viper) error {
	config := server.NewConfigFromViper(v)
	server.SetConfig(config)

	hub := server.NewHub()
	go hub.Run()
	log.Println("Hub started and ready to manage WebSocket connections")

	mux := server.SetupRoutes(hub)
	httpServer := server.CreateServer(config.Port, mux)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.StartServer(httpServer)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		// Listener failed before any shutdown signal arrived.
		return err
	case sig := <-stop:
		log.Printf("Received %s, shutting down...", sig)
	}

	if err := server.ShutdownServer(httpServer, config.ShutdownTimeout); err != nil {
		log.Printf("HTTP shutdown finished with error: %v", err)
	}
	if err := hub.Shutdown(config.ShutdownTimeout); err != nil {
		log.Printf("Hub shutdown finished with error: %v", err)
	}
	return nil
}
