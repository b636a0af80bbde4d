// Command chat runs the terminal chat client against a chatd server.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/irvelervel/apr21-chat/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "chat",
		Short:         "Terminal chat client",
		Long:          "chat connects to a chatd server, claims a username, and exchanges live messages with everyone online.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runClient(v.GetString("server"), v.GetString("username"))
		},
	}

	flags := rootCmd.Flags()
	flags.String("server", "http://localhost:8080", "chat server base URL")
	flags.String("username", "", "username to pre-fill in the login prompt")

	v.SetEnvPrefix("CHAT")
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	return rootCmd
}

func runClient(serverURL, username string) error {
	program := tea.NewProgram(tui.NewModel(serverURL, username), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("client exited with error: %w", err)
	}
	return nil
}
