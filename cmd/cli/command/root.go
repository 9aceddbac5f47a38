package command

// root.go defines the root command for the netdebug CLI.
// set up the global flags and configuration here.

import (
	"fmt"
	"log/slog"
	"os"

	"netdebug/internal/config"
	"netdebug/internal/logging"

	"github.com/spf13/cobra"
)

var (
	cfg       = mustLoadConfig() // loaded from env / .env, then overridden by flags
	logLevel  string
	logFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "netdebug",
	Short: "netdebug - UDP JSON debug responder",
	Long: `netdebug is a tool for manually debugging a client that talks JSON over UDP.
It can:
- Run a responder that logs every datagram and answers {"action":{"type":"Custom"}}
- Probe a responder the way the client would and show the acknowledgment

Settings come from the environment (BIND_HOST, BIND_PORT, DEST_HOST, DEST_PORT, ...)
or a .env file, and flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}
		return cfg.Validate()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", cfg.LogFormat, "log format (text, json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(probeCmd)
}

// mustLoadConfig runs before any init so subcommand flags can default to it.
func mustLoadConfig() *config.Config {
	c, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	return c
}

func newLogger() *slog.Logger {
	return logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
}
