package command

import (
	"os"
	"os/signal"
	"syscall"

	"netdebug/internal/app"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// serveCmd runs the debug responder until Ctrl+C
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the UDP debug responder",
	Long: `Bind the receive endpoint, print every JSON datagram that arrives and answer
each one with {"action":{"type":"Custom"}} sent to the destination endpoint.

Acknowledgments always go to the destination, never back to the sender.
Malformed datagrams are reported and skipped. Press Ctrl+C to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "Do Ctrl+c to exit the program !!")
		return app.Run(ctx, cfg, newLogger(), cmd.OutOrStdout(), !color.NoColor)
	},
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&cfg.BindHost, "bind-host", cfg.BindHost, "local address to receive on")
	f.IntVar(&cfg.BindPort, "bind-port", cfg.BindPort, "local port to receive on")
	f.StringVar(&cfg.DestHost, "dest-host", cfg.DestHost, "host acknowledgments are sent to")
	f.IntVar(&cfg.DestPort, "dest-port", cfg.DestPort, "port acknowledgments are sent to")
	f.IntVar(&cfg.AdminPort, "admin-port", cfg.AdminPort, "port for the /healthz and /stats endpoint (0 = off)")
	f.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "mirror trace events to this Redis (empty = off)")
	f.StringVar(&cfg.MirrorChannel, "mirror-channel", cfg.MirrorChannel, "Redis pub/sub channel for trace events")
}
