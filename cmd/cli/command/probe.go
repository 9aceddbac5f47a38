package command

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"netdebug/cmd/cli/command/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	probeText    string
	probeJSON    string
	probeTarget  string
	probeTimeout time.Duration
)

// probeCmd acts as the debugged client for one round trip
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Send one payload to a responder and wait for the acknowledgment",
	Long: `Send {"text": "..."} (or any raw JSON with --json) to a running responder and
wait for the acknowledgment on the destination endpoint, the way the debugged
client does. The probe binds DEST_HOST:DEST_PORT, so it cannot run while the real
client holds that port.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := []byte(probeJSON)
		if probeJSON == "" {
			var err error
			if payload, err = client.TextPayload(probeText); err != nil {
				return fmt.Errorf("failed to encode payload: %w", err)
			}
		}

		target := probeTarget
		if target == "" {
			host := cfg.BindHost
			if host == "0.0.0.0" || host == "" {
				host = "127.0.0.1"
			}
			target = net.JoinHostPort(host, strconv.Itoa(cfg.BindPort))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Probing %s (listening on %s)\n", target, cfg.DestAddr())

		c := client.NewUDPClient(target, cfg.DestAddr(), probeTimeout)
		result, err := c.Probe(cmd.Context(), payload)
		if result != nil {
			color.New(color.FgCyan).Fprintf(out, "Acknowledgment from %s after %s:\n", result.From, result.RTT.Round(time.Microsecond))
			fmt.Fprintln(out, client.PrettyPrintJSON(result.Raw))
		}
		if err != nil {
			return err
		}

		color.New(color.FgGreen).Fprintf(out, "✓ action %s\n", result.Ack.Action.Type)
		return nil
	},
}

func init() {
	f := probeCmd.Flags()
	f.StringVar(&probeText, "text", "hello", "phrase to send as {\"text\": ...}")
	f.StringVar(&probeJSON, "json", "", "raw JSON payload to send instead of --text")
	f.StringVar(&probeTarget, "target", "", "responder address (default BIND_HOST:BIND_PORT)")
	f.DurationVar(&probeTimeout, "timeout", 3*time.Second, "how long to wait for the acknowledgment")
	f.StringVar(&cfg.DestHost, "dest-host", cfg.DestHost, "host the acknowledgment is expected on")
	f.IntVar(&cfg.DestPort, "dest-port", cfg.DestPort, "port the acknowledgment is expected on")
}
