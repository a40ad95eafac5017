package arg

import (
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/SoarinFerret/TimerWarden/internal/ipc"
)

var (
	outputFormat string
	systemBus    bool
)

var rootCmd = &cobra.Command{
	Use:   "twctl",
	Short: "twctl is the command line tool for TimerWarden",
	Long: `twctl talks to the TimerWarden daemon over D-Bus.
Use it to add and run timers, dismiss completions and browse history.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch outputFormat {
		case "text", "json":
			return nil
		}
		return fmt.Errorf("unknown format %q, want text or json", outputFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "output format: text or json")
	rootCmd.PersistentFlags().BoolVar(&systemBus, "system", false, "talk to a daemon on the system bus")
}

// withClient connects to the daemon and runs fn with a client.
func withClient(fn func(c *ipc.Client) error) error {
	var (
		conn *dbus.Conn
		err  error
	)
	if systemBus {
		conn, err = dbus.ConnectSystemBus()
	} else {
		conn, err = dbus.ConnectSessionBus()
	}
	if err != nil {
		return fmt.Errorf("failed to connect to D-Bus: %w", err)
	}
	defer conn.Close()
	return fn(ipc.NewClient(conn))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
