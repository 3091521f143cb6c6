package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"riverwm.dev/river/internal/river/config"
)

// newDoctorCmd adds a "river doctor" subcommand that loads and prints
// the resolved configuration without starting the server — useful for
// debugging a flags/env/file layering mistake before it shows up as a
// compositor that silently won't bind its wm socket.
func newDoctorCmd(v *viper.Viper, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Print the resolved configuration and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath, v)
			if err != nil {
				return err
			}
			fmt.Printf("log_level: %s\n", cfg.LogLevel)
			fmt.Printf("wm_socket: %s\n", cfg.WMSocket)
			fmt.Printf("transaction_timeout_ms: %d\n", cfg.TransactionTimeoutMillis)
			fmt.Printf("border_width: %d\n", cfg.BorderWidth)
			return nil
		},
	}
}
