package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"riverwm.dev/river/internal/river/config"
	"riverwm.dev/river/internal/river/rlog"
	"riverwm.dev/river/internal/river/server"
	"riverwm.dev/river/internal/river/session"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configPath string

	root := &cobra.Command{
		Use:   "river",
		Short: "A dynamic tiling Wayland compositor core",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, v)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file")
	root.PersistentFlags().String("log-level", "", "override the configured log level (debug|info|warn|error)")
	root.PersistentFlags().String("wm-socket", "", "unix socket path the wm protocol listens on")
	root.PersistentFlags().Int("transaction-timeout-ms", 0, "transaction coordinator timeout in milliseconds")
	_ = v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("wm_socket", root.PersistentFlags().Lookup("wm-socket"))
	_ = v.BindPFlag("transaction_timeout_ms", root.PersistentFlags().Lookup("transaction-timeout-ms"))

	root.AddCommand(newDoctorCmd(v, &configPath))
	return root
}

func runServer(cfg config.Config) error {
	rlog.SetLevel(cfg.LogLevel)
	s := server.New(cfg)

	if sess, err := session.Open("/dev/tty0"); err == nil {
		s.Session = sess
	} else {
		log.Warn("session: VT backend unavailable, running without VT switching", "err", err)
	}

	defer s.Deinit()
	return s.Run()
}
