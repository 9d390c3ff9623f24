package main

import (
	"fmt"
	"os"

	"github.com/HannahMarsh/onionnet/config"
	"github.com/HannahMarsh/onionnet/pkg/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

type rootOptions struct {
	ConfigFile string
	LogLevel   string
}

// loadConfig reads --config if given, otherwise config/config.yml.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.ConfigFile != "" {
		return config.LoadConfig(o.ConfigFile)
	}
	if _, err := config.InitGlobal(); err != nil {
		return nil, err
	}
	return config.GlobalConfig, nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "onionctl",
		Short: "Operate an onion routing network",
		Long: `onionctl launches a local onion routing network and talks to a running one.

Relays and users are addressed by ID. Addresses come from the config file,
or from base_relay_port+id and base_user_port+id for nodes it does not list.`,
		Example: `  # Start a directory, 10 relays and 2 users in this process
  onionctl launch --nodes 10 --users 2

  # Send "hello" from user 0 to user 1
  onionctl send --from 0 --to 1 hello`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.SetUpLogrusAndSlog(opts.LogLevel)
			_, err := maxprocs.Set()
			return err
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "configuration file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level")

	cmd.AddCommand(
		newLaunchCommand(opts),
		newSendCommand(opts),
		newRegistryCommand(opts),
		newStatusCommand(opts),
		newPrometheusConfigCommand(opts),
	)
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
