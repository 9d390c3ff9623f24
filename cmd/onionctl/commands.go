package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/HannahMarsh/onionnet/internal/api/api_functions"
	"github.com/HannahMarsh/onionnet/internal/api/structs"
	"github.com/HannahMarsh/onionnet/internal/network"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newLaunchCommand(opts *rootOptions) *cobra.Command {
	var nodes, users int

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Run a directory, relays and users in one process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			n, err := network.Launch(ctx, cfg, nodes, users)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "directory at %s, %d relays, %d users\n", n.DirectoryAddress, len(n.Relays), len(n.Users))

			<-ctx.Done()
			slog.Info("shutting down network...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return n.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().IntVarP(&nodes, "nodes", "n", 10, "number of relays")
	cmd.Flags().IntVarP(&users, "users", "u", 2, "number of users")
	return cmd
}

func newSendCommand(opts *rootOptions) *cobra.Command {
	var from, to int

	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Ask a user to send a message through the network",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			var result structs.SendResultApi
			err = api_functions.PostJSON(cmd.Context(), cfg.UserAddress(from)+"/sendMessage", structs.SendMessageApi{
				Message:           strings.Join(args, " "),
				DestinationUserID: to,
			}, &result)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent from user %d to user %d via relays %v\n", from, to, result.Circuit)
			return nil
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "sending user")
	cmd.Flags().IntVar(&to, "to", 1, "destination user")
	return cmd
}

func newRegistryCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "registry",
		Short: "List the relays in the directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			nodes, err := api_functions.NewDirectoryClient(cfg.Directory.Address).GetNodeRegistry(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, node := range nodes {
				fmt.Fprintf(out, "%d\t%s\t%s\t%d bytes\n", node.ID, node.Scheme, node.Address, len(node.PublicKey))
			}
			return nil
		},
	}
}

func newStatusCommand(opts *rootOptions) *cobra.Command {
	var relayID, userID int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the debug status of a relay or user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			var address string
			switch {
			case relayID >= 0:
				address = cfg.RelayAddress(relayID)
			case userID >= 0:
				address = cfg.UserAddress(userID)
			default:
				return errors.New("one of --relay or --user is required")
			}
			var status map[string]any
			if err = api_functions.GetJSON(cmd.Context(), address+"/getStatus", &status); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), status)
		},
	}
	cmd.Flags().IntVar(&relayID, "relay", -1, "relay ID")
	cmd.Flags().IntVar(&userID, "user", -1, "user ID")
	return cmd
}

func newPrometheusConfigCommand(opts *rootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "prometheus-config",
		Short: "Write a Prometheus scrape config for the configured nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return cfg.WritePrometheusConfig(path)
		},
	}
	cmd.Flags().StringVarP(&path, "output", "o", "prometheus.yml", "output file")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
