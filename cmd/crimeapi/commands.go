package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"stpaul-crime/config"
	"stpaul-crime/core/appbootstrap"
	"stpaul-crime/core/store"
	"stpaul-crime/core/utils"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "crimeapi",
		Short:         "St. Paul crime incidents REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("CRIME_CONFIG"), "path to a YAML config file (CRIME_* env vars override it)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(newServeCmd(opts), newMigrateCmd(opts))
	return root
}

func (o *rootOptions) load() (*config.AppConfig, *utils.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	level := cfg.Log.Level
	if o.debug {
		level = "debug"
	}
	return cfg, utils.NewLoggerWithOptions(level, cfg.Log.Format, nil), nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.ListenAddr = listen
			}
			return appbootstrap.Run(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address, overrides listen_addr")
	return cmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			db, err := appbootstrap.OpenStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return db.Close()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			db, err := store.NewDB(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()
			states, err := store.MigrationStatus(cmd.Context(), db, store.DialectFor(cfg))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
			for _, st := range states {
				state, at := "pending", "-"
				if st.Applied {
					state = "applied"
					if st.AppliedAt != nil {
						at = st.AppliedAt.Format(time.RFC3339)
					}
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", st.Version, state, at, st.Path)
			}
			return tw.Flush()
		},
	})
	return cmd
}
