package main

import (
	"fmt"
	"strings"

	"github.com/entrhq/safearena/pkg/benchmark"
	"github.com/entrhq/safearena/pkg/browser"
	"github.com/entrhq/safearena/pkg/config"
	"github.com/entrhq/safearena/pkg/instance"
	"github.com/entrhq/safearena/pkg/logging"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// newRootCmd builds the command tree. Commands that talk to the instance
// load the configuration themselves so tasks and version work without it.
func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "safearena",
		Short:         "Manage SafeArena web application instances",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.TeeStderr(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Also write log entries to stderr")

	root.AddCommand(
		newResetCmd(),
		newStatusCmd(),
		newLoginCmd(),
		newTasksCmd(),
		newVersionCmd(),
	)
	return root
}

// newManager loads the configuration, points the logger at the configured
// directory and level, and builds the instance manager.
func newManager() (*instance.Manager, *config.Config, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	if cfg.LogDir != "" {
		logging.SetDirectory(cfg.LogDir)
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		return nil, nil, nil, err
	}

	logger, err := logging.NewLogger("instance")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	m, err := instance.New(instance.WithConfig(cfg), instance.WithLogger(logger))
	if err != nil {
		_ = logger.Close()
		return nil, nil, nil, err
	}
	return m, cfg, logger, nil
}

func newResetCmd() *cobra.Command {
	var skipIfNotSet bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the instance and wait until every site is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, logger, err := newManager()
			if err != nil {
				return err
			}
			defer logger.Close()

			if err := m.FullReset(cmd.Context(), skipIfNotSet); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "instance ready")
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipIfNotSet, "skip-if-not-set", false,
		"Succeed without resetting when "+config.ResetURLVar+" is not set")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that every site of the instance is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, logger, err := newManager()
			if err != nil {
				return err
			}
			defer logger.Close()

			if err := m.CheckStatus(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			urls := m.URLs()
			for _, id := range urls.Ordered() {
				fmt.Fprintf(out, "%-15s %s\n", id, urls[id])
			}
			fmt.Fprintln(out, "all sites reachable")
			return nil
		},
	}
}

func newLoginCmd() *cobra.Command {
	var (
		headless     bool
		storageState string
	)

	cmd := &cobra.Command{
		Use:   "login <site>...",
		Short: "Log into sites in a fresh browser session",
		Long: "Log into each named site (reddit, gitlab, shopping, shopping_admin) " +
			"with its configured account. Use --storage-state to keep the session.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, cfg, logger, err := newManager()
			if err != nil {
				return err
			}
			defer logger.Close()

			if !cmd.Flags().Changed("headless") {
				headless = cfg.Headless
			}

			session, err := browser.NewSession(browser.SessionOptions{
				Headless: headless,
				Timeout:  float64(cfg.BrowserTimeout.Milliseconds()),
				Output:   logger.Writer(),
			})
			if err != nil {
				return err
			}
			defer session.Close()

			opener := browser.Opener(session.Page)
			for _, site := range args {
				logger.Infof("Logging into %s", site)
				if err := m.UILogin(cmd.Context(), site, opener); err != nil {
					return fmt.Errorf("login to %s failed: %w", site, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "logged into %s\n", site)
			}

			if storageState != "" {
				if err := session.SaveStorageState(storageState); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "storage state written to %s\n", storageState)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&headless, "headless", true, "Run the browser without a window (default from SA_HEADLESS)")
	cmd.Flags().StringVar(&storageState, "storage-state", "", "Write cookies and local storage to this file")
	return cmd
}

func newTasksCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "tasks [benchmark]",
		Short: "List the task ids of a benchmark",
		Long:  "List the task ids of a benchmark (" + strings.Join(benchmark.Names(), ", ") + ").",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "safearena_all"
			if len(args) == 1 {
				name = args[0]
			}

			b, err := benchmark.Get(name)
			if err != nil {
				return err
			}
			ids, err := b.Filter(filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", `Glob over task ids, e.g. "safearena.2??"`)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "safearena v%s\n", version)
		},
	}
}
