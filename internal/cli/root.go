package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/config"
)

// rootOptions holds the global flags and the configuration they resolve to.
type rootOptions struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "abcalc",
		Short: "Sample size and significance calculator for A/B/n tests",
		Long: `abcalc computes the two core statistics of an A/B/n experiment:

  - the sample size each variant needs to detect a relative lift
  - whether observed conversions of treatments differ from the control

Inputs come from flags, an interactive prompt, or an experiment database.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv(config.EnvPrefix+"CONFIG"), "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "experiment database path (default from config)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newSizeCmd(opts),
		newSignificanceCmd(opts),
		newInteractiveCmd(opts),
		newExperimentsCmd(opts),
		newLevelsCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

func Execute() error {
	return newRootCmd().Execute()
}

func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	// Flags win over file and environment.
	if cmd.Flags().Changed("db") {
		cfg.DBPath = o.dbPath
	}
	if cmd.Flags().Changed("log-level") {
		if _, err := config.ParseLevel(o.logLevel); err != nil {
			return err
		}
		cfg.Log.Level = o.logLevel
	}

	o.cfg = cfg
	o.logger = cfg.Log.NewLogger(cmd.ErrOrStderr())
	return nil
}

// warnFallback logs when a level resolves through the default z constant.
func (o *rootOptions) warnFallback(c fmt.Stringer, known bool, kind string) {
	if !known {
		o.logger.Warn(kind+" not in z table, using default constant", kind, c.String())
	}
}
