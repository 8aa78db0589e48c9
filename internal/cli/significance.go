package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/stats"
	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/store"
)

func newSignificanceCmd(root *rootOptions) *cobra.Command {
	var (
		variantArgs []string
		experiment  string
		confidence  int
		format      string
	)

	cmd := &cobra.Command{
		Use:     "significance",
		Aliases: []string{"sig"},
		Short:   "Test treatments against the control for significance",
		Long: `Run a two-sided two-proportion z-test of every treatment against the control.

The first --variant is the control. Each variant is NAME:VISITORS:CONVERSIONS;
the name may be omitted ("5000:500"). Alternatively, read the counts of a
recorded experiment from the database with --experiment.

Examples:
  abcalc significance --variant "Control:5000:500" --variant "Variant 1:5000:600"
  abcalc significance --experiment hero --confidence 99 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			if (experiment == "") == (len(variantArgs) == 0) {
				return errors.New("use --variant (at least twice) OR --experiment")
			}

			level := root.cfg.Confidence
			if cmd.Flags().Changed("confidence") {
				level = stats.ConfidenceLevel(confidence)
			}
			root.warnFallback(level, level.Known(), "confidence")

			var variants []stats.Variant
			if experiment != "" {
				err := root.withStore(func(s *store.SQLiteStore) error {
					var err error
					variants, err = s.GetVariants(context.Background(), experiment)
					if errors.Is(err, store.ErrNotFound) {
						return fmt.Errorf("experiment '%s' not found", experiment)
					}
					return err
				})
				if err != nil {
					return err
				}
			} else {
				var err error
				variants, err = parseVariants(variantArgs)
				if err != nil {
					return err
				}
			}

			report, err := stats.Analyze(variants, level)
			if err != nil {
				return fmt.Errorf("failed to test significance: %w", err)
			}

			if format == formatJSON {
				return printReportJSON(cmd.OutOrStdout(), report)
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringArrayVarP(&variantArgs, "variant", "v", nil, "variant as NAME:VISITORS:CONVERSIONS, control first (repeatable)")
	cmd.Flags().StringVarP(&experiment, "experiment", "e", "", "read counts for this experiment from the database")
	cmd.Flags().IntVarP(&confidence, "confidence", "c", int(stats.DefaultConfidence), "confidence level in percent")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format (table or json)")

	return cmd
}

func parseVariants(raw []string) ([]stats.Variant, error) {
	variants := make([]stats.Variant, len(raw))
	for i, s := range raw {
		v, err := parseVariant(s, i)
		if err != nil {
			return nil, err
		}
		variants[i] = v
	}
	return variants, nil
}

// parseVariant reads NAME:VISITORS:CONVERSIONS. The name may itself contain
// colons, so the counts are taken from the right.
func parseVariant(s string, index int) (stats.Variant, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return stats.Variant{}, fmt.Errorf("invalid variant %q: want NAME:VISITORS:CONVERSIONS", s)
	}

	n := len(parts)
	visitors, err := strconv.Atoi(strings.TrimSpace(parts[n-2]))
	if err != nil {
		return stats.Variant{}, fmt.Errorf("invalid visitors in variant %q", s)
	}
	conversions, err := strconv.Atoi(strings.TrimSpace(parts[n-1]))
	if err != nil {
		return stats.Variant{}, fmt.Errorf("invalid conversions in variant %q", s)
	}

	name := strings.TrimSpace(strings.Join(parts[:n-2], ":"))
	if name == "" {
		name = defaultVariantName(index)
	}

	return stats.Variant{Name: name, Visitors: visitors, Conversions: conversions}, nil
}

func defaultVariantName(index int) string {
	if index == 0 {
		return "Control"
	}
	return fmt.Sprintf("Variant %d", index)
}
