package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/server"
	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/stats"
)

func newSizeCmd(root *rootOptions) *cobra.Command {
	var (
		baseline   float64
		mde        float64
		confidence int
		power      int
		variants   int
		format     string
	)

	cmd := &cobra.Command{
		Use:   "size",
		Short: "Estimate the sample size per variant",
		Long: `Estimate how many visitors each variant needs to detect a relative lift
over the baseline conversion rate.

Confidence and power outside 80/85/90/95/99 use the 95% / 80% constants.

Examples:
  abcalc size --baseline 5 --mde 20
  abcalc size --baseline 2.5 --mde 10 --confidence 99 --power 90 --variants 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			in := stats.SampleSizeInput{
				BaselinePct:  baseline,
				MDEPct:       mde,
				Confidence:   root.cfg.Confidence,
				Power:        root.cfg.Power,
				VariantCount: root.cfg.Variants,
			}
			if cmd.Flags().Changed("confidence") {
				in.Confidence = stats.ConfidenceLevel(confidence)
			}
			if cmd.Flags().Changed("power") {
				in.Power = stats.Power(power)
			}
			if cmd.Flags().Changed("variants") {
				in.VariantCount = variants
			}
			root.warnFallback(in.Confidence, in.Confidence.Known(), "confidence")
			root.warnFallback(in.Power, in.Power.Known(), "power")

			res, err := stats.EstimateSampleSize(in)
			if err != nil {
				return fmt.Errorf("failed to estimate sample size: %w", err)
			}

			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), server.NewSampleSizeResponse(in, res))
			}
			printSampleSize(cmd.OutOrStdout(), in, res)
			return nil
		},
	}

	cmd.Flags().Float64VarP(&baseline, "baseline", "b", 0, "baseline conversion rate in percent (required)")
	cmd.Flags().Float64VarP(&mde, "mde", "m", 0, "minimum detectable effect, relative lift in percent (required)")
	cmd.Flags().IntVarP(&confidence, "confidence", "c", int(stats.DefaultConfidence), "confidence level in percent")
	cmd.Flags().IntVarP(&power, "power", "p", int(stats.DefaultPower), "statistical power in percent")
	cmd.Flags().IntVarP(&variants, "variants", "n", 2, "number of variants including control")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format (table or json)")
	cmd.MarkFlagRequired("baseline")
	cmd.MarkFlagRequired("mde")

	return cmd
}
