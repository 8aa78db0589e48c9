package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/server"
	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/stats"
)

func newLevelsCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "levels",
		Short: "Show the supported confidence and power levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), server.NewLevelsResponse())
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "LEVEL\tZ ALPHA (CONFIDENCE)\tZ BETA (POWER)")
			for i, c := range stats.ConfidenceLevels {
				p := stats.PowerLevels[i]
				fmt.Fprintf(w, "%s\t%.2f\t%.2f\n", c, c.ZAlpha(), p.ZBeta())
			}
			fmt.Fprintf(w, "other\t%.2f\t%.2f\n", stats.DefaultZAlpha, stats.DefaultZBeta)
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format (table or json)")
	return cmd
}
