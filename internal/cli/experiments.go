package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/store"
)

func newExperimentsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "experiments",
		Aliases: []string{"list"},
		Short:   "List experiments in the database",
		Long:    `List recorded experiments with their variant count and distinct-visitor totals.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withStore(func(s *store.SQLiteStore) error {
				return listExperiments(cmd, s)
			})
		},
	}
}

func listExperiments(cmd *cobra.Command, s store.Source) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	experiments, err := s.ListExperiments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list experiments: %w", err)
	}

	if len(experiments) == 0 {
		fmt.Fprintln(out, "No experiments yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVARIANTS\tVISITORS\tCONVERSIONS\tCREATED")

	for _, exp := range experiments {
		variants, err := s.GetVariants(ctx, exp.Name)
		if err != nil {
			return fmt.Errorf("failed to get counts for experiment %s: %w", exp.Name, err)
		}

		totalVisitors := 0
		totalConversions := 0
		for _, v := range variants {
			totalVisitors += v.Visitors
			totalConversions += v.Conversions
		}

		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			exp.Name,
			len(exp.Variants),
			formatNumber(totalVisitors),
			formatNumber(totalConversions),
			exp.CreatedAt.Format("2006-01-02"),
		)
	}

	return w.Flush()
}
