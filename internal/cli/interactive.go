package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/stats"
)

// Defaults offered by the prompts.
const (
	promptBaseline    = "5"
	promptMDE         = "20"
	promptVariants    = "2"
	promptVisitors    = "5000"
	promptControlConv = "500"
	promptVariantConv = "600"
	maxPromptVariants = 5
)

var modes = []string{
	"Sample size (plan an experiment)",
	"Significance (analyze results)",
}

func newInteractiveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Prompt for inputs and run a calculator",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runInteractive(cmd, root)
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		},
	}
}

func runInteractive(cmd *cobra.Command, root *rootOptions) error {
	mode, _, err := (&promptui.Select{Label: "Calculator", Items: modes}).Run()
	if err != nil {
		return err
	}

	confidence, err := selectConfidence(root.cfg.Confidence)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)

	if mode == 0 {
		in, err := promptSampleSize(root, confidence)
		if err != nil {
			return err
		}
		res, err := stats.EstimateSampleSize(in)
		if err != nil {
			return fmt.Errorf("failed to estimate sample size: %w", err)
		}
		printSampleSize(out, in, res)
		return nil
	}

	variants, err := promptVariantCounts()
	if err != nil {
		return err
	}
	report, err := stats.Analyze(variants, confidence)
	if err != nil {
		return fmt.Errorf("failed to test significance: %w", err)
	}
	return printReport(out, report)
}

func promptSampleSize(root *rootOptions, confidence stats.ConfidenceLevel) (stats.SampleSizeInput, error) {
	power, err := selectPower(root.cfg.Power)
	if err != nil {
		return stats.SampleSizeInput{}, err
	}

	baseline, err := ask("Baseline conversion rate (%)", promptBaseline, validateFloat(0.1, 99.9))
	if err != nil {
		return stats.SampleSizeInput{}, err
	}
	mde, err := ask("Minimum detectable effect (% relative)", promptMDE, validateFloat(1, 100))
	if err != nil {
		return stats.SampleSizeInput{}, err
	}
	variants, err := ask("Number of variants", strconv.Itoa(root.cfg.Variants), validateInt(2, maxPromptVariants))
	if err != nil {
		return stats.SampleSizeInput{}, err
	}

	in := stats.SampleSizeInput{
		Confidence: confidence,
		Power:      power,
	}
	in.BaselinePct, _ = strconv.ParseFloat(baseline, 64)
	in.MDEPct, _ = strconv.ParseFloat(mde, 64)
	in.VariantCount, _ = strconv.Atoi(variants)
	return in, nil
}

func promptVariantCounts() ([]stats.Variant, error) {
	n, err := ask("Number of variants (including control)", promptVariants, validateInt(2, maxPromptVariants))
	if err != nil {
		return nil, err
	}
	count, _ := strconv.Atoi(n)

	variants := make([]stats.Variant, count)
	for i := range variants {
		name := defaultVariantName(i)
		conv := promptVariantConv
		if i == 0 {
			conv = promptControlConv
		}

		visitors, err := ask(name+" visitors", promptVisitors, validateInt(1, -1))
		if err != nil {
			return nil, err
		}
		conversions, err := ask(name+" conversions", conv, validateInt(0, -1))
		if err != nil {
			return nil, err
		}

		variants[i].Name = name
		variants[i].Visitors, _ = strconv.Atoi(visitors)
		variants[i].Conversions, _ = strconv.Atoi(conversions)
	}
	return variants, nil
}

func selectConfidence(def stats.ConfidenceLevel) (stats.ConfidenceLevel, error) {
	items := make([]string, len(stats.ConfidenceLevels))
	cursor := 0
	for i, c := range stats.ConfidenceLevels {
		items[i] = fmt.Sprintf("%s (z=%.2f)", c, c.ZAlpha())
		if c == def {
			cursor = i
		}
	}

	idx, _, err := (&promptui.Select{Label: "Confidence level", Items: items, CursorPos: cursor}).Run()
	if err != nil {
		return 0, err
	}
	return stats.ConfidenceLevels[idx], nil
}

func selectPower(def stats.Power) (stats.Power, error) {
	items := make([]string, len(stats.PowerLevels))
	cursor := 0
	for i, p := range stats.PowerLevels {
		items[i] = fmt.Sprintf("%s (z=%.2f)", p, p.ZBeta())
		if p == def {
			cursor = i
		}
	}

	idx, _, err := (&promptui.Select{Label: "Statistical power", Items: items, CursorPos: cursor}).Run()
	if err != nil {
		return 0, err
	}
	return stats.PowerLevels[idx], nil
}

func ask(label, def string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
		Validate:  validate,
	}
	return prompt.Run()
}

// validateFloat accepts numbers in [lo, hi].
func validateFloat(lo, hi float64) promptui.ValidateFunc {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.New("enter a number")
		}
		if v < lo || v > hi {
			return fmt.Errorf("must be between %g and %g", lo, hi)
		}
		return nil
	}
}

// validateInt accepts integers >= lo, and <= hi unless hi is negative.
func validateInt(lo, hi int) promptui.ValidateFunc {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("enter a whole number")
		}
		if v < lo {
			return fmt.Errorf("must be at least %d", lo)
		}
		if hi >= 0 && v > hi {
			return fmt.Errorf("must be at most %d", hi)
		}
		return nil
	}
}
