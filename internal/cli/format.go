package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/server"
	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/stats"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func checkFormat(format string) error {
	if format != formatTable && format != formatJSON {
		return fmt.Errorf("invalid format: must be '%s' or '%s'", formatTable, formatJSON)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printSampleSize(w io.Writer, in stats.SampleSizeInput, res stats.SampleSizeResult) {
	fmt.Fprintf(w, "BASELINE: %s → EXPECTED: %s\n", trimPercent(in.BaselinePct), trimPercent(res.ExpectedRatePct))
	fmt.Fprintf(w, "CONFIDENCE: %s (z=%.2f)  POWER: %s (z=%.2f)\n", in.Confidence, res.ZAlpha, in.Power, res.ZBeta)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sample size per variant: %s\n", formatNumber(res.PerVariant))
	fmt.Fprintf(w, "Total sample size (%d variants): %s\n", in.VariantCount, formatNumber(res.Total))
}

func printReport(w io.Writer, report *stats.Report) error {
	fmt.Fprintf(w, "CONFIDENCE: %s\n", report.Confidence)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "VARIANT\tVISITORS\tCONVERSIONS\tRATE\t%s CI\tIMPROVEMENT\tP-VALUE\tSIGNIFICANT\n", report.Confidence)

	c := report.Control
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t-\t-\t-\n",
		truncate(c.Name),
		formatNumber(c.Visitors),
		formatNumber(c.Conversions),
		formatPercent(c.Rate),
		formatInterval(c.CILower, c.CIUpper),
	)

	for _, r := range report.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.4f\t%s\n",
			truncate(r.Name),
			formatNumber(r.Visitors),
			formatNumber(r.Conversions),
			formatPercent(r.Rate),
			formatInterval(r.CILower, r.CIUpper),
			formatImprovement(r),
			r.PValue,
			yesNo(r.IsSignificant),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Control: %s. No correction for multiple comparisons is applied.\n", c.Name)
	for _, r := range report.Results {
		if r.Degenerate {
			fmt.Fprintf(w, "Note: %s and the control have zero variance; p-value reported as 1.\n", r.Name)
		}
	}
	return nil
}

func printReportJSON(w io.Writer, report *stats.Report) error {
	return writeJSON(w, server.NewSignificanceResponse(report))
}

func formatPercent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

func formatInterval(lower, upper float64) string {
	return fmt.Sprintf("[%.2f%%, %.2f%%]", lower*100, upper*100)
}

func formatImprovement(r stats.SignificanceResult) string {
	if !r.ImprovementDefined {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", r.RelativeImprovement)
}

// trimPercent prints a percentage input without trailing zeros.
func trimPercent(pct float64) string {
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", pct), "0"), ".")
	return s + "%"
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// truncate shortens name to 24 runes for table cells.
func truncate(name string) string {
	runes := []rune(name)
	if len(runes) > 24 {
		return string(runes[:21]) + "..."
	}
	return name
}

func formatNumber(n int) string {
	if n == math.MinInt {
		return strconv.Itoa(n)
	}
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%s,%03d,%03d", formatNumber(n/1000000), (n/1000)%1000, n%1000)
}
