package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/miretskiy/mm1ksim/simulator"
)

// Reporter prints a run's empirical metrics next to the closed-form values
type Reporter struct {
	w io.Writer
}

// NewReporter creates a reporter writing to w
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Write prints result. It satisfies the sweep sink interface.
func (r *Reporter) Write(result simulator.RunResult) error {
	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	c := result.Config
	e := result.Empirical
	th := result.Theory

	fmt.Fprintf(tw, "Parameters\tλ=%g\tμ=%g\tρ=%g\tK=%d\n", c.ArrivalRate, c.ServiceRate, th.Rho, c.Capacity)
	fmt.Fprintf(tw, "Window\t[%g, %g]\tseed=%d\tdrain=%s\n", c.StartTime, c.FinishTime, result.Seed, c.DrainPolicy)
	fmt.Fprintf(tw, "Elements\t%s\tserved=%s\trejected=%s\tdrained=%s\n",
		humanize.Comma(int64(e.Elements)), humanize.Comma(int64(e.Served)),
		humanize.Comma(int64(e.Rejected)), humanize.Comma(int64(e.Drained)))
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "\tempirical\ttheoretical\terror")
	fmt.Fprintf(tw, "Mean number in system\t%.6f\t%.6f\t%.2f%%\n",
		e.MeanCount, th.MeanCount, 100*result.Comparison.MeanCountError)
	fmt.Fprintf(tw, "Mean sojourn time\t%.6f\t%.6f\t%.2f%%\n",
		e.MeanSojourn, th.MeanSojourn, 100*result.Comparison.MeanSojournError)
	fmt.Fprintf(tw, "Loss rate\t%.6g\t%.6g\t%.3g\n",
		e.LossRate, th.LossProbability, result.Comparison.LossRateError)
	fmt.Fprintln(tw)

	return tw.Flush()
}

// WriteSweepTable prints one row per sweep point
func WriteSweepTable(w io.Writer, results []simulator.RunResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "rho\tmeanCount\ttheory\tmeanSojourn\ttheory\tlossRate\ttheory\t")
	for _, r := range results {
		fmt.Fprintf(tw, "%.2f\t%.4f\t%.4f\t%.4f\t%.4f\t%.3g\t%.3g\t\n",
			r.Theory.Rho,
			r.Empirical.MeanCount, r.Theory.MeanCount,
			r.Empirical.MeanSojourn, r.Theory.MeanSojourn,
			r.Empirical.LossRate, r.Theory.LossProbability)
	}
	return tw.Flush()
}
