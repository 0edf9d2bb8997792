package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/ppiankov/archivecost/internal/analyzer"
	"github.com/ppiankov/archivecost/internal/cost"
	"github.com/ppiankov/archivecost/internal/estimator"
	"github.com/ppiankov/archivecost/internal/history"
)

// Generate writes human-readable terminal output.
func (r *TextReporter) Generate(data Data) error {
	w := &errWriter{w: r.Writer}

	w.println("archivecost - Document Archive Cost Report")
	w.println(strings.Repeat("=", 42))
	w.println("")

	if data.Estimate != nil {
		if err := writeTextEstimate(w, r.Writer, data.Estimate); err != nil {
			return err
		}
	}
	if len(data.Prices) > 0 {
		if err := writeTextPrices(w, r.Writer, data.Prices); err != nil {
			return err
		}
	}
	if data.History != nil {
		if err := writeTextHistory(w, r.Writer, data.History); err != nil {
			return err
		}
	}
	if len(data.Components) > 0 {
		if err := writeTextComponents(w, r.Writer, data.Components); err != nil {
			return err
		}
	}

	if len(data.Errors) > 0 {
		w.printf("\nWarnings (%d):\n", len(data.Errors))
		for _, e := range data.Errors {
			w.printf("  - %s\n", e)
		}
	}
	return w.err
}

func writeTextEstimate(w *errWriter, out io.Writer, res *estimator.Result) error {
	in := res.Inputs
	sel := res.Selected

	w.printf("Provider:      %s (%s)\n", sel.Provider, sel.Region)
	w.printf("Storage rate:  $%.4f per GB/month%s\n", sel.Price.Value, sourceMarker(sel.Price))
	w.printf("Pages:         %d\n", in.Pages)
	w.printf("Size:          %s GB\n", cost.FormatUSD(in.SizeGB))
	w.printf("Retention:     %d months\n", in.RetentionMonths)
	w.printf("Effort:        %s\n", in.Effort)
	w.println("")

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	tw2 := &errWriter{w: tw}
	tw2.printf("COST COMPONENT\tAMOUNT\n")
	tw2.printf("--------------\t------\n")
	for _, row := range []struct {
		name   string
		amount float64
	}{
		{history.ComponentStorage, sel.Storage},
		{history.ComponentOCR, sel.OCR},
		{history.ComponentManpower, sel.Manpower},
		{history.ComponentScanning, sel.Scanning},
		{"Subtotal", sel.Subtotal},
		{"License", sel.License},
		{"Total", sel.Total},
	} {
		tw2.printf("%s\t%s\n", row.name, usd(row.amount))
	}
	if tw2.err != nil {
		return tw2.err
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !res.Recorded() {
		w.println("")
		w.println("Estimate computed but not recorded in history.")
	}

	if len(res.Comparison) > 0 {
		w.println("")
		w.println("Provider comparison")
		w.println("-------------------")
		if err := writeBreakdownTable(out, res.Comparison); err != nil {
			return err
		}
	}

	if res.Recommendation != nil {
		w.println("")
		rec := res.Recommendation
		names := make([]string, 0, len(rec.Providers))
		for _, p := range rec.Providers {
			names = append(names, string(p))
		}
		if rec.Tied() {
			w.printf("Recommended (tie): %s at %s\n", strings.Join(names, ", "), usd(rec.Total))
		} else {
			w.printf("Recommended: %s at %s\n", names[0], usd(rec.Total))
		}
	}

	if fb := res.FallbackUsed(); len(fb) > 0 {
		w.println("")
		for _, p := range fb {
			w.printf("Using fallback storage rate for %s.\n", p)
		}
	}
	w.println("")
	return w.err
}

func writeBreakdownTable(out io.Writer, rows []cost.Breakdown) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	w := &errWriter{w: tw}
	w.printf("PROVIDER\tREGION\tRATE/GB\tSTORAGE\tOCR\tSCANNING\tMANPOWER\tLICENSE\tTOTAL\n")
	w.printf("--------\t------\t-------\t-------\t---\t--------\t--------\t-------\t-----\n")
	for _, b := range rows {
		w.printf("%s\t%s\t$%.4f%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.Provider, b.Region, b.Price.Value, sourceMarker(b.Price),
			usd(b.Storage), usd(b.OCR), usd(b.Scanning), usd(b.Manpower), usd(b.License), usd(b.Total))
	}
	if w.err != nil {
		return w.err
	}
	return tw.Flush()
}

func writeTextPrices(w *errWriter, out io.Writer, prices []PriceRow) error {
	w.println("Storage rates")
	w.println("-------------")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	tw2 := &errWriter{w: tw}
	tw2.printf("PROVIDER\tREGION\tRATE/GB-MONTH\tSOURCE\n")
	tw2.printf("--------\t------\t-------------\t------\n")
	for _, p := range prices {
		tw2.printf("%s\t%s\t$%.4f\t%s\n", p.Provider, p.Region, p.Price.Value, p.Price.Source)
	}
	if tw2.err != nil {
		return tw2.err
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	w.println("")
	return w.err
}

func writeTextHistory(w *errWriter, out io.Writer, res *analyzer.AnalysisResult) error {
	if len(res.Entries) == 0 {
		w.println("No estimates match.")
		w.println("")
		writeTextSummary(w, res.Summary)
		return w.err
	}

	w.printf("Found %d estimates totalling %s\n\n", res.Summary.TotalEstimates, usd(res.Summary.TotalSpend))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	tw2 := &errWriter{w: tw}
	tw2.printf("TIMESTAMP\tPAGES\tSIZE (GB)\tPROVIDER\tRETENTION (MO)\tTOTAL\n")
	tw2.printf("---------\t-----\t---------\t--------\t--------------\t-----\n")
	for _, e := range res.Entries {
		tw2.printf("%s\t%d\t%s\t%s\t%d\t%s\n",
			e.Timestamp.Format(history.TimestampLayout), e.Pages, cost.FormatUSD(e.SizeGB),
			e.Provider, e.RetentionMonths, usd(e.Total))
	}
	if tw2.err != nil {
		return tw2.err
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	w.println("")
	writeTextSummary(w, res.Summary)
	return w.err
}

func writeTextSummary(w *errWriter, s analyzer.Summary) {
	w.println("Summary")
	w.println("-------")
	w.printf("Entries scanned:   %d\n", s.TotalEntriesScanned)
	w.printf("Matching entries:  %d\n", s.TotalEstimates)
	w.printf("Total pages:       %d\n", s.TotalPages)
	w.printf("Total estimated:   %s\n", usd(s.TotalSpend))

	if len(s.ByProvider) > 0 {
		w.printf("By provider:       %s\n", strings.Join(formatProviderStats(s.ByProvider), ", "))
	}
	w.println("")
}

func writeTextComponents(w *errWriter, out io.Writer, records []history.ComponentRecord) error {
	w.println("Cost components")
	w.println("---------------")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	tw2 := &errWriter{w: tw}
	tw2.printf("TIMESTAMP\tPROVIDER\tCOMPONENT\tAMOUNT\n")
	tw2.printf("---------\t--------\t---------\t------\n")
	for _, r := range records {
		tw2.printf("%s\t%s\t%s\t%s\n", r.Timestamp.Format(history.TimestampLayout), r.Provider, r.Component, usd(r.Amount))
	}
	if tw2.err != nil {
		return tw2.err
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	w.println("")
	return w.err
}

func sourceMarker(p cost.PriceResult) string {
	switch p.Source {
	case cost.SourceFallback:
		return " (fallback)"
	case cost.SourceOverride:
		return " (custom)"
	}
	return ""
}

func usd(v float64) string {
	return "$" + cost.FormatUSD(v)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func formatProviderStats(m map[cost.Provider]analyzer.ProviderStats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		st := m[cost.Provider(k)]
		parts = append(parts, fmt.Sprintf("%s=%d (avg %s)", k, st.Count, usd(st.Average)))
	}
	return parts
}
