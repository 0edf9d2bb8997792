package report

import (
	"encoding/csv"
	"strconv"

	"github.com/ppiankov/archivecost/internal/cost"
	"github.com/ppiankov/archivecost/internal/history"
)

// Generate writes one CSV table per section present in data, separated by
// a blank line. History and component tables use the log column layout.
func (r *CSVReporter) Generate(data Data) error {
	w := csv.NewWriter(r.Writer)
	first := true
	section := func(header []string, rows [][]string) {
		if !first {
			_ = w.Write(nil)
		}
		first = false
		_ = w.Write(header)
		_ = w.WriteAll(rows)
	}

	if data.Estimate != nil {
		rows := [][]string{breakdownRow(data.Estimate.Selected)}
		section(breakdownHeader, rows)

		if len(data.Estimate.Comparison) > 0 {
			cmp := make([][]string, 0, len(data.Estimate.Comparison))
			for _, b := range data.Estimate.Comparison {
				cmp = append(cmp, breakdownRow(b))
			}
			section(breakdownHeader, cmp)
		}
	}

	if len(data.Prices) > 0 {
		rows := make([][]string, 0, len(data.Prices))
		for _, p := range data.Prices {
			rows = append(rows, []string{
				string(p.Provider), p.Region,
				strconv.FormatFloat(p.Price.Value, 'f', -1, 64), string(p.Price.Source),
			})
		}
		section([]string{"Provider", "Region", "Rate ($/GB-mo)", "Source"}, rows)
	}

	if data.History != nil {
		rows := make([][]string, 0, len(data.History.Entries))
		for _, e := range data.History.Entries {
			rows = append(rows, []string{
				e.Timestamp.Format(history.TimestampLayout),
				strconv.Itoa(e.Pages),
				cost.FormatUSD(e.SizeGB),
				string(e.Provider),
				strconv.Itoa(e.RetentionMonths),
				cost.FormatUSD(e.Total),
			})
		}
		section([]string{"Timestamp", "Pages", "Size (GB)", "Provider", "Retention (mo)", "Total ($)"}, rows)
	}

	if len(data.Components) > 0 {
		rows := make([][]string, 0, len(data.Components))
		for _, c := range data.Components {
			rows = append(rows, []string{
				c.Component,
				cost.FormatUSD(c.Amount),
				string(c.Provider),
				c.Timestamp.Format(history.TimestampLayout),
			})
		}
		section([]string{"Cost Component", "Amount ($)", "Provider", "Timestamp"}, rows)
	}

	w.Flush()
	return w.Error()
}

var breakdownHeader = []string{
	"Provider", "Region", "Rate ($/GB-mo)", "Fallback",
	"Storage ($)", "OCR ($)", "Scanning ($)", "Manpower ($)", "License ($)", "Total ($)",
}

func breakdownRow(b cost.Breakdown) []string {
	return []string{
		string(b.Provider),
		b.Region,
		strconv.FormatFloat(b.Price.Value, 'f', -1, 64),
		strconv.FormatBool(b.Price.IsFallback()),
		cost.FormatUSD(b.Storage),
		cost.FormatUSD(b.OCR),
		cost.FormatUSD(b.Scanning),
		cost.FormatUSD(b.Manpower),
		cost.FormatUSD(b.License),
		cost.FormatUSD(b.Total),
	}
}
