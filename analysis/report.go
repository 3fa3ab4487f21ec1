// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package analysis

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Report collects what a full pipeline run learned.
type Report struct {
	Frequency     string
	Mode          string
	Observations  int
	Rates         []string
	LagOrder      int
	Criterion     string
	Deterministic string
	ConstantRates []string
	Horizon       int
	ScenarioCount int
	Clipped       []string
	RunID         string
	Elapsed       time.Duration

	Influence [][]*InfluenceResult

	// Accuracy nests compartment -> central method -> metric.
	Accuracy map[string]map[string]map[string]float64
}

// centralOrder fixes the row order of accuracy tables.
var centralOrder = []string{"mean", "median", "gmean", "hmean"}

// Summary renders the run as a plain text block.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Epidemic Forecast Report ===\n")
	fmt.Fprintf(&b, "Frequency:      %s\n", r.Frequency)
	fmt.Fprintf(&b, "Mode:           %s\n", r.Mode)
	fmt.Fprintf(&b, "Observations:   %d\n", r.Observations)
	fmt.Fprintf(&b, "Rates:          %s\n", strings.Join(r.Rates, ", "))
	fmt.Fprintf(&b, "Lag order:      %d (%s)\n", r.LagOrder, r.Criterion)
	fmt.Fprintf(&b, "Deterministic:  %s\n", r.Deterministic)
	if len(r.ConstantRates) > 0 {
		fmt.Fprintf(&b, "Constant rates: %s\n", strings.Join(r.ConstantRates, ", "))
	}
	fmt.Fprintf(&b, "Horizon:        %d\n", r.Horizon)
	fmt.Fprintf(&b, "Scenarios:      %d (%d clipped)\n", r.ScenarioCount, len(r.Clipped))
	if r.RunID != "" {
		fmt.Fprintf(&b, "Run:            %s in %s\n", r.RunID, r.Elapsed)
	}
	return b.String()
}

// ExportMarkdown writes the report as a small markdown document.
func (r *Report) ExportMarkdown(path string) error {
	// 1. Create the output file
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	// 2. Model block
	fmt.Fprintf(w, "# Epidemic forecast report\n\n")
	fmt.Fprintf(w, "- Frequency: %s\n", r.Frequency)
	fmt.Fprintf(w, "- Mode: %s\n", r.Mode)
	fmt.Fprintf(w, "- Observations: %d\n", r.Observations)
	fmt.Fprintf(w, "- Rates: %s\n", strings.Join(r.Rates, ", "))
	fmt.Fprintf(w, "- Lag order: %d (criterion %s, deterministic %s)\n", r.LagOrder, r.Criterion, r.Deterministic)
	if len(r.ConstantRates) > 0 {
		fmt.Fprintf(w, "- Constant rates: %s\n", strings.Join(r.ConstantRates, ", "))
	}
	fmt.Fprintf(w, "- Horizon: %d\n", r.Horizon)
	fmt.Fprintf(w, "- Scenarios: %d (%d clipped)\n", r.ScenarioCount, len(r.Clipped))
	if r.RunID != "" {
		fmt.Fprintf(w, "- Run: %s in %s\n", r.RunID, r.Elapsed)
	}

	// 3. Influence table
	hasInfluence := false
	for _, row := range r.Influence {
		for _, res := range row {
			if res != nil {
				hasInfluence = true
			}
		}
	}
	if hasInfluence {
		fmt.Fprintf(w, "\n## Rate influence\n\n")
		fmt.Fprintf(w, "| Cause | Effect | F | p-value | Significant |\n")
		fmt.Fprintf(w, "|---|---|---|---|---|\n")
		for _, row := range r.Influence {
			for _, res := range row {
				if res == nil {
					continue
				}
				fmt.Fprintf(w, "| %s | %s | %.4f | %.4f | %t |\n",
					res.Cause, res.Effect, res.FStatistic, res.PValue, res.Significant)
			}
		}
	}

	// 4. Accuracy tables, one row per compartment and central method
	if len(r.Accuracy) > 0 {
		comps := make([]string, 0, len(r.Accuracy))
		for name := range r.Accuracy {
			comps = append(comps, name)
		}
		sort.Strings(comps)

		fmt.Fprintf(w, "\n## Forecast accuracy\n\n")
		fmt.Fprintf(w, "| Compartment | Method | %s |\n", strings.Join(MetricNames, " | "))
		fmt.Fprintf(w, "|---|---|%s\n", strings.Repeat("---|", len(MetricNames)))
		for _, comp := range comps {
			for _, method := range centralOrder {
				metrics, ok := r.Accuracy[comp][method]
				if !ok {
					continue
				}
				cells := make([]string, len(MetricNames))
				for i, m := range MetricNames {
					cells[i] = fmt.Sprintf("%.4f", metrics[m])
				}
				fmt.Fprintf(w, "| %s | %s | %s |\n", comp, method, strings.Join(cells, " | "))
			}
		}
	}

	return w.Flush()
}
