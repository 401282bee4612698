// Package output provides utilities for formatting and displaying solver results.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/iwvelando/water-builder/internal/builder"
	"github.com/iwvelando/water-builder/pkg/mathutil"
	"github.com/iwvelando/water-builder/pkg/salts"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(result builder.Result) {
	_ = WritePretty(os.Stdout, result, nil)
}

// PrettyBestFitFormat outputs a human-readable best fit report.
func PrettyBestFitFormat(out builder.BestFitResult) {
	_ = WritePrettyBestFit(os.Stdout, out, nil)
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(result builder.Result) {
	fmt.Print(CsvString(result, nil))
}

// JSONFormat outputs the result document as indented JSON.
func JSONFormat(result builder.Result) {
	_ = WriteJSON(os.Stdout, NewResultDocument(result, nil))
}

// JSONBestFitFormat outputs the best fit document as indented JSON.
func JSONBestFitFormat(out builder.BestFitResult) {
	_ = WriteJSON(os.Stdout, NewBestFitDocument(out, nil))
}

// WritePretty renders result as aligned tables. A nil catalog means the
// default catalog.
func WritePretty(w io.Writer, result builder.Result, catalog *salts.Catalog) error {
	doc := NewResultDocument(result, catalog)
	p := message.NewPrinter(language.English)

	if !doc.Feasible {
		_, err := p.Fprintf(w, "--- No feasible salt combination (goal %s) ---\nReason: %s\n", doc.Goal, doc.Reason)
		return err
	}

	var buf bytes.Buffer
	_, _ = p.Fprintf(&buf, "--- Salt additions for %.1f L (goal %s) ---\n", doc.TargetVolume, doc.Goal)
	_, _ = p.Fprintf(&buf, "%-36s | %9s | %10s\n", "Salt", "g/L", "Grams")
	_, _ = p.Fprintf(&buf, "%-36s | %9s | %10s\n", "____", "___", "_____")
	added := 0
	for _, s := range doc.Salts {
		if mathutil.IsZero(s.GramsPerLiter) {
			continue
		}
		added++
		_, _ = p.Fprintf(&buf, "%-36s | %9.4f | %10.2f\n", s.Name+" ("+s.Formula+")", s.GramsPerLiter, s.Grams)
	}
	if added == 0 {
		_, _ = p.Fprintf(&buf, "(no salts needed)\n")
	}
	_, _ = p.Fprintf(&buf, "%-36s | %9.4f | %10.2f\n\n", "Total", doc.TotalMass, doc.TotalGrams)

	_, _ = p.Fprintf(&buf, "%-18s | %10s | %10s | %10s | %10s | %s\n", "Ion", "Start", "Result", "Target", "Delta", "Constraint")
	_, _ = p.Fprintf(&buf, "%-18s | %10s | %10s | %10s | %10s | %s\n", "___", "_____", "______", "______", "_____", "__________")
	for _, row := range doc.Ions {
		_, _ = p.Fprintf(&buf, "%-18s | %10.2f | %10.2f | %10.2f | %+10.2f | %s\n",
			row.Ion+" ("+row.Symbol+")", row.Start, row.Result, row.Target, row.Delta, row.Constraint)
	}

	_, _ = p.Fprintf(&buf, "\nScore (mean squared error): %.4f\n", doc.Score)
	if len(doc.Violations) > 0 {
		_, _ = p.Fprintf(&buf, "Unmet constraints:\n")
		for _, v := range doc.Violations {
			_, _ = p.Fprintf(&buf, "  %s\n", v)
		}
	}
	if doc.Iterations > 0 {
		_, _ = p.Fprintf(&buf, "Sweeps: %d (converged: %t)\n", doc.Iterations, doc.Converged)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// WritePrettyBestFit renders the winning candidate and the search summary.
func WritePrettyBestFit(w io.Writer, out builder.BestFitResult, catalog *salts.Catalog) error {
	p := message.NewPrinter(language.English)
	if _, err := p.Fprintf(w, "--- Best fit: %d of %d candidates feasible ---\n", out.Feasible, out.Evaluated); err != nil {
		return err
	}
	if !out.Found {
		_, err := p.Fprintf(w, "Reason: %s\n", out.Reason)
		return err
	}
	if _, err := p.Fprintf(w, "Selected goal %s with constraints %s\n\n", out.Goal, out.Constraints); err != nil {
		return err
	}
	return WritePretty(w, out.Result, catalog)
}

// CsvHeader lists the CSV columns.
var CsvHeader = []string{"type", "name", "grams_per_liter", "grams", "start_ppm", "result_ppm", "target_ppm", "delta_ppm", "constraint"}

// CsvString renders result as CSV: one row per catalog salt, one per ion and
// a closing score row. An infeasible result yields a single reason row.
func CsvString(result builder.Result, catalog *salts.Catalog) string {
	doc := NewResultDocument(result, catalog)

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write(CsvHeader)

	if !doc.Feasible {
		_ = cw.Write([]string{"infeasible", doc.Reason, "", "", "", "", "", "", ""})
		cw.Flush()
		return buf.String()
	}

	for _, s := range doc.Salts {
		_ = cw.Write([]string{"salt", s.ID, formatFloat(s.GramsPerLiter, 6), formatFloat(s.Grams, 3), "", "", "", "", ""})
	}
	for _, row := range doc.Ions {
		_ = cw.Write([]string{"ion", row.Ion, "", "",
			formatFloat(row.Start, 3), formatFloat(row.Result, 3), formatFloat(row.Target, 3), formatFloat(row.Delta, 3),
			row.Constraint})
	}
	_ = cw.Write([]string{"score", doc.Goal, formatFloat(doc.TotalMass, 6), formatFloat(doc.TotalGrams, 3), "", formatFloat(doc.Score, 6), "", "", ""})
	cw.Flush()
	return buf.String()
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}
