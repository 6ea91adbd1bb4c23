// Package report renders pipeline decisions for the terminal or for
// machine consumption.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/decision"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/schema"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the accepted format names.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// Render writes v in the given format. Text rendering understands
// *decision.HabitatDecision and *decision.RoverDecision.
func Render(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "report: json")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "report: yaml")
		}
		return eris.Wrap(enc.Close(), "report: yaml")
	case FormatText, "":
		switch d := v.(type) {
		case *decision.HabitatDecision:
			return habitatText(w, d)
		case *decision.RoverDecision:
			return roverText(w, d)
		}
		return eris.Errorf("report: no text rendering for %T", v)
	default:
		return eris.Errorf("report: unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

func habitatText(w io.Writer, d *decision.HabitatDecision) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Model Accuracy: %.2f%% (%s, %d train / %d test rows)\n", d.Accuracy*100, d.Algorithm, d.TrainRows, d.TestRows)
	fmt.Fprintf(&b, "Precision: %.3f  Recall: %.3f  F1: %.3f\n", d.Precision, d.Recall, d.F1)
	if d.CVScore > 0 {
		fmt.Fprintf(&b, "Cross-validated Accuracy: %.2f%%\n", d.CVScore*100)
	}
	b.WriteString("\nSuitability scores:\n")
	for _, s := range d.Suitability {
		fmt.Fprintf(&b, "  %-20s %8.3f\n", s.Source, s.Value)
	}
	b.WriteString("\nPositive predictions:\n")
	for _, t := range d.Totals {
		fmt.Fprintf(&b, "  %-20s %4.0f / %d\n", t.Source, t.Positive, t.Rows)
	}
	if len(d.Importances) > 0 {
		b.WriteString("\nFeature importance:\n")
		for _, imp := range d.Importances {
			fmt.Fprintf(&b, "  %-20s %6.3f %s\n", imp.Feature, imp.Value, strings.Repeat("#", int(imp.Value*50+0.5)))
		}
	}
	writeSkipped(&b, d.Skipped)
	fmt.Fprintf(&b, "\nThe most sustainable area for life is: %s\n", d.Area)
	_, err := io.WriteString(w, b.String())
	return eris.Wrap(err, "report: write")
}

// units used when printing rover conditions.
var units = map[string]string{
	schema.Temperature:    "°C",
	schema.Precipitation:  "mm",
	schema.Sunlight:       "hrs",
	schema.WaterQuality:   "%",
	schema.NutrientLevels: "%",
	schema.OxygenContent:  "%",
	schema.WaterLevel:     "%",
}

var titles = map[string]string{
	schema.CropHealth:     "Predicted Crop Health",
	schema.WasteReduction: "Predicted Waste Reduction Efficiency",
}

func roverText(w io.Writer, d *decision.RoverDecision) error {
	var b strings.Builder
	for _, r := range d.Rovers {
		fmt.Fprintf(&b, "\n=== %s ===\n", strings.ReplaceAll(r.Source, "_", " "))
		fmt.Fprintf(&b, "Held-out R²: %.3f  MAE: %.3f  RMSE: %.3f (%s, %d train / %d test rows)\n", r.Score, r.MAE, r.RMSE, r.Algorithm, r.TrainRows, r.TestRows)
		if r.CVScore != 0 {
			fmt.Fprintf(&b, "Cross-validated R²: %.3f\n", r.CVScore)
		}
		title, ok := titles[r.Target]
		if !ok {
			title = "Predicted " + r.Target
		}
		for _, p := range r.Points {
			parts := make([]string, len(p.Conditions))
			for i, c := range p.Conditions {
				if c.Label != "" {
					parts[i] = c.Name + "=" + c.Label
					continue
				}
				parts[i] = fmt.Sprintf("%s=%.2f%s", c.Name, c.Value, units[c.Name])
			}
			fmt.Fprintf(&b, "Conditions: %s\n", strings.Join(parts, ", "))
			fmt.Fprintf(&b, "%s: %.2f\n", title, p.Prediction)
		}
	}
	writeSkipped(&b, d.Skipped)
	_, err := io.WriteString(w, b.String())
	return eris.Wrap(err, "report: write")
}

func writeSkipped(b *strings.Builder, skipped []decision.Skip) {
	if len(skipped) == 0 {
		return
	}
	b.WriteString("\nSkipped sources:\n")
	for _, s := range skipped {
		fmt.Fprintf(b, "  %s: %s\n", s.Source, s.Reason)
	}
}
