package orchestrator

import (
	"regexp"
	"strings"
)

const (
	// PlotMarker is the literal the agent must emit after saving a chart.
	PlotMarker = "PLOT_SAVED"

	// ArtifactName is the file the agent saves charts to, relative to its working directory.
	ArtifactName = "plot.png"

	ErrorPrefix = "Error processing query: "
)

const instructionTemplate = `Answer the user query: %QUERY%
If the user asks for a plot, chart, or visualization, you MUST generate it using matplotlib or seaborn,
save it exactly as '` + ArtifactName + `' in the current directory, and include the exact text '` + PlotMarker + `' in your final response.
Otherwise, just provide the text answer.`

var markerPattern = regexp.MustCompile(`[ \t]*` + regexp.QuoteMeta(PlotMarker))

// BuildInstruction substitutes the query into the fixed template.
func BuildInstruction(query string) string {
	return strings.Replace(instructionTemplate, "%QUERY%", query, 1)
}

// StripMarker removes every marker occurrence with the blanks in front of it.
// Removal repeats because deleting one occurrence can join two halves into a new one.
func StripMarker(text string) string {
	for strings.Contains(text, PlotMarker) {
		text = markerPattern.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}
