package agent

import (
	"fmt"
	"strings"

	"data-chat-be/pkg/dataset"
)

const FinalAnswerPrefix = "Final Answer:"

// BuildSystemPrompt describes the dataframe and the reply protocol the loop parses.
func BuildSystemPrompt(summary *dataset.Summary) string {
	var b strings.Builder

	b.WriteString("You are working with a pandas dataframe in Python. The name of the dataframe is `df`.\n")
	fmt.Fprintf(&b, "It has %d rows and these columns: %s.\n", summary.Rows, strings.Join(summary.Columns, ", "))
	b.WriteString("This is the result of `print(df.head())` rendered as CSV:\n\n")
	b.WriteString(strings.Join(summary.Columns, ","))
	b.WriteString("\n")
	for _, row := range summary.Head {
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}

	b.WriteString(`
You answer questions about this dataframe by running Python code.

On every turn reply in exactly ONE of these two forms:

1. To run code, reply with a single fenced block:
` + "```python\n<code>\n```" + `
   Each block runs in a fresh interpreter where df is already loaded and pandas (pd),
   numpy (np), matplotlib.pyplot (plt) and seaborn (sns) are imported. Use print() to see
   values. The output comes back to you as an Observation.

2. When you know the answer, reply with a line starting with "` + FinalAnswerPrefix + `" followed
   by the answer for the user.

Never invent numbers: compute them with code first.`)

	return b.String()
}

// FormatObservation renders an execution result as the next user message.
func FormatObservation(output string, execErr error) string {
	output = strings.TrimSpace(output)
	if output == "" {
		output = "(no output)"
	}
	if execErr != nil {
		return fmt.Sprintf("Observation (error: %v):\n%s", execErr, output)
	}
	return "Observation:\n" + output
}
