package llm

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are a personal finance assistant that categorizes transactions. " +
	`Respond only with a JSON object of the form {"category": "<name>"}.`

// buildPrompt asks for the single best category for description.
func buildPrompt(description string, categories []string) string {
	var sb strings.Builder
	sb.WriteString("Return the single best category name for this transaction.\n")
	if len(categories) > 0 {
		fmt.Fprintf(&sb, "Choose one of: %s.\n", strings.Join(categories, ", "))
	}
	fmt.Fprintf(&sb, "Transaction description: %q\n", description)
	sb.WriteString(`Answer with {"category": "<name>"} and nothing else.`)
	return sb.String()
}
