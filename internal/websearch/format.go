package websearch

import (
	"fmt"
	"strings"
)

const promptPreamble = "Use these live references when answering. Cite the source numbers " +
	"(for example, (1)) next to the facts they support and finish with a Sources section listing the same URLs."

// FormatForPrompt renders sources as the system message handed to the model.
func FormatForPrompt(sources []Source) string {
	var sb strings.Builder
	sb.WriteString(promptPreamble)
	for i, s := range sources {
		fmt.Fprintf(&sb, "\n%d. %s - %s :: %s", i+1, s.Title, s.URL, s.Snippet)
	}
	return sb.String()
}

// FormatForDisplay renders the Sources trailer appended to an assistant
// message. It returns "" when there are no sources.
func FormatForDisplay(sources []Source) string {
	if len(sources) == 0 {
		return ""
	}
	lines := make([]string, 0, len(sources))
	for i, s := range sources {
		lines = append(lines, fmt.Sprintf("(%d) %s - %s", i+1, s.Title, s.URL))
	}
	return "\n\nSources:\n" + strings.Join(lines, "\n")
}
