package advisor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ziadkadry99/product-advisor/internal/catalog"
	"github.com/ziadkadry99/product-advisor/internal/render"
)

// RoutineCharacterLimit bounds the length of a generated routine.
const RoutineCharacterLimit = 1800

// Fixed user-facing texts.
const (
	systemPrompt = "You are an expert beauty advisor for the L'Oréal group brands. Reference the user's " +
		"selected products, keep explanations concise, and remember previous exchanges."

	MsgRoutineRequest = "Please build a personalized routine for my selected products."
	MsgEmptySelection = "Select at least one product to generate a personalized routine."
	MsgUnconfigured   = "Worker URL is not configured. Add your worker URL to the configuration and restart the advisor."
	MsgAdvisorFailure = "I ran into an issue reaching the advisor. Please try again."
	MsgTruncated      = "Heads up: that response was cut off when it hit the current token limit. Try a shorter request or reduce the number of selected products."
	followUpExpansion = "Yes, please share the additional steps or PM routine you offered earlier for my selected products."
)

var yesFollowUp = regexp.MustCompile(`(?i)^\s*yes\s*$`)

// expandFollowUp turns a bare "yes" into the explicit follow-up request.
func expandFollowUp(message string) string {
	if yesFollowUp.MatchString(message) {
		return followUpExpansion
	}
	return message
}

// routineRequest is the detailed prompt sent for a routine. The user only
// sees MsgRoutineRequest.
func routineRequest(products []catalog.Product) string {
	var sb strings.Builder
	sb.WriteString("I have selected these L'Oréal group products:\n")
	for i, p := range products {
		fmt.Fprintf(&sb, "%d. %s (%s) - %s\n", i+1, p.Name, render.Capitalize(p.Category), p.Description)
	}
	fmt.Fprintf(&sb, "Create a personalized routine that uses them thoughtfully. For now, only describe the AM routine "+
		"and conclude by inviting the user to type YES if they'd like the PM routine or more recommendations. "+
		"Explain why each AM step matters and suggest helpful tips if a step is missing. "+
		"Keep the entire response under %d characters by limiting each step to two concise sentences.",
		RoutineCharacterLimit)
	return sb.String()
}

func routineSearchQuery(products []catalog.Product) string {
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}
	return strings.Join(names, " ")
}
