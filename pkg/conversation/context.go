package conversation

import (
	"fmt"
	"strings"
)

// InitiatingContext is the optional customer data captured before the first turn
// (the "layer 0" intake form). Recognized keys are listed in contextFields.
type InitiatingContext map[string]any

// Recognized initiating-context keys.
const (
	ContextName               = "name"
	ContextEmail              = "email"
	ContextCompany            = "company"
	ContextInitialDescription = "initial_description"
	ContextBudgetTier         = "budget_tier"
)

// contextFields fixes the rendering order of the summary.
var contextFields = []struct {
	key   string
	label string
}{
	{ContextName, "Customer name"},
	{ContextEmail, "Email"},
	{ContextCompany, "Company"},
	{ContextInitialDescription, "Initial description"},
	{ContextBudgetTier, "Budget tier"},
}

// BuildContextSummary renders the initiating context for the system instruction.
// It returns "" when there is no context. Absent keys are omitted.
func (s *State) BuildContextSummary() string {
	if len(s.initiating) == 0 {
		return ""
	}

	parts := []string{"Context from initial form:"}
	for _, field := range contextFields {
		value, ok := s.initiating[field.key]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("- %s: %v", field.label, value))
	}

	return strings.Join(parts, "\n")
}
