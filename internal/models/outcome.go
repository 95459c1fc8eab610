package models

// Outcome is the result of a single engine invocation: either an ordered
// list of suggestions (an empty list means "analyzed, nothing flagged") or
// the crash marker. Crash causes are not distinguished here; that detail
// belongs in the engine's own logs.
type Outcome struct {
	Suggestions []Suggestion
	Crashed     bool
}

// CrashedOutcome returns the uniform "analysis failed abnormally" outcome.
func CrashedOutcome() Outcome {
	return Outcome{Crashed: true}
}

// SuccessOutcome wraps a suggestion list, normalizing nil to an empty list
// so that success is never confused with the crash marker downstream.
func SuccessOutcome(suggestions []Suggestion) Outcome {
	if suggestions == nil {
		suggestions = []Suggestion{}
	}
	return Outcome{Suggestions: suggestions}
}
