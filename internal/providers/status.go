package providers

import "strings"

// StateClass is the canonical classification of a provider status string.
type StateClass int

const (
	// StateUnknown marks a status outside the adapter's declared vocabulary.
	StateUnknown StateClass = iota
	// StateReady means the artifact is available.
	StateReady
	// StateNotReady means the task is still queued or running.
	StateNotReady
	// StateFailed means the provider reported a permanent failure.
	StateFailed
)

// StatusVocabulary enumerates the status strings one provider can report.
// Classification is centralized here so that adding a provider never requires
// touching orchestration code: adapters only declare their vocabulary.
//
// Anything outside the three sets classifies as StateUnknown, which callers
// must treat as a terminal unexpected-provider-state failure rather than
// success or indefinite pending.
type StatusVocabulary struct {
	Ready    []string
	NotReady []string
	Failed   []string
}

// Classify maps a raw provider status onto a canonical state. Matching is
// case-insensitive and ignores surrounding whitespace.
func (v StatusVocabulary) Classify(status string) StateClass {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" {
		return StateUnknown
	}
	for _, ready := range v.Ready {
		if s == strings.ToLower(ready) {
			return StateReady
		}
	}
	for _, notReady := range v.NotReady {
		if s == strings.ToLower(notReady) {
			return StateNotReady
		}
	}
	for _, failed := range v.Failed {
		if s == strings.ToLower(failed) {
			return StateFailed
		}
	}
	return StateUnknown
}
