package review

import "strings"

// Verdict is the pass/fail outcome of a review
type Verdict int

const (
	// Approved means the response did not ask for changes
	Approved Verdict = iota
	// ChangesRequested means the response contains "MAKE CHANGES" in any letter case
	ChangesRequested
)

func (v Verdict) String() string {
	if v == ChangesRequested {
		return "changes_requested"
	}
	return "approved"
}

// Classify derives the verdict from a complete response. Any occurrence of
// "MAKE CHANGES", case-insensitive and anywhere in the text, requests changes.
func Classify(text string) Verdict {
	if strings.Contains(strings.ToUpper(text), "MAKE CHANGES") {
		return ChangesRequested
	}
	return Approved
}

// Conclusion is the explicit conclusion line found in a response. It only selects
// the status line that is printed and never changes the Verdict.
type Conclusion int

const (
	// ConclusionNone means no exact conclusion line matching the verdict was found
	ConclusionNone Conclusion = iota
	// ConclusionApproved matches "Conclusion: APPROVED"
	ConclusionApproved
	// ConclusionMakeChanges matches "Conclusion: MAKE CHANGES"
	ConclusionMakeChanges
)

const (
	markerApproved    = "Conclusion: APPROVED"
	markerMakeChanges = "Conclusion: MAKE CHANGES"
)

// ConclusionOf reports the conclusion marker that agrees with the response's verdict
func ConclusionOf(text string) Conclusion {
	switch Classify(text) {
	case ChangesRequested:
		if strings.Contains(text, markerMakeChanges) {
			return ConclusionMakeChanges
		}
	default:
		if strings.Contains(text, markerApproved) {
			return ConclusionApproved
		}
	}
	return ConclusionNone
}
