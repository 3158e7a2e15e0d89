package insight

import "strings"

// Insights is the structured result of one extraction.
type Insights struct {
	Summary     string `json:"summary"`
	ActionItems string `json:"action_items"`
	Decisions   string `json:"decisions"`
	// Degraded is set when any field is fallback text.
	Degraded bool `json:"degraded"`
}

// Replacement texts.
const (
	NoTranscript       = "No transcript available."
	BriefMeetingPrefix = "This meeting was very brief. Transcript: "
	NoActionItems      = "No specific action items identified."
	NoDecisions        = "No key decisions recorded."

	// FailedSummary and NoneIdentified make up the result returned when the
	// model could not be reached.
	FailedSummary  = "Unable to generate summary due to technical issues."
	NoneIdentified = "None identified."
)

// briefExcerpt is how many characters of the response a brief-meeting summary
// echoes.
const briefExcerpt = 300

const sectionSeparator = "---"

// fallbackPhrases are model answers that carry no information.
var fallbackPhrases = map[string]struct{}{
	"No summary available for this meeting.":                                               {},
	"Summary generation failed.":                                                           {},
	"Unable to extract action items.":                                                      {},
	"Unable to extract decisions.":                                                         {},
	"The transcript provided is incomplete and contains only a fragment of speech.":        {},
	"No clear topics, goals, or outcomes can be determined from the limited content.":      {},
	"Further context or additional transcript content is needed for meaningful analysis.": {},
}

func isFallback(s string) bool {
	if s == "" {
		return true
	}
	_, ok := fallbackPhrases[s]
	return ok
}

// Parse splits a model response into its three sections.
//
// A response with at least three "---" separated parts maps them in order.
// Anything else is classified line by line: a line mentioning an action or
// todo starts the action items, one mentioning a decision or conclusion
// starts the decisions, and the marker line itself is dropped. Empty or
// uninformative fields get replacement text and mark the result degraded.
func Parse(response string) Insights {
	var summary, actions, decisions string

	if parts := strings.Split(response, sectionSeparator); len(parts) >= 3 {
		summary = strings.TrimSpace(parts[0])
		actions = strings.TrimSpace(parts[1])
		decisions = strings.TrimSpace(parts[2])
	} else {
		summary, actions, decisions = classifyLines(response)
	}

	out := Insights{Summary: summary, ActionItems: actions, Decisions: decisions}
	trimmed := strings.TrimSpace(response)
	if isFallback(out.Summary) {
		out.Degraded = true
		if trimmed == "" {
			out.Summary = NoTranscript
		} else {
			out.Summary = BriefMeetingPrefix + truncateRunes(trimmed, briefExcerpt)
		}
	}
	if isFallback(out.ActionItems) {
		out.Degraded = true
		out.ActionItems = NoActionItems
	}
	if isFallback(out.Decisions) {
		out.Degraded = true
		out.Decisions = NoDecisions
	}
	return out
}

func classifyLines(response string) (summary, actions, decisions string) {
	var buckets [3]strings.Builder
	current := 0
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "action"), strings.Contains(lower, "todo"):
			current = 1
		case strings.Contains(lower, "decision"), strings.Contains(lower, "conclusion"):
			current = 2
		default:
			buckets[current].WriteString(line)
			buckets[current].WriteByte('\n')
		}
	}
	return strings.TrimSpace(buckets[0].String()),
		strings.TrimSpace(buckets[1].String()),
		strings.TrimSpace(buckets[2].String())
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
