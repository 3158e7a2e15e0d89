package insight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSections(t *testing.T) {
	resp := "# Meeting Summary\n- Planned Q3\n---\n# Action Items\n- Bob writes doc\n---\n# Key Decisions\n- Ship Friday"

	got := Parse(resp)
	assert.Equal(t, "# Meeting Summary\n- Planned Q3", got.Summary)
	assert.Equal(t, "# Action Items\n- Bob writes doc", got.ActionItems)
	assert.Equal(t, "# Key Decisions\n- Ship Friday", got.Decisions)
	assert.False(t, got.Degraded)
}

func TestParseExtraSectionsIgnored(t *testing.T) {
	got := Parse("a\n---\nb\n---\nc\n---\nd")
	assert.Equal(t, "a", got.Summary)
	assert.Equal(t, "b", got.ActionItems)
	assert.Equal(t, "c", got.Decisions)
}

func TestParseLineClassification(t *testing.T) {
	resp := strings.Join([]string{
		"We reviewed the roadmap.",
		"",
		"Budget is tight.",
		"Action items:",
		"Alice books the venue",
		"Decisions",
		"Launch moves to May",
	}, "\n")

	got := Parse(resp)
	assert.Equal(t, "We reviewed the roadmap.\nBudget is tight.", got.Summary)
	assert.Equal(t, "Alice books the venue", got.ActionItems)
	assert.Equal(t, "Launch moves to May", got.Decisions)
	assert.False(t, got.Degraded)
}

func TestParseKeywordLinesAreDropped(t *testing.T) {
	got := Parse("Summary text\nTODO: call vendor\nConclusion reached")
	assert.Equal(t, "Summary text", got.Summary)
	assert.Equal(t, NoActionItems, got.ActionItems, "the todo line only switches buckets")
	assert.Equal(t, NoDecisions, got.Decisions)
	assert.True(t, got.Degraded)
}

func TestParseEmptyResponse(t *testing.T) {
	got := Parse("   ")
	assert.Equal(t, NoTranscript, got.Summary)
	assert.Equal(t, NoActionItems, got.ActionItems)
	assert.Equal(t, NoDecisions, got.Decisions)
	assert.True(t, got.Degraded)
}

func TestParseFallbackPhrases(t *testing.T) {
	resp := "Summary generation failed.\n---\nUnable to extract action items.\n---\nUnable to extract decisions."

	got := Parse(resp)
	assert.True(t, strings.HasPrefix(got.Summary, BriefMeetingPrefix))
	assert.Equal(t, BriefMeetingPrefix+strings.TrimSpace(resp), got.Summary)
	assert.Equal(t, NoActionItems, got.ActionItems)
	assert.Equal(t, NoDecisions, got.Decisions)
	assert.True(t, got.Degraded)
}

func TestParseBriefSummaryTruncatesTo300Characters(t *testing.T) {
	long := strings.Repeat("é", 400)
	got := Parse("\n---\nx\n---\ny" + long)
	excerpt := strings.TrimPrefix(got.Summary, BriefMeetingPrefix)
	assert.Len(t, []rune(excerpt), 300)
}

func TestUserPrompt(t *testing.T) {
	assert.Equal(t, "Please analyze this meeting transcript:\n\nhello", UserPrompt("hello"))
	assert.Contains(t, SystemPrompt, "# Meeting Summary")
	assert.Contains(t, SystemPrompt, "# Action Items")
	assert.Contains(t, SystemPrompt, "# Key Decisions")
}
