package response

import (
	"strings"

	"ai-shopchat-be/pkg/rag/prompt"
)

// ParseResult is the split of one raw completion into the user-facing reply
// and the model-authored summary update.
type ParseResult struct {
	Reply      string
	Summary    string
	HasSummary bool
}

// Parse splits raw model output on the marker contract from pkg/rag/prompt.
// Everything after the summary marker is the new session summary; everything
// before it is the reply candidate, trimmed to after the response marker when
// that marker is present.
//
// Missing markers are tolerated, never an error: without the summary marker
// the whole text is the reply and HasSummary is false (the stored summary
// must stay untouched); without the response marker the reply candidate is
// used as-is. Surrounding whitespace is preserved exactly.
func Parse(content string) ParseResult {
	result := ParseResult{Reply: content}

	if idx := strings.Index(content, prompt.SummaryMarker); idx != -1 {
		result.Summary = content[idx+len(prompt.SummaryMarker):]
		result.HasSummary = true
		result.Reply = content[:idx]
	}

	if idx := strings.Index(result.Reply, prompt.ResponseMarker); idx != -1 {
		result.Reply = result.Reply[idx+len(prompt.ResponseMarker):]
	}

	return result
}
