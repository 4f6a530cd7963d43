package caller

import "regexp"

// thinkTags matches <think>...</think> chain-of-thought spans, including
// embedded newlines, plus the run of whitespace immediately after each
// closing tag. Non-greedy and case-sensitive.
var thinkTags = regexp.MustCompile(`(?s)<think>.*?</think>\s*`)

// StripThinkTags removes every chain-of-thought span from content.
// Content without such spans is returned unchanged; the operation is
// idempotent.
func StripThinkTags(content string) string {
	return thinkTags.ReplaceAllString(content, "")
}
