// Package parse extracts marker-delimited sections from piped input.
//
// Input is plain text carrying up to three sections:
//
//	===QUERY=== the question for the council
//	===DRAFT=== the orchestrating assistant's own draft answer
//	===PROBE=== a probe target line such as "@gpt"
//
// Unknown or absent sections yield empty fields, never errors.
package parse

import "strings"

// Section markers recognized in piped input.
const (
	MarkerQuery = "===QUERY==="
	MarkerDraft = "===DRAFT==="
	MarkerProbe = "===PROBE==="
)

// Input is the typed result of marker parsing.
type Input struct {
	// Query is the question text, empty when no QUERY section is present.
	Query string

	// Draft is the assistant's draft answer, empty when absent.
	Draft string

	// ProbeTarget is the model key named by an @key token on the first
	// line of the PROBE section, empty when no known key matched.
	ProbeTarget string
}

// Markers parses marker-delimited content. keys is the closed set of
// registry keys used to recognize a probe target.
func Markers(content string, keys []string) Input {
	var in Input

	if rest, ok := after(content, MarkerQuery); ok {
		if queryPart, draftPart, ok := cut(rest, MarkerDraft); ok {
			in.Query = strings.TrimSpace(queryPart)
			if dp, probePart, ok := cut(draftPart, MarkerProbe); ok {
				draftPart = dp
				in.ProbeTarget = probeTarget(probePart, keys)
			}
			in.Draft = strings.TrimSpace(draftPart)
		} else if queryPart, probePart, ok := cut(rest, MarkerProbe); ok {
			in.Query = strings.TrimSpace(queryPart)
			in.ProbeTarget = probeTarget(probePart, keys)
		} else {
			in.Query = strings.TrimSpace(rest)
		}
	} else if rest, ok := after(content, MarkerDraft); ok {
		// Standalone draft (crossref staging).
		draftPart := rest
		if dp, probePart, ok := cut(rest, MarkerProbe); ok {
			draftPart = dp
			in.ProbeTarget = probeTarget(probePart, keys)
		}
		in.Draft = strings.TrimSpace(draftPart)
	}

	// Standalone probe target, or probe after an unmarked prefix.
	if in.ProbeTarget == "" {
		if rest, ok := after(content, MarkerProbe); ok {
			in.ProbeTarget = probeTarget(rest, keys)
		}
	}

	return in
}

// probeTarget scans the first line of a probe section for an @key token.
// Matching is case-insensitive; no match yields empty.
func probeTarget(section string, keys []string) string {
	firstLine := strings.TrimSpace(section)
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	firstLine = strings.ToLower(firstLine)

	for _, key := range keys {
		if strings.Contains(firstLine, "@"+strings.ToLower(key)) {
			return strings.ToLower(key)
		}
	}
	return ""
}

// after returns the content following the first occurrence of marker.
func after(s, marker string) (string, bool) {
	_, rest, ok := strings.Cut(s, marker)
	return rest, ok
}

// cut splits s around the first occurrence of marker.
func cut(s, marker string) (before, rest string, ok bool) {
	return strings.Cut(s, marker)
}
