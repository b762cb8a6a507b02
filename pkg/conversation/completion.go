package conversation

import (
	"encoding/json"
	"regexp"
	"strings"
)

const statusComplete = "complete"

// completionPattern is a cheap pre-filter for the terminal payload. It only gates the
// parse attempt; the parsed document is validated separately.
var completionPattern = regexp.MustCompile(`(?s)\{\s*"status"\s*:\s*"complete".*?"requirements"\s*:`)

// checkCompletion marks the conversation complete when content carries a terminal
// payload of the form {"status": "complete", ..., "requirements": {...}}.
//
// The candidate span runs from the first '{' to the last '}' in content, so a reply
// holding several JSON-like blocks yields a span that usually fails to parse and is
// ignored.
func (s *State) checkCompletion(content string) {
	// requirements are set at most once
	if s.isComplete {
		return
	}
	if !completionPattern.MatchString(content) {
		return
	}

	payload, ok := extractPayload(content)
	if !ok {
		s.logger.Debug("Completion pattern matched but payload did not parse")
		return
	}

	if payload["status"] != statusComplete {
		return
	}
	if _, hasRequirements := payload["requirements"]; !hasRequirements {
		return
	}

	s.isComplete = true
	s.requirements = payload
	s.logger.Debug("Terminal requirements payload detected at turn %d", s.turnCount)
}

// extractPayload parses the first-'{'-to-last-'}' span of content as a JSON object.
func extractPayload(content string) (map[string]any, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end < start {
		return nil, false
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return nil, false
	}
	return payload, payload != nil
}
