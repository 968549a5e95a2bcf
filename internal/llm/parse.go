package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseSynthesisOutput parses the model's JSON response. Models sometimes
// wrap JSON in markdown fences or add prose around it; anything beyond that
// is treated as malformed output, which is fatal to the run.
func ParseSynthesisOutput(content string) (*SynthesisOutput, error) {
	raw := extractJSON(content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in synthesis response")
	}

	var out SynthesisOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("malformed synthesis response: %w", err)
	}

	if len(out.Diagnoses) == 0 {
		return nil, fmt.Errorf("synthesis response contains no diagnoses")
	}
	for i, d := range out.Diagnoses {
		if strings.TrimSpace(d.Cause) == "" {
			return nil, fmt.Errorf("synthesis diagnosis %d has no cause", i)
		}
	}

	return &out, nil
}

// extractJSON returns the first top-level JSON object in the content,
// stripping markdown code fences if present.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
