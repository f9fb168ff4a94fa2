package arena

import (
	"encoding/json"
	"strings"
)

// judgeVerdict is the strict JSON shape the judge model is instructed to
// emit for one prompt.
type judgeVerdict struct {
	Scores    map[string]map[string]float64 `json:"scores"`
	Winner    string                        `json:"winner"`
	Reasoning string                        `json:"reasoning"`
}

// extractJSONObject returns the first top-level {...} object in s, found by
// balanced-brace scanning so judges that wrap their JSON in prose or
// markdown fencing still parse. Returns "" when no balanced object exists.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// parseJudgeResponse extracts a verdict from the judge's raw response. When
// no parseable JSON is present, it falls back to matching any contestant
// name in the raw text to infer a winner.
func parseJudgeResponse(raw string, contestantNames []string) judgeVerdict {
	if obj := extractJSONObject(raw); obj != "" {
		var v judgeVerdict
		if err := json.Unmarshal([]byte(obj), &v); err == nil {
			v.Winner = validateWinner(v.Winner, contestantNames)
			return v
		}
	}

	lower := strings.ToLower(raw)
	for _, name := range contestantNames {
		if strings.Contains(lower, strings.ToLower(name)) {
			return judgeVerdict{Winner: name, Reasoning: "winner inferred from unstructured judge response"}
		}
	}
	return judgeVerdict{Reasoning: "unable to parse judge response"}
}

// validateWinner maps the judge's winner value onto a known contestant name
// by case-insensitive substring match in either direction. "TIE" passes
// through; anything unrecognized becomes "".
func validateWinner(winner string, contestantNames []string) string {
	w := strings.TrimSpace(winner)
	if w == "" {
		return ""
	}
	if strings.EqualFold(w, "TIE") {
		return "TIE"
	}
	lower := strings.ToLower(w)
	for _, name := range contestantNames {
		nameLower := strings.ToLower(name)
		if strings.Contains(lower, nameLower) || strings.Contains(nameLower, lower) {
			return name
		}
	}
	return ""
}
