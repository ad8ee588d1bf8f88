package ai

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Extraction is the tagged outcome of scanning a free-text reply for an
// embedded JSON object: either the extracted substring or the reason no
// usable JSON was found. Keeping both branches explicit makes the fallback
// path testable on its own.
type Extraction struct {
	JSON   string
	OK     bool
	Reason string
}

// ExtractJSONObject scans a raw completion reply for the first '{' and the
// last '}' and returns the substring between them. Models wrap JSON in prose
// or markdown fences often enough that strict parsing of the whole reply is a
// losing game.
func ExtractJSONObject(content string) Extraction {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')

	if start == -1 || end == -1 || end <= start {
		return Extraction{Reason: "no json object found in reply"}
	}

	return Extraction{JSON: content[start : end+1], OK: true}
}

// fallbackResult is returned whenever the reply cannot be turned into a
// grading result. The caller never observes a hard failure from malformed
// model output.
func fallbackResult(reason string) GradeResult {
	return GradeResult{
		Score:          0,
		Feedback:       "unable to parse grading result",
		Fallback:       true,
		FallbackReason: reason,
	}
}

// parseGradeResult turns a raw reply into a GradeResult, substituting the
// fixed fallback when the reply has no parsable JSON. Missing fields are
// tolerated; the score is clamped to [0, maxScore].
func parseGradeResult(content string, maxScore int) GradeResult {
	extraction := ExtractJSONObject(content)
	if !extraction.OK {
		return fallbackResult(extraction.Reason)
	}

	var payload struct {
		Score    json.RawMessage `json:"score"`
		Feedback string          `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(extraction.JSON), &payload); err != nil {
		return fallbackResult("invalid json: " + err.Error())
	}

	result := GradeResult{Feedback: payload.Feedback}
	if score, ok := parseLooseInt(payload.Score); ok {
		result.Score = score
	}

	if result.Score < 0 {
		result.Score = 0
	}
	if maxScore > 0 && result.Score > maxScore {
		result.Score = maxScore
	}

	return result
}

// parseLooseInt accepts numbers, numeric strings, and strings with stray
// non-numeric characters ("95 points", "95分").
func parseLooseInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return int(number), true
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		text = string(raw)
	}

	digits := strings.Builder{}
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}

	value, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return value, true
}

// parseExtractedQuestions decodes the bulk-import reply. Unlike grading there
// is no sensible fallback payload, so an unusable reply is reported as such.
func parseExtractedQuestions(content string) ([]ExtractedQuestion, bool) {
	extraction := ExtractJSONObject(content)
	if !extraction.OK {
		return nil, false
	}

	var payload struct {
		Questions []ExtractedQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(extraction.JSON), &payload); err != nil {
		return nil, false
	}

	return payload.Questions, true
}
