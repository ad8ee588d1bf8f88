package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	extraction := ExtractJSONObject("Here is the result: {\"score\": 8} -- hope that helps!")
	require.True(t, extraction.OK)
	require.Equal(t, `{"score": 8}`, extraction.JSON)

	extraction = ExtractJSONObject("```json\n{\"score\": 8, \"feedback\": \"ok\"}\n```")
	require.True(t, extraction.OK)
	require.JSONEq(t, `{"score": 8, "feedback": "ok"}`, extraction.JSON)

	extraction = ExtractJSONObject("the model refused to answer")
	require.False(t, extraction.OK)
	require.Equal(t, "no json object found in reply", extraction.Reason)

	extraction = ExtractJSONObject("} backwards {")
	require.False(t, extraction.OK)
}

func TestParseGradeResult(t *testing.T) {
	result := parseGradeResult(`{"score": 8, "feedback": "solid work"}`, 10)
	require.False(t, result.Fallback)
	require.Equal(t, 8, result.Score)
	require.Equal(t, "solid work", result.Feedback)

	// Scores outside [0, maxScore] are clamped.
	result = parseGradeResult(`{"score": 120, "feedback": "x"}`, 100)
	require.Equal(t, 100, result.Score)

	result = parseGradeResult(`{"score": -3, "feedback": "x"}`, 10)
	require.Equal(t, 0, result.Score)
}

func TestParseGradeResultFallback(t *testing.T) {
	result := parseGradeResult("no json here", 10)
	require.True(t, result.Fallback)
	require.Equal(t, 0, result.Score)
	require.Equal(t, "unable to parse grading result", result.Feedback)
	require.NotEmpty(t, result.FallbackReason)

	result = parseGradeResult(`{"score": 8,,}`, 10)
	require.True(t, result.Fallback)
}

func TestParseGradeResultMissingScore(t *testing.T) {
	result := parseGradeResult(`{"feedback": "no score given"}`, 10)
	require.False(t, result.Fallback)
	require.Equal(t, 0, result.Score)
	require.Equal(t, "no score given", result.Feedback)
}

func TestParseLooseInt(t *testing.T) {
	cases := []struct {
		raw   string
		want  int
		valid bool
	}{
		{`95`, 95, true},
		{`95.7`, 95, true},
		{`"95"`, 95, true},
		{`"95 points"`, 95, true},
		{`"95分"`, 95, true},
		{`"no digits"`, 0, false},
	}

	for _, tc := range cases {
		got, ok := parseLooseInt(json.RawMessage(tc.raw))
		require.Equal(t, tc.valid, ok, "raw %s", tc.raw)
		require.Equal(t, tc.want, got, "raw %s", tc.raw)
	}
}

func TestParseExtractedQuestions(t *testing.T) {
	content := `Sure! {"questions": [
		{"type": "choice", "content": "1+1=?", "options": ["1", "2"], "answer": "2", "score": 5},
		{"type": "subjective", "content": "Explain gravity."}
	]}`

	questions, ok := parseExtractedQuestions(content)
	require.True(t, ok)
	require.Len(t, questions, 2)
	require.Equal(t, "choice", questions[0].Type)
	require.Equal(t, []string{"1", "2"}, questions[0].Options)
	require.Equal(t, "Explain gravity.", questions[1].Content)

	_, ok = parseExtractedQuestions("nothing useful")
	require.False(t, ok)
}
