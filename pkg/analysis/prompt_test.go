package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeQuery(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantSimple bool
		wantWords  int
	}{
		{name: "short interrogative", query: "what is the average age", wantSimple: true},
		{name: "how many", query: "How many respondents answered?", wantSimple: true},
		{name: "interrogative must be a word", query: "somewhat odd result here", wantWords: 50},
		{name: "short statement", query: "summarize the data", wantWords: 50},
		{
			name:      "medium statement",
			query:     "Please provide a comprehensive breakdown of all response patterns across demographic segments",
			wantWords: 150,
		},
		{
			name:      "long interrogative is not simple",
			query:     "What are the most significant differences between the regional groups in overall satisfaction scores, and why?",
			wantWords: 300,
		},
		{
			name:      "long statement",
			query:     strings.Repeat("Describe the distribution of answers. ", 4),
			wantWords: 300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SizeQuery(tt.query)
			assert.Equal(t, tt.wantSimple, got.Simple)
			assert.Equal(t, tt.wantWords, got.MaxWords)
			if tt.wantSimple {
				assert.Contains(t, got.Instruction, "1-2 sentences")
			} else {
				assert.Contains(t, got.Instruction, "bullet points only")
			}
		})
	}
}

func TestBuildTextPrompt(t *testing.T) {
	req := &Request{
		Query:       "Summarize satisfaction by region",
		ChartConfig: map[string]any{"type": "bar", "x": "region"},
		CSVData:     "region,score\nnorth,4\n\nsouth,3\neast,5\nwest,2\n",
	}
	stats := Sanitize(map[string]any{"mean": 3.5, "email": "a@b.com"})
	summary := map[string]any{"rows": 4}

	prompt := BuildTextPrompt(req, stats, summary, 3, SizeQuery(req.Query))

	assert.Contains(t, prompt, "Question: Summarize satisfaction by region")
	assert.Contains(t, prompt, "Dataset summary:")
	assert.Contains(t, prompt, `"rows": 4`)
	assert.Contains(t, prompt, "Chart context:")
	assert.Contains(t, prompt, `"type": "bar"`)
	assert.Contains(t, prompt, `"mean": 3.5`)
	assert.NotContains(t, prompt, "a@b.com")
	assert.Contains(t, prompt, "Data preview (first 3 lines):\nregion,score\nnorth,4\nsouth,3\n")
	assert.NotContains(t, prompt, "east,5")
	assert.True(t, strings.HasSuffix(prompt, SizeQuery(req.Query).Instruction))
}

func TestBuildTextPrompt_OmitsEmptySections(t *testing.T) {
	prompt := BuildTextPrompt(&Request{Query: "what is the mean"}, nil, nil, 20, SizeQuery("what is the mean"))

	assert.NotContains(t, prompt, "Statistics:")
	assert.NotContains(t, prompt, "Dataset summary:")
	assert.NotContains(t, prompt, "Data preview")
	assert.Contains(t, prompt, "1-2 sentences")
}

func TestBuildFilePrompt(t *testing.T) {
	req := &Request{
		Query:       "which region scored highest",
		ChartConfig: map[string]any{"type": "pie"},
		CSVData:     "region,score\nnorth,4\n",
		Context:     &AnalysisContext{FileURI: "files/abc", FileName: "survey.csv"},
	}

	prompt := BuildFilePrompt(req, SizeQuery(req.Query))

	assert.Contains(t, prompt, "File: survey.csv")
	assert.Contains(t, prompt, "Question: which region scored highest")
	assert.Contains(t, prompt, `"type": "pie"`)
	assert.NotContains(t, prompt, "north,4")
	assert.Contains(t, prompt, "1-2 sentences")
}
