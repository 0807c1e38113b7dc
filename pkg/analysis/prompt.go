package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Query length thresholds, in characters.
const (
	simpleQueryMaxChars = 50
	shortQueryMaxChars  = 30
	mediumQueryMaxChars = 100
)

// Word budgets by query length.
const (
	shortAnswerWords  = 50
	mediumAnswerWords = 150
	longAnswerWords   = 300
)

const simpleInstruction = "Answer in 1-2 sentences only."

var interrogative = regexp.MustCompile(`(?i)\b(what|name|how many|which|when|where)\b`)

// Sizing is the answer length policy for a query.
type Sizing struct {
	Simple bool

	// MaxWords is zero for simple queries.
	MaxWords int

	Instruction string
}

// SizeQuery classifies query. Short interrogative queries are simple and
// get a one or two sentence instruction; everything else gets a word
// budget that grows with the query length.
func SizeQuery(query string) Sizing {
	query = strings.TrimSpace(query)
	n := utf8.RuneCountInString(query)

	if n < simpleQueryMaxChars && interrogative.MatchString(query) {
		return Sizing{Simple: true, Instruction: simpleInstruction}
	}

	words := longAnswerWords
	switch {
	case n < shortQueryMaxChars:
		words = shortAnswerWords
	case n < mediumQueryMaxChars:
		words = mediumAnswerWords
	}
	return Sizing{
		MaxWords: words,
		Instruction: fmt.Sprintf(
			"Keep the answer under %d words. Use bullet points only when the answer has multiple points.", words),
	}
}

// BuildFilePrompt builds the compact prompt sent alongside an uploaded
// dataset. The raw CSV is not repeated.
func BuildFilePrompt(req *Request, sizing Sizing) string {
	var b strings.Builder

	b.WriteString("You are a data analyst. The attached file is the survey dataset to analyze.\n\n")
	if req.Context != nil && req.Context.FileName != "" {
		fmt.Fprintf(&b, "File: %s\n", req.Context.FileName)
	}
	fmt.Fprintf(&b, "Question: %s\n", strings.TrimSpace(req.Query))
	writeSection(&b, "Chart context", req.ChartConfig)

	b.WriteString("\n")
	b.WriteString(sizing.Instruction)
	return b.String()
}

// BuildTextPrompt builds the prompt for requests without an uploaded file.
// statistics and summary must already be sanitized. At most previewRows
// CSV lines are embedded.
func BuildTextPrompt(req *Request, statistics, summary any, previewRows int, sizing Sizing) string {
	var b strings.Builder

	b.WriteString("You are a data analyst answering questions about a survey dataset.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", strings.TrimSpace(req.Query))
	writeSection(&b, "Dataset summary", summary)
	writeSection(&b, "Chart context", req.ChartConfig)
	writeSection(&b, "Statistics", statistics)

	if preview := csvPreview(req.CSVData, previewRows); preview != "" {
		fmt.Fprintf(&b, "\nData preview (first %d lines):\n%s\n", strings.Count(preview, "\n")+1, preview)
	}

	b.WriteString("\n")
	b.WriteString(sizing.Instruction)
	return b.String()
}

func writeSection(b *strings.Builder, title string, data any) {
	if isEmpty(data) {
		return
	}
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintf(b, "\n%s:\n%s\n", title, encoded)
}

func isEmpty(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

// csvPreview returns the first n non-empty lines of data.
func csvPreview(data string, n int) string {
	if n <= 0 || strings.TrimSpace(data) == "" {
		return ""
	}

	lines := make([]string, 0, n)
	for line := range strings.Lines(data) {
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == n {
			break
		}
	}
	return strings.Join(lines, "\n")
}
