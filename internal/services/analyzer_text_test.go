package services

import (
	"context"
	"strings"
	"testing"

	"synthara-assistant-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHeading(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"1. Introduction", true},
		{"12.Results", true},
		{"SUMMARY", true},
		{"ABC", false}, // too short for an all-caps heading
		{"Key findings:", true},
		{strings.Repeat("a", 59) + ":", false},
		{"Just a sentence.", false},
		{"1234", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, isHeading(tt.line))
		})
	}
}

func TestDocumentTypePriority(t *testing.T) {
	assert.Equal(t, "letter or email", documentType("Dear Sam, see the abstract. Regards"))
	assert.Equal(t, "academic or research document", documentType("Abstract\nWe study chapter lengths."))
	assert.Equal(t, "creative writing or story", documentType("The character walked in."))
	assert.Equal(t, "list or instructions", documentType("Steps:\n1. Open\n2. Close"))
	assert.Equal(t, "general text", documentType("Nothing special here."))
}

func TestFrequentWords(t *testing.T) {
	words := frequentWords("alpha beta alpha gamma beta alpha delta the with which", 8)
	assert.Equal(t, []string{"alpha", "beta", "gamma", "delta"}, words)

	// Ties keep first-seen order and the list is capped
	words = frequentWords("one1 two2 three3 four4 five5 six6 seven7 eight8 nine9", 8)
	assert.Equal(t, []string{"one1", "two2", "three3", "four4", "five5", "six6", "seven7", "eight8"}, words)

	assert.Equal(t, []string{}, frequentWords("a an the", 8))
}

func TestProfileText(t *testing.T) {
	content := "Dear team,\nINTRODUCTION\n1. Scope of work\n" +
		"This line is a very long line that goes well beyond fifty characters and ends:\nRegards\n"

	d := ProfileText(content)

	assert.Equal(t, 5, d.LineCount)
	assert.Equal(t, len(strings.Fields(content)), d.WordCount)
	assert.Equal(t, "letter or email", d.DocumentType)
	assert.Equal(t, []string{"INTRODUCTION", "1. Scope of work"}, d.Headings)
	assert.Equal(t, content, d.Sample)

	synopsis := textSynopsis(d, countHeadings(content))
	assert.True(t, strings.HasPrefix(synopsis, "This appears to be a letter or email with approximately "))
	assert.Contains(t, synopsis, " Key topics include: ")
	assert.True(t, strings.HasSuffix(synopsis, " Document sections: INTRODUCTION, 1. Scope of work."))
}

func TestProfileTextManyHeadings(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 7; i++ {
		b.WriteString("SECTION HEADER\n")
	}
	content := b.String()

	d := ProfileText(content)
	assert.Len(t, d.Headings, 5)

	// Sections are omitted from the synopsis once candidates exceed five
	assert.NotContains(t, textSynopsis(d, countHeadings(content)), "Document sections")
}

func TestProfileTextSample(t *testing.T) {
	content := strings.Repeat("é", 300)
	d := ProfileText(content)
	assert.Equal(t, strings.Repeat("é", 250)+"...", d.Sample)
}

func TestDocumentAnalyzerText(t *testing.T) {
	dir := t.TempDir()
	ai := &fakeAugmenter{}
	file := writeTestFile(t, dir, "notes.txt", "SUMMARY\nMindfulness practice helps. Mindfulness matters.\n")

	result, err := (&DocumentAnalyzer{ai: ai}).Analyze(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, models.ResultTypeTextDocument, result.Type)
	assert.Equal(t, "notes.txt", result.Filename)
	assert.Nil(t, result.AIAnalysis)
	require.NotNil(t, result.TextDetails)
	assert.Equal(t, "mindfulness", result.FrequentWords[0])
	assert.Equal(t, "SUMMARY\nMindfulness practice helps. Mindfulness matters.\n", ai.lastContent())
}

func TestDocumentAnalyzerOtherFormats(t *testing.T) {
	dir := t.TempDir()
	ai := &fakeAugmenter{reply: "Looks like a report."}
	file := writeTestFile(t, dir, "report.pdf", "%PDF-1.4 binary")

	result, err := (&DocumentAnalyzer{ai: ai}).Analyze(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, models.ResultTypeDocument, result.Type)
	assert.Contains(t, result.Analysis, "This is a document file.")
	require.NotNil(t, result.AIAnalysis)
	assert.Equal(t, "Looks like a report.", *result.AIAnalysis)
	assert.Nil(t, result.TextDetails)
	assert.Equal(t, "", ai.lastContent())
}
