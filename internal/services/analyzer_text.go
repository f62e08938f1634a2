package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"synthara-assistant-go/internal/models"
)

const (
	textPrefixChars = 3000
	textSampleChars = 250
	textTopWords    = 8
	textMaxHeadings = 5
)

var (
	wordPattern         = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)
	numberedLinePattern = regexp.MustCompile(`^\d+\.`)
	numberedListPattern = regexp.MustCompile(`\d+\.\s+`)
)

var textStopWords = map[string]bool{
	"the": true, "and": true, "this": true, "that": true, "with": true,
	"from": true, "have": true, "for": true, "not": true, "are": true,
	"but": true, "was": true, "were": true, "they": true, "will": true,
	"what": true, "when": true, "where": true, "how": true, "which": true,
}

// documentTypes is checked in order; the first rule that matches names the document
var documentTypes = []struct {
	name  string
	match func(lower string) bool
}{
	{"letter or email", func(s string) bool { return containsAny(s, "dear", "sincerely", "regards") }},
	{"academic or research document", func(s string) bool {
		return containsAny(s, "abstract", "introduction", "conclusion", "references")
	}},
	{"creative writing or story", func(s string) bool { return containsAny(s, "chapter", "scene", "character") }},
	{"list or instructions", numberedListPattern.MatchString},
}

// DocumentAnalyzer profiles plain text documents and describes the other
// document formats generically.
type DocumentAnalyzer struct {
	ai FileAugmenter
}

func (a *DocumentAnalyzer) Analyze(ctx context.Context, file models.UploadedFile) (*models.AnalysisResult, error) {
	if lowerExt(file.Filename) != "txt" {
		return &models.AnalysisResult{
			Type:       models.ResultTypeDocument,
			Filename:   file.Filename,
			Size:       formatSize(file.Size),
			Analysis:   "This is a document file. With proper document processing libraries, I could extract and analyze the text content.",
			AIAnalysis: aiText(a.ai.AnalyzeFile(ctx, file.Path, file.Category, file.Filename, "")),
		}, nil
	}

	content, err := readPrefix(file.Path, textPrefixChars)
	if err != nil {
		return nil, err
	}

	details := ProfileText(content)

	return &models.AnalysisResult{
		Type:        models.ResultTypeTextDocument,
		Filename:    file.Filename,
		Size:        formatSize(file.Size),
		Analysis:    textSynopsis(details, countHeadings(content)),
		AIAnalysis:  aiText(a.ai.AnalyzeFile(ctx, file.Path, file.Category, file.Filename, content)),
		TextDetails: details,
	}, nil
}

// ProfileText computes the structural profile of a text excerpt
func ProfileText(content string) *models.TextDetails {
	lines := splitLines(content)

	headings := findHeadings(lines)
	if len(headings) > textMaxHeadings {
		headings = headings[:textMaxHeadings]
	}

	sample := content
	if utf8.RuneCountInString(content) > textSampleChars {
		sample = truncateRunes(content, textSampleChars) + "..."
	}

	return &models.TextDetails{
		WordCount:     len(strings.Fields(content)),
		LineCount:     len(lines),
		DocumentType:  documentType(content),
		FrequentWords: frequentWords(content, textTopWords),
		Headings:      headings,
		Sample:        sample,
	}
}

func textSynopsis(d *models.TextDetails, headingCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This appears to be a %s with approximately %d words across %d lines.",
		d.DocumentType, d.WordCount, d.LineCount)
	if len(d.FrequentWords) > 0 {
		fmt.Fprintf(&b, " Key topics include: %s.", strings.Join(d.FrequentWords, ", "))
	}
	// Sections are only listed when none were cut off
	if headingCount > 0 && headingCount <= textMaxHeadings {
		fmt.Fprintf(&b, " Document sections: %s.", strings.Join(d.Headings, ", "))
	}
	return b.String()
}

func frequentWords(content string, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(content), -1) {
		if utf8.RuneCountInString(w) <= 3 || textStopWords[w] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	// Stable sort keeps first-seen order among equal counts
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	if order == nil {
		return []string{}
	}
	return order
}

func findHeadings(lines []string) []string {
	headings := []string{}
	for _, line := range lines {
		if isHeading(line) {
			headings = append(headings, strings.TrimSpace(line))
		}
	}
	return headings
}

func countHeadings(content string) int {
	return len(findHeadings(splitLines(content)))
}

// isHeading accepts all-caps lines, numbered lines and short lines ending in a colon
func isHeading(line string) bool {
	n := utf8.RuneCountInString(line)
	switch {
	case isUpper(line) && n > 3 && n < 50:
		return true
	case numberedLinePattern.MatchString(line):
		return true
	case strings.HasSuffix(line, ":") && n < 50:
		return true
	}
	return false
}

// isUpper reports whether s has at least one cased letter and no lower-case ones
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

func documentType(content string) string {
	lower := strings.ToLower(content)
	for _, dt := range documentTypes {
		if dt.match(lower) {
			return dt.name
		}
	}
	return "general text"
}
