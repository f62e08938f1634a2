package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"synthara-assistant-go/internal/models"
)

const (
	codePrefixChars  = 5000
	codePreviewChars = 2500
)

var (
	pyImportPattern   = regexp.MustCompile(`import\s+(\w+)`)
	pyFuncPattern     = regexp.MustCompile(`def\s+(\w+)\s*\(`)
	classPattern      = regexp.MustCompile(`class\s+(\w+)`)
	jsImportPattern   = regexp.MustCompile(`import\s+.*?from\s+['"](.+?)['"]`)
	jsFuncPattern     = regexp.MustCompile(`function\s+(\w+)\s*\(`)
	arrowPattern      = regexp.MustCompile(`=>`)
	doctypePattern    = regexp.MustCompile(`(?i)<!DOCTYPE`)
	tagPattern        = regexp.MustCompile(`<(\w+)[>\s]`)
	scriptPattern     = regexp.MustCompile(`(?s)<script.*?>(.*?)</script>`)
	stylePattern      = regexp.MustCompile(`(?s)<style.*?>(.*?)</style>`)
	selectorPattern   = regexp.MustCompile(`([.#]?\w+)\s*\{`)
	propertyPattern   = regexp.MustCompile(`(\w+-?\w+)\s*:`)
	includePattern    = regexp.MustCompile(`#include\s+[<"](.+?)[>"]`)
	cImportPattern    = regexp.MustCompile(`import\s+(.+?);`)
	cFuncPattern      = regexp.MustCompile(`(\w+)\s+(\w+)\s*\([^)]*\)\s*\{`)
	phpTagPattern     = regexp.MustCompile(`<\?php`)
	commentLinePrefix = []string{"#", "//", "/*", "*"}
)

// CodeProfile is the result of the language specific extraction
type CodeProfile struct {
	Lines      int
	Complexity string
	Purpose    string
	Features   models.CodeFeatures
}

// CodeAnalyzer profiles source files with regular expressions
type CodeAnalyzer struct {
	ai FileAugmenter
}

func (a *CodeAnalyzer) Analyze(ctx context.Context, file models.UploadedFile) (*models.AnalysisResult, error) {
	content, err := readPrefix(file.Path, codePrefixChars)
	if err != nil {
		return nil, err
	}

	description := DescribeFileType(file.Filename)
	profile := ProfileCode(file.Filename, content)

	return &models.AnalysisResult{
		Type:       models.ResultTypeCode,
		Filename:   file.Filename,
		Size:       formatSize(file.Size),
		Analysis:   codeSynopsis(description, profile),
		AIAnalysis: aiText(a.ai.AnalyzeFile(ctx, file.Path, file.Category, file.Filename, codeAIContext(description, profile, content))),
		CodeDetails: &models.CodeDetails{
			Lines:      profile.Lines,
			Complexity: profile.Complexity,
			Purpose:    profile.Purpose,
			Features:   profile.Features,
		},
	}, nil
}

// ProfileCode extracts features, complexity and purpose from a source excerpt
func ProfileCode(filename, content string) *CodeProfile {
	ext := lowerExt(filename)
	lines := splitLines(content)
	features := extractFeatures(ext, content)

	return &CodeProfile{
		Lines:      len(lines),
		Complexity: complexityLevel(maxNesting(lines), len(features.Functions), len(features.Classes)),
		Purpose:    detectPurpose(ext, content, features),
		Features:   features,
	}
}

func extractFeatures(ext, content string) models.CodeFeatures {
	var f models.CodeFeatures
	switch ext {
	case "py":
		f.Imports = findGroup(pyImportPattern, content, 1)
		f.Functions = findGroup(pyFuncPattern, content, 1)
		f.Classes = findGroup(classPattern, content, 1)
	case "js", "ts", "jsx", "tsx":
		f.Imports = findGroup(jsImportPattern, content, 1)
		f.Functions = findGroup(jsFuncPattern, content, 1)
		f.ArrowFunctions = boolPtr(arrowPattern.MatchString(content))
		f.Classes = findGroup(classPattern, content, 1)
	case "html":
		f.Doctype = boolPtr(doctypePattern.MatchString(content))
		f.Tags = findGroup(tagPattern, content, 1)
		f.Scripts = findGroup(scriptPattern, content, 1)
		f.Styles = findGroup(stylePattern, content, 1)
	case "css":
		f.Selectors = findGroup(selectorPattern, content, 1)
		f.Properties = findGroup(propertyPattern, content, 1)
	case "java", "cpp", "c":
		f.Includes = findGroup(includePattern, content, 1)
		f.Imports = findGroup(cImportPattern, content, 1)
		// Group 2 is the name in "<type> <name>(...) {"
		f.Functions = findGroup(cFuncPattern, content, 2)
		f.Classes = findGroup(classPattern, content, 1)
	case "php":
		f.PHPTags = boolPtr(phpTagPattern.MatchString(content))
		f.Functions = findGroup(jsFuncPattern, content, 1)
		f.Classes = findGroup(classPattern, content, 1)
	}
	return f
}

func findGroup(re *regexp.Regexp, content string, group int) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		out = append(out, m[group])
	}
	return out
}

func boolPtr(b bool) *bool {
	return &b
}

// maxNesting is the deepest indentation level in units of four columns,
// ignoring blank and comment lines.
func maxNesting(lines []string) int {
	deepest := 0
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" || hasAnyPrefix(stripped, commentLinePrefix) {
			continue
		}
		indent := len([]rune(line)) - len([]rune(strings.TrimLeftFunc(line, isSpace)))
		if level := indent / 4; level > deepest {
			deepest = level
		}
	}
	return deepest
}

func isSpace(r rune) bool {
	return strings.ContainsRune(" \t\n\r\v\f", r)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func complexityLevel(nesting, functions, classes int) string {
	score := 1
	switch {
	case nesting > 5:
		score = 3
	case nesting > 3:
		score = 2
	}

	switch {
	case functions > 10 || classes > 5:
		score += 3
	case functions > 5 || classes > 2:
		score += 2
	default:
		score++
	}

	switch {
	case score >= 5:
		return "High"
	case score >= 3:
		return "Medium"
	default:
		return "Low"
	}
}

type purposeRule struct {
	purpose  string
	keywords []string
}

var (
	pythonPurposes = []purposeRule{
		{"Web Backend/API", []string{"flask", "django", "fastapi"}},
		{"Data Science/ML", []string{"pandas", "numpy", "matplotlib", "sklearn", "tensorflow", "torch"}},
		{"Testing", []string{"unittest", "pytest"}},
		{"GUI Application", []string{"tkinter", "PyQt", "wx"}},
	}
	scriptPurposes = []purposeRule{
		{"React Frontend", []string{"react", "component", "render", "usestate", "useeffect"}},
		{"Vue.js Frontend", []string{"vue", "component", "template", "methods"}},
		{"Angular Frontend", []string{"angular", "component", "ngmodule"}},
		{"Node.js Backend", []string{"express", "app.get", "app.post", "router"}},
		{"Testing", []string{"test", "describe", "it(", "expect"}},
	}
	pagePurposes = []purposeRule{
		{"Web Form/Interactive Page", []string{"form", "input", "button"}},
		{"Content/Article Page", []string{"article", "section", "header", "footer"}},
	}
)

// anyContains reports whether some item contains one of the keywords
func anyContains(items []string, keywords []string) bool {
	for _, item := range items {
		if containsAny(item, keywords...) {
			return true
		}
	}
	return false
}

func detectPurpose(ext, content string, f models.CodeFeatures) string {
	switch ext {
	case "py":
		for _, rule := range pythonPurposes {
			if anyContains(f.Imports, rule.keywords) {
				return rule.purpose
			}
		}
	case "js", "jsx", "ts", "tsx":
		lower := strings.ToLower(content)
		for _, rule := range scriptPurposes {
			if containsAny(lower, rule.keywords...) {
				return rule.purpose
			}
		}
	case "html":
		if !strings.Contains(content, "<body") || !strings.Contains(content, "<head") {
			break
		}
		for _, rule := range pagePurposes {
			if anyContains(f.Tags, rule.keywords) {
				return rule.purpose
			}
		}
		return "Web Page"
	}
	return "Unknown"
}

// synopsisImports falls back to C/C++ includes when a file has no import statements
func synopsisImports(f models.CodeFeatures) []string {
	if len(f.Imports) > 0 {
		return f.Imports
	}
	return f.Includes
}

func uniqueInOrder(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

// listClause writes "<prefix> N <noun>: a, b. " or the truncated form with "including"
func listClause(b *strings.Builder, prefix, noun string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s %d %s", prefix, len(items), noun)
	if len(items) <= limit {
		fmt.Fprintf(b, ": %s. ", strings.Join(items, ", "))
	} else {
		fmt.Fprintf(b, ", including: %s... ", strings.Join(items[:limit], ", "))
	}
}

func codeSynopsis(description string, p *CodeProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This %s contains approximately %d lines of code with %s complexity. ",
		description, p.Lines, strings.ToLower(p.Complexity))

	if p.Purpose != "Unknown" {
		fmt.Fprintf(&b, "Purpose: %s. ", p.Purpose)
	}
	if imports := synopsisImports(p.Features); len(imports) > 0 {
		fmt.Fprintf(&b, "It imports/includes: %s. ", strings.Join(firstN(imports, 5), ", "))
	}
	listClause(&b, "It defines", "functions", p.Features.Functions, 5)
	listClause(&b, "It defines", "classes", p.Features.Classes, 3)
	listClause(&b, "It uses", "HTML tags", uniqueInOrder(p.Features.Tags), 5)
	listClause(&b, "It defines", "CSS selectors", uniqueInOrder(p.Features.Selectors), 5)

	return strings.TrimSpace(b.String())
}

func codeAIContext(description string, p *CodeProfile, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Code type: %s\n", description)
	fmt.Fprintf(&b, "Code purpose: %s\n", p.Purpose)
	fmt.Fprintf(&b, "Complexity: %s\n", p.Complexity)
	fmt.Fprintf(&b, "Lines of code: %d\n\n", p.Lines)

	if imports := synopsisImports(p.Features); len(imports) > 0 {
		fmt.Fprintf(&b, "Imports/Includes: %s\n", strings.Join(imports, ", "))
	}
	if len(p.Features.Functions) > 0 {
		fmt.Fprintf(&b, "Functions: %s\n", strings.Join(p.Features.Functions, ", "))
	}
	if len(p.Features.Classes) > 0 {
		fmt.Fprintf(&b, "Classes: %s\n", strings.Join(p.Features.Classes, ", "))
	}

	fmt.Fprintf(&b, "\nCode preview:\n%s", truncateRunes(content, codePreviewChars))
	return b.String()
}
