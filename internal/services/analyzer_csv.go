package services

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"synthara-assistant-go/internal/models"
)

const (
	csvSampleRows     = 20
	csvMaxHeaders     = 10
	csvMaxKeyColumns  = 3
	csvMaxCategories  = 3
	csvMaxCategoryLen = 10
	csvAIPreviewRows  = 5
)

var (
	numericPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	datePatterns   = []*regexp.Regexp{
		regexp.MustCompile(`^\d{1,4}[-/]\d{1,2}[-/]\d{1,4}`),
		regexp.MustCompile(`^\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`),
	}
	booleanValues = map[string]bool{
		"true": true, "false": true, "yes": true, "no": true, "0": true, "1": true,
	}
)

// CSVSample is the header and the first data rows of a CSV file
type CSVSample struct {
	Headers []string
	Rows    [][]string
}

// readCSVSample reads the header and up to limit data rows
func readCSVSample(r io.Reader, limit int) (*CSVSample, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	sample := &CSVSample{Headers: []string{}}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return sample, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	sample.Headers = cleanRecord(header)

	for len(sample.Rows) < limit {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", len(sample.Rows)+1, err)
		}
		sample.Rows = append(sample.Rows, cleanRecord(record))
	}
	return sample, nil
}

func cleanRecord(record []string) []string {
	out := make([]string, len(record))
	for i, v := range record {
		out[i] = strings.ToValidUTF8(v, "")
	}
	return out
}

// estimateRowCount returns the exact count (data rows plus the header) unless
// the sample was full, in which case the total is extrapolated from the file size.
func estimateRowCount(rows [][]string, fileSize int64) models.RowCount {
	exact := models.RowCount{Value: len(rows) + 1}
	if len(rows) < csvSampleRows {
		return exact
	}

	total := 0
	for _, row := range rows {
		total += len(strings.Join(row, ","))
	}
	avg := float64(total) / float64(len(rows))
	if avg <= 0 {
		return exact
	}

	estimated := int(float64(fileSize) / avg)
	if estimated > csvSampleRows {
		return models.RowCount{Value: estimated, Estimated: true}
	}
	return exact
}

func isDateValue(v string) bool {
	for _, p := range datePatterns {
		if p.MatchString(v) {
			return true
		}
	}
	return false
}

// classifyValue is the type a first non-empty value suggests for its column
func classifyValue(v string) models.ColumnType {
	switch {
	case numericPattern.MatchString(v):
		if strings.Contains(v, ".") {
			return models.ColumnDecimal
		}
		return models.ColumnInteger
	case isDateValue(v):
		return models.ColumnDate
	case booleanValues[strings.ToLower(v)]:
		return models.ColumnBoolean
	default:
		return models.ColumnText
	}
}

// refineType returns the column type after observing v. Types only ever move
// to text; integer columns are never widened to decimal.
func refineType(current models.ColumnType, v string) models.ColumnType {
	switch current {
	case models.ColumnUnknown:
		return classifyValue(v)
	case models.ColumnInteger, models.ColumnDecimal:
		if !numericPattern.MatchString(v) {
			return models.ColumnText
		}
	case models.ColumnDate:
		if !isDateValue(v) {
			return models.ColumnText
		}
	case models.ColumnBoolean:
		if !booleanValues[strings.ToLower(v)] {
			return models.ColumnText
		}
	}
	return current
}

// InferColumnTypes assigns a type per distinct header. Columns sharing a
// header name share one type.
func InferColumnTypes(headers []string, rows [][]string) models.ColumnTypes {
	types := models.ColumnTypes{}
	index := make(map[string]int, len(headers))
	for _, h := range headers {
		if _, seen := index[h]; seen {
			continue
		}
		index[h] = len(types)
		types = append(types, models.ColumnTypeEntry{Header: h, Type: models.ColumnUnknown})
	}

	for _, row := range rows {
		for i, value := range row {
			if i >= len(headers) || strings.TrimSpace(value) == "" {
				continue
			}
			entry := &types[index[headers[i]]]
			entry.Type = refineType(entry.Type, value)
		}
	}
	return types
}

func columnValues(rows [][]string, i int) []string {
	var values []string
	for _, row := range rows {
		if i < len(row) {
			values = append(values, row[i])
		}
	}
	return values
}

func distinctCount(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// keyColumns lists headers whose sampled values are all distinct
func keyColumns(headers []string, rows [][]string) []string {
	keys := []string{}
	for i, h := range headers {
		values := columnValues(rows, i)
		if len(values) > 0 && distinctCount(values) == len(values) {
			keys = append(keys, h)
		}
	}
	return keys
}

// categoryColumns lists text headers with a small set of repeated values
func categoryColumns(headers []string, rows [][]string, types models.ColumnTypes) []string {
	categories := []string{}
	for i, h := range headers {
		if t, _ := types.Get(h); t != models.ColumnText {
			continue
		}
		values := columnValues(rows, i)
		unique := distinctCount(values)
		if len(values) > 0 && unique > 1 && unique <= csvMaxCategoryLen {
			categories = append(categories, h)
		}
	}
	return categories
}

// typeSummary counts columns per type, in the order the types first appear
func typeSummary(types models.ColumnTypes) []string {
	counts := make(map[models.ColumnType]int)
	var order []models.ColumnType
	for _, e := range types {
		if counts[e.Type] == 0 {
			order = append(order, e.Type)
		}
		counts[e.Type]++
	}
	summary := make([]string, 0, len(order))
	for _, t := range order {
		summary = append(summary, fmt.Sprintf("%d %s", counts[t], t))
	}
	return summary
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// ProfileCSV builds the CSV details from a sample
func ProfileCSV(sample *CSVSample, fileSize int64) *models.CSVDetails {
	types := InferColumnTypes(sample.Headers, sample.Rows)
	return &models.CSVDetails{
		Columns:         len(sample.Headers),
		Rows:            estimateRowCount(sample.Rows, fileSize),
		Headers:         firstN(sample.Headers, csvMaxHeaders),
		ColumnTypes:     types,
		KeyColumns:      keyColumns(sample.Headers, sample.Rows),
		CategoryColumns: categoryColumns(sample.Headers, sample.Rows, types),
	}
}

func csvSynopsis(d *models.CSVDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This CSV file contains %s rows and %d columns.", d.Rows, d.Columns)
	if summary := typeSummary(d.ColumnTypes); len(summary) > 0 {
		fmt.Fprintf(&b, " Column types: %s.", strings.Join(summary, ", "))
	}
	if len(d.KeyColumns) > 0 {
		fmt.Fprintf(&b, " Potential key columns: %s.", strings.Join(firstN(d.KeyColumns, csvMaxKeyColumns), ", "))
	}
	if len(d.CategoryColumns) > 0 {
		fmt.Fprintf(&b, " Categorical columns: %s.", strings.Join(firstN(d.CategoryColumns, csvMaxCategories), ", "))
	}
	return b.String()
}

// csvAIContext is the summary handed to the model instead of raw bytes
func csvAIContext(sample *CSVSample, types models.ColumnTypes) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CSV Headers: %s\n\n", strings.Join(sample.Headers, ", "))
	b.WriteString("Sample data (first 5 rows):\n")
	for i, row := range sample.Rows {
		if i >= csvAIPreviewRows {
			break
		}
		fmt.Fprintf(&b, "Row %d: %s\n", i+1, strings.Join(row, ", "))
	}

	pairs := make([]string, 0, len(types))
	for _, e := range types {
		pairs = append(pairs, fmt.Sprintf("'%s': '%s'", e.Header, e.Type))
	}
	fmt.Fprintf(&b, "\nColumn types: {%s}\n", strings.Join(pairs, ", "))
	return b.String()
}

func (a *DataAnalyzer) analyzeCSV(ctx context.Context, file models.UploadedFile) (*models.AnalysisResult, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sample, err := readCSVSample(f, csvSampleRows)
	if err != nil {
		return nil, err
	}

	details := ProfileCSV(sample, file.Size)
	details.KeyColumns = firstN(details.KeyColumns, csvMaxKeyColumns)
	details.CategoryColumns = firstN(details.CategoryColumns, csvMaxCategories)

	return &models.AnalysisResult{
		Type:       models.ResultTypeCSV,
		Filename:   file.Filename,
		Size:       formatSize(file.Size),
		Analysis:   csvSynopsis(details),
		AIAnalysis: aiText(a.ai.AnalyzeFile(ctx, file.Path, file.Category, file.Filename, csvAIContext(sample, details.ColumnTypes))),
		CSVDetails: details,
	}, nil
}
