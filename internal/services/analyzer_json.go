package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"synthara-assistant-go/internal/models"
)

const (
	jsonPrefixChars = 2000
	jsonMaxKeys     = 5
)

// DataAnalyzer profiles CSV and JSON files and describes the other data
// formats generically.
type DataAnalyzer struct {
	ai FileAugmenter
}

func (a *DataAnalyzer) Analyze(ctx context.Context, file models.UploadedFile) (*models.AnalysisResult, error) {
	switch lowerExt(file.Filename) {
	case "csv":
		return a.analyzeCSV(ctx, file)
	case "json":
		return a.analyzeJSON(ctx, file)
	default:
		return a.genericData(ctx, file), nil
	}
}

func (a *DataAnalyzer) genericData(ctx context.Context, file models.UploadedFile) *models.AnalysisResult {
	return &models.AnalysisResult{
		Type:       models.ResultTypeDataFile,
		Filename:   file.Filename,
		Size:       formatSize(file.Size),
		Analysis:   "This is a data file. With proper data processing libraries, I could analyze the structure and content.",
		AIAnalysis: aiText(a.ai.AnalyzeFile(ctx, file.Path, file.Category, file.Filename, "")),
	}
}

// JSONShape describes the top level of a JSON document
type JSONShape struct {
	Kind  string // "array", "object" or "scalar"
	Items int
	Keys  []string
}

// InspectJSON reports the shape of content, keeping object keys in document
// order. It fails when content is not a single valid JSON value.
func InspectJSON(content string) (*JSONShape, error) {
	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("invalid JSON")
	}

	dec := json.NewDecoder(strings.NewReader(content))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch tok {
	case json.Delim('['):
		shape := &JSONShape{Kind: "array", Keys: []string{}}
		for dec.More() {
			var item json.RawMessage
			if err := dec.Decode(&item); err != nil {
				return nil, err
			}
			if shape.Items == 0 {
				if keys, ok := objectKeys(item); ok {
					shape.Keys = keys
				}
			}
			shape.Items++
		}
		return shape, nil
	case json.Delim('{'):
		keys, err := readObjectKeys(dec)
		if err != nil {
			return nil, err
		}
		return &JSONShape{Kind: "object", Keys: keys}, nil
	default:
		return &JSONShape{Kind: "scalar"}, nil
	}
}

// objectKeys returns the keys of raw when it holds an object
func objectKeys(raw json.RawMessage) ([]string, bool) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, false
	}
	keys, err := readObjectKeys(dec)
	if err != nil {
		return nil, false
	}
	return keys, true
}

// readObjectKeys consumes the members of an object whose opening brace has
// already been read. Repeated keys are reported once, at their first position.
func readObjectKeys(dec *json.Decoder) ([]string, error) {
	keys := []string{}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (a *DataAnalyzer) analyzeJSON(ctx context.Context, file models.UploadedFile) (*models.AnalysisResult, error) {
	content, err := readPrefix(file.Path, jsonPrefixChars)
	if err != nil {
		return nil, err
	}

	shape, err := InspectJSON(content)
	if err != nil {
		return &models.AnalysisResult{
			Type:       models.ResultTypeJSONInvalid,
			Filename:   file.Filename,
			Size:       formatSize(file.Size),
			Analysis:   "This file has a .json extension but does not contain valid JSON data.",
			AIAnalysis: aiText(a.ai.AnalyzeFile(ctx, file.Path, file.Category, file.Filename, "")),
		}, nil
	}

	keys := firstN(shape.Keys, jsonMaxKeys)

	switch shape.Kind {
	case "array":
		items := shape.Items
		return &models.AnalysisResult{
			Type:     models.ResultTypeJSONArray,
			Filename: file.Filename,
			Size:     formatSize(file.Size),
			Analysis: fmt.Sprintf("This JSON file contains an array with %d items. Each item appears to have properties like: %s.",
				items, strings.Join(keys, ", ")),
			AIAnalysis:  aiText(a.ai.AnalyzeFile(ctx, file.Path, file.Category, file.Filename, content)),
			JSONDetails: &models.JSONDetails{Items: &items, SampleKeys: keys},
		}, nil
	case "object":
		return &models.AnalysisResult{
			Type:        models.ResultTypeJSONObject,
			Filename:    file.Filename,
			Size:        formatSize(file.Size),
			Analysis:    fmt.Sprintf("This JSON file contains an object with top-level properties: %s.", strings.Join(keys, ", ")),
			AIAnalysis:  aiText(a.ai.AnalyzeFile(ctx, file.Path, file.Category, file.Filename, content)),
			JSONDetails: &models.JSONDetails{TopKeys: keys},
		}, nil
	default:
		return a.genericData(ctx, file), nil
	}
}
