package services

import (
	"context"
	"encoding/json"
	"testing"

	"synthara-assistant-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectJSON(t *testing.T) {
	shape, err := InspectJSON(`[{"b":1,"a":2},{"c":3}]`)
	require.NoError(t, err)
	assert.Equal(t, "array", shape.Kind)
	assert.Equal(t, 2, shape.Items)
	assert.Equal(t, []string{"b", "a"}, shape.Keys)

	shape, err = InspectJSON(`{"z":{"nested":true},"y":[1,2],"z":0}`)
	require.NoError(t, err)
	assert.Equal(t, "object", shape.Kind)
	assert.Equal(t, []string{"z", "y"}, shape.Keys)

	shape, err = InspectJSON(`[1, "two", {"k": 3}]`)
	require.NoError(t, err)
	assert.Equal(t, 3, shape.Items)
	assert.Empty(t, shape.Keys)

	shape, err = InspectJSON(`42`)
	require.NoError(t, err)
	assert.Equal(t, "scalar", shape.Kind)

	_, err = InspectJSON(`{not json`)
	assert.Error(t, err)

	_, err = InspectJSON(`{"a":1} {"b":2}`)
	assert.Error(t, err)
}

func TestDataAnalyzerJSONArray(t *testing.T) {
	dir := t.TempDir()
	ai := &fakeAugmenter{}
	content := `[{"b":1,"a":2},{"c":3}]`
	file := writeTestFile(t, dir, "items.json", content)

	result, err := (&DataAnalyzer{ai: ai}).Analyze(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, models.ResultTypeJSONArray, result.Type)
	assert.Equal(t, "This JSON file contains an array with 2 items. Each item appears to have properties like: b, a.", result.Analysis)
	require.NotNil(t, result.JSONDetails)
	require.NotNil(t, result.Items)
	assert.Equal(t, 2, *result.Items)
	assert.Equal(t, content, ai.lastContent())

	body, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"items":2`)
	assert.Contains(t, string(body), `"sample_keys":["b","a"]`)
	assert.NotContains(t, string(body), "top_keys")
}

func TestDataAnalyzerJSONObjectKeysCapped(t *testing.T) {
	dir := t.TempDir()
	file := writeTestFile(t, dir, "config.json", `{"one":1,"two":2,"three":3,"four":4,"five":5,"six":6}`)

	result, err := (&DataAnalyzer{ai: &fakeAugmenter{}}).Analyze(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, models.ResultTypeJSONObject, result.Type)
	assert.Equal(t, "This JSON file contains an object with top-level properties: one, two, three, four, five.", result.Analysis)
	assert.Equal(t, []string{"one", "two", "three", "four", "five"}, result.TopKeys)
	assert.Nil(t, result.Items)
}

func TestDataAnalyzerJSONInvalid(t *testing.T) {
	dir := t.TempDir()
	ai := &fakeAugmenter{reply: "Broken file."}
	file := writeTestFile(t, dir, "broken.json", `{not json`)

	result, err := (&DataAnalyzer{ai: ai}).Analyze(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, models.ResultTypeJSONInvalid, result.Type)
	assert.Equal(t, "This file has a .json extension but does not contain valid JSON data.", result.Analysis)
	require.NotNil(t, result.AIAnalysis)
	assert.Equal(t, "Broken file.", *result.AIAnalysis)
	assert.Nil(t, result.JSONDetails)
	assert.Equal(t, "", ai.lastContent())
}

func TestDataAnalyzerJSONScalar(t *testing.T) {
	dir := t.TempDir()
	file := writeTestFile(t, dir, "answer.json", `42`)

	result, err := (&DataAnalyzer{ai: &fakeAugmenter{}}).Analyze(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, models.ResultTypeDataFile, result.Type)
	assert.Nil(t, result.JSONDetails)
}
