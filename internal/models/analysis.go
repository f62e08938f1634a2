package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Category is the coarse file family derived from the extension
type Category string

const (
	CategoryImage    Category = "image"
	CategoryDocument Category = "document"
	CategoryData     Category = "data"
	CategoryCode     Category = "code"
	CategoryUnknown  Category = "unknown"
)

// UploadedFile is a file persisted in the upload area, identified by its sanitized name
type UploadedFile struct {
	Filename string
	Path     string
	Size     int64
	Category Category
}

// Result type tags used in the envelope
const (
	ResultTypeImage        = "image"
	ResultTypeDocument     = "document"
	ResultTypeTextDocument = "text document"
	ResultTypeCSV          = "CSV data"
	ResultTypeJSONArray    = "JSON data (array)"
	ResultTypeJSONObject   = "JSON data (object)"
	ResultTypeJSONInvalid  = "JSON data (invalid)"
	ResultTypeDataFile     = "data file"
	ResultTypeCode         = "code file"
	ResultTypeUnknown      = "unknown"
	ResultTypeError        = "error"
)

// AnalysisResult is the envelope returned for every analyzed upload.
// Category specific details are embedded pointers so their fields are
// flattened into the same JSON object when present.
type AnalysisResult struct {
	Type       string  `json:"type"`
	Filename   string  `json:"filename"`
	Size       string  `json:"size,omitempty"`
	Analysis   string  `json:"analysis"`
	AIAnalysis *string `json:"ai_analysis"`
	Error      string  `json:"error,omitempty"`

	FileTypeDescription string `json:"file_type_description,omitempty"`
	Disclaimer          string `json:"disclaimer,omitempty"`

	*ImageDetails
	*TextDetails
	*CSVDetails
	*JSONDetails
	*CodeDetails
}

// HasAIAnalysis reports whether the model contributed to the result
func (r *AnalysisResult) HasAIAnalysis() bool {
	return r.AIAnalysis != nil && *r.AIAnalysis != ""
}

// ImageDetails holds metadata gathered without decoding pixels
type ImageDetails struct {
	MimeType string `json:"mime_type,omitempty"`
}

// TextDetails holds the structural profile of a plain text document
type TextDetails struct {
	WordCount     int      `json:"word_count"`
	LineCount     int      `json:"line_count"`
	DocumentType  string   `json:"document_type"`
	FrequentWords []string `json:"frequent_words"`
	Headings      []string `json:"headings"`
	Sample        string   `json:"sample"`
}

// CSVDetails holds the profile built from the header and sampled rows
type CSVDetails struct {
	Columns         int         `json:"columns"`
	Rows            RowCount    `json:"rows"`
	Headers         []string    `json:"headers"`
	ColumnTypes     ColumnTypes `json:"column_types"`
	KeyColumns      []string    `json:"key_columns"`
	CategoryColumns []string    `json:"category_columns"`
}

// JSONDetails holds the shape of a JSON document
type JSONDetails struct {
	Items      *int     `json:"items,omitempty"`
	SampleKeys []string `json:"sample_keys,omitempty"`
	TopKeys    []string `json:"top_keys,omitempty"`
}

// CodeDetails holds the profile of a source file
type CodeDetails struct {
	Lines      int          `json:"lines"`
	Complexity string       `json:"complexity"`
	Purpose    string       `json:"purpose"`
	Features   CodeFeatures `json:"features"`
}

// CodeFeatures are the language specific extractions; only the fields the
// extractor for the file's language fills are emitted.
type CodeFeatures struct {
	Imports        []string `json:"imports,omitempty"`
	Includes       []string `json:"includes,omitempty"`
	Functions      []string `json:"functions,omitempty"`
	Classes        []string `json:"classes,omitempty"`
	ArrowFunctions *bool    `json:"arrow_functions,omitempty"`
	Doctype        *bool    `json:"doctype,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Scripts        []string `json:"scripts,omitempty"`
	Styles         []string `json:"styles,omitempty"`
	Selectors      []string `json:"selectors,omitempty"`
	Properties     []string `json:"properties,omitempty"`
	PHPTags        *bool    `json:"php_tags,omitempty"`
}

// ColumnType is the inferred type of a CSV column
type ColumnType string

const (
	ColumnUnknown ColumnType = "unknown"
	ColumnInteger ColumnType = "integer"
	ColumnDecimal ColumnType = "decimal"
	ColumnDate    ColumnType = "date"
	ColumnBoolean ColumnType = "boolean"
	ColumnText    ColumnType = "text"
)

// ColumnTypeEntry pairs a header with its inferred type
type ColumnTypeEntry struct {
	Header string
	Type   ColumnType
}

// ColumnTypes keeps header order and marshals as a JSON object
type ColumnTypes []ColumnTypeEntry

// Get returns the type recorded for header
func (c ColumnTypes) Get(header string) (ColumnType, bool) {
	for _, e := range c {
		if e.Header == header {
			return e.Type, true
		}
	}
	return ColumnUnknown, false
}

// MarshalJSON writes the entries as an object in header order
func (c ColumnTypes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Header)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Quote(string(e.Type)))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RowCount is either an exact count or an estimate rendered as "~N"
type RowCount struct {
	Value     int
	Estimated bool
}

// String renders the count the way it appears in synopses
func (r RowCount) String() string {
	if r.Estimated {
		return fmt.Sprintf("~%d", r.Value)
	}
	return strconv.Itoa(r.Value)
}

// MarshalJSON emits a number for exact counts and a string for estimates
func (r RowCount) MarshalJSON() ([]byte, error) {
	if r.Estimated {
		return json.Marshal(r.String())
	}
	return json.Marshal(r.Value)
}
