package services

import (
	"strings"

	"synthara-assistant-go/internal/models"
)

// allowedExtensions maps every accepted extension to its category.
// Each extension belongs to exactly one category.
var allowedExtensions = map[string]models.Category{
	"png": models.CategoryImage, "jpg": models.CategoryImage, "jpeg": models.CategoryImage,
	"gif": models.CategoryImage, "bmp": models.CategoryImage, "webp": models.CategoryImage,
	"tiff": models.CategoryImage,

	"pdf": models.CategoryDocument, "doc": models.CategoryDocument, "docx": models.CategoryDocument,
	"txt": models.CategoryDocument, "rtf": models.CategoryDocument, "odt": models.CategoryDocument,

	"csv": models.CategoryData, "xls": models.CategoryData, "xlsx": models.CategoryData,
	"json": models.CategoryData, "xml": models.CategoryData,

	"py": models.CategoryCode, "js": models.CategoryCode, "html": models.CategoryCode,
	"css": models.CategoryCode, "java": models.CategoryCode, "cpp": models.CategoryCode,
	"c": models.CategoryCode, "php": models.CategoryCode, "rb": models.CategoryCode,
	"go": models.CategoryCode, "ts": models.CategoryCode, "jsx": models.CategoryCode,
	"tsx": models.CategoryCode,
}

var fileTypeDescriptions = map[string]string{
	"png":  "PNG (Portable Network Graphics) - Lossless compression image format",
	"jpg":  "JPEG (Joint Photographic Experts Group) - Compressed image format",
	"jpeg": "JPEG (Joint Photographic Experts Group) - Compressed image format",
	"gif":  "GIF (Graphics Interchange Format) - Animated image format",
	"bmp":  "BMP (Bitmap) - Uncompressed raster image format",
	"webp": "WebP - Modern image format with superior compression",
	"tiff": "TIFF (Tagged Image File Format) - High-quality image format",

	"pdf":  "PDF (Portable Document Format) - Document format for sharing",
	"doc":  "DOC - Microsoft Word Document (older format)",
	"docx": "DOCX - Microsoft Word Document (XML-based)",
	"txt":  "TXT - Plain text file",
	"rtf":  "RTF (Rich Text Format) - Formatted text document",
	"odt":  "ODT (OpenDocument Text) - Open-source document format",

	"csv":  "CSV (Comma-Separated Values) - Tabular data format",
	"xls":  "XLS - Microsoft Excel Spreadsheet (older format)",
	"xlsx": "XLSX - Microsoft Excel Spreadsheet (XML-based)",
	"json": "JSON (JavaScript Object Notation) - Data interchange format",
	"xml":  "XML (Extensible Markup Language) - Structured data format",

	"py":   "Python source code file",
	"js":   "JavaScript source code file",
	"html": "HTML (HyperText Markup Language) file",
	"css":  "CSS (Cascading Style Sheets) file",
	"java": "Java source code file",
	"cpp":  "C++ source code file",
	"c":    "C source code file",
	"php":  "PHP source code file",
	"rb":   "Ruby source code file",
	"go":   "Go source code file",
	"ts":   "TypeScript source code file",
	"jsx":  "JSX (JavaScript XML) file",
	"tsx":  "TSX (TypeScript XML) file",
}

// extension returns the lower-cased text after the last dot, and false when
// the name has no dot at all.
func extension(filename string) (string, bool) {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return "", false
	}
	return strings.ToLower(filename[i+1:]), true
}

// Classify returns the category of filename based on its extension
func Classify(filename string) models.Category {
	ext, ok := extension(filename)
	if !ok {
		return models.CategoryUnknown
	}
	if category, found := allowedExtensions[ext]; found {
		return category
	}
	return models.CategoryUnknown
}

// IsAllowed reports whether filename has an accepted extension
func IsAllowed(filename string) bool {
	return Classify(filename) != models.CategoryUnknown
}

// DescribeFileType returns a human readable label for the file's format
func DescribeFileType(filename string) string {
	ext, ok := extension(filename)
	if !ok {
		return "Unknown file type"
	}
	if desc, found := fileTypeDescriptions[ext]; found {
		return desc
	}
	return strings.ToUpper(ext) + " file"
}
