package services

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// windowsDeviceNames cannot be used as file names on Windows hosts
var windowsDeviceNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"LPT1": true, "LPT2": true, "LPT3": true,
}

// SanitizeFilename reduces a client supplied name to a safe flat file name.
// Accents are folded to ASCII, path separators become spaces, runs of
// whitespace become a single underscore and every other character outside
// [A-Za-z0-9_.-] is dropped. Leading and trailing dots and underscores are
// trimmed. The result may be empty.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	ascii := b.String()

	ascii = strings.NewReplacer("/", " ", "\\", " ").Replace(ascii)
	ascii = strings.Join(strings.Fields(ascii), "_")
	ascii = unsafeFilenameChars.ReplaceAllString(ascii, "")
	ascii = strings.Trim(ascii, "._")

	if ascii != "" && windowsDeviceNames[strings.ToUpper(strings.SplitN(ascii, ".", 2)[0])] {
		ascii = "_" + ascii
	}
	return ascii
}

// sanitizePath joins name onto baseDir and rejects anything that would
// resolve outside of it.
func sanitizePath(name, baseDir string) (string, error) {
	cleaned := filepath.Clean(name)

	// Remove any leading separators
	cleaned = strings.TrimPrefix(cleaned, string(filepath.Separator))
	cleaned = strings.TrimPrefix(cleaned, "/")

	if cleaned == "." || cleaned == "" || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid file name: %q", name)
	}

	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("absolute path not allowed: %s", name)
	}

	fullPath := filepath.Join(baseDir, cleaned)

	baseAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute base path: %w", err)
	}

	fullAbs, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute file path: %w", err)
	}

	if filepath.Dir(fullAbs) != baseAbs {
		return "", fmt.Errorf("path outside base directory: %s", name)
	}

	return fullPath, nil
}
