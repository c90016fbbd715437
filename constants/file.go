package constants

import "strings"

const PDF = "PDF"

// AllowedExtensions holds the file extensions accepted for lab-report import.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// IsAllowedExt reports whether ext (with or without dot) can be imported.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// MaxUploadBytes bounds the size of a single uploaded report.
const MaxUploadBytes = 32 << 20
