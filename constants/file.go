package constants

import "strings"

// Source kinds recorded on a processed document.
const (
	IMAGE = "IMAGE"
	TEXT  = "TEXT"
)

// AllowedExtensions holds the image extensions accepted for ingestion.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
	"bmp":  {},
	"tif":  {},
	"tiff": {},
	"heic": {},
	"heif": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsHEICExt reports whether the (normalized) extension needs HEIC conversion.
func IsHEICExt(ext string) bool {
	ext = NormalizeExt(ext)
	return ext == "heic" || ext == "heif"
}

// MapExtToFormat returns IMAGE for allowed image extensions, TEXT for .txt and "" otherwise.
func MapExtToFormat(ext string) string {
	ext = NormalizeExt(ext)
	if ext == "txt" {
		return TEXT
	}
	if _, ok := AllowedExtensions[ext]; ok {
		return IMAGE
	}
	return ""
}
