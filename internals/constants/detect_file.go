package constants

import (
	"path/filepath"
	"strings"
)

const (
	FileKindUnknown = iota
	FileKindImage
	FileKindPDF
	FileKindSpreadsheet
)

func DetectFileKindFromExt(filename string) int {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".webp":
		return FileKindImage
	case ".pdf":
		return FileKindPDF
	case ".xlsx", ".xlsm":
		return FileKindSpreadsheet
	default:
		return FileKindUnknown
	}
}

// IsUploadImageExt reports the extensions accepted for child and ID images.
func IsUploadImageExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}
