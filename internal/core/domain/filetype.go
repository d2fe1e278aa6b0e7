package domain

import (
	"path/filepath"
	"strings"
)

// FileType is a group of related document formats.
// Auto-layout rules and converter selection operate on groups,
// not on individual extensions.
type FileType string

// Known file-type groups.
const (
	FileTypeUnknown FileType = ""
	FileTypePDF     FileType = "pdf"
	FileTypeWord    FileType = "word"
	FileTypeExcel   FileType = "excel"
	FileTypePPT     FileType = "ppt"
	FileTypeRTF     FileType = "rtf"
	FileTypeText    FileType = "txt"
)

// IsValid returns true if the file type is a known group.
func (t FileType) IsValid() bool {
	switch t {
	case FileTypePDF, FileTypeWord, FileTypeExcel, FileTypePPT, FileTypeRTF, FileTypeText:
		return true
	default:
		return false
	}
}

// IsOffice returns true if the group is converted through an office suite
// into PDF before rasterising.
func (t FileType) IsOffice() bool {
	return t.IsValid() && t != FileTypePDF
}

// String returns the string representation.
func (t FileType) String() string {
	return string(t)
}

// Description returns a human-readable description of the group.
func (t FileType) Description() string {
	switch t {
	case FileTypePDF:
		return "PDF"
	case FileTypeWord:
		return "Word processor documents"
	case FileTypeExcel:
		return "Spreadsheets"
	case FileTypePPT:
		return "Presentations"
	case FileTypeRTF:
		return "Rich text"
	case FileTypeText:
		return "Plain text"
	default:
		return unknownDescription
	}
}

// AllFileTypes returns every known file-type group.
func AllFileTypes() []FileType {
	return []FileType{
		FileTypePDF,
		FileTypeWord,
		FileTypeExcel,
		FileTypePPT,
		FileTypeRTF,
		FileTypeText,
	}
}

var mimeFileTypes = map[string]FileType{
	"application/pdf":    FileTypePDF,
	"application/x-pdf":  FileTypePDF,
	"application/msword": FileTypeWord,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   FileTypeWord,
	"application/vnd.oasis.opendocument.text":                                   FileTypeWord,
	"application/vnd.ms-excel":                                                  FileTypeExcel,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         FileTypeExcel,
	"application/vnd.oasis.opendocument.spreadsheet":                            FileTypeExcel,
	"application/vnd.ms-powerpoint":                                             FileTypePPT,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": FileTypePPT,
	"application/vnd.oasis.opendocument.presentation":                           FileTypePPT,
	"application/rtf": FileTypeRTF,
	"text/rtf":        FileTypeRTF,
	"text/plain":      FileTypeText,
}

var extensionFileTypes = map[string]FileType{
	".pdf":  FileTypePDF,
	".doc":  FileTypeWord,
	".docx": FileTypeWord,
	".odt":  FileTypeWord,
	".xls":  FileTypeExcel,
	".xlsx": FileTypeExcel,
	".ods":  FileTypeExcel,
	".ppt":  FileTypePPT,
	".pptx": FileTypePPT,
	".odp":  FileTypePPT,
	".rtf":  FileTypeRTF,
	".txt":  FileTypeText,
}

// DetectFileType maps a MIME type or filename to its file-type group.
// The MIME type wins when it is specific; generic types such as
// application/octet-stream fall through to the extension.
func DetectFileType(filename, mimeType string) FileType {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if t, ok := mimeFileTypes[mimeType]; ok {
		return t
	}
	if t, ok := extensionFileTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return FileTypeUnknown
}

// ParseFileTypes converts group names into file types, dropping unknown names.
func ParseFileTypes(names []string) []FileType {
	result := make([]FileType, 0, len(names))
	for _, name := range names {
		t := FileType(strings.ToLower(strings.TrimSpace(name)))
		if t.IsValid() {
			result = append(result, t)
		}
	}
	return result
}
