// Package mimetype maps file extensions to MIME types.
package mimetype

import (
	"maps"
	"strings"
)

const OctetStream = "application/octet-stream"

var defaultTypes = map[string]string{
	"txt":  "text/plain",
	"html": "text/html",
	"htm":  "text/html",
	"php":  "text/plain",
	"css":  "text/css",
	"js":   "application/x-javascript",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"png":  "image/png",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"doc":  "application/msword",
	"docx": "application/msword",
	"xls":  "application/excel",
	"xlsx": "application/excel",
	"ppt":  "application/powerpoint",
	"pptx": "application/powerpoint",
	"pdf":  "application/pdf",
	"wmv":  OctetStream,
	"mpg":  "video/mpeg",
	"mov":  "video/quicktime",
	"mp4":  "video/quicktime",
	"zip":  "application/zip",
	"rar":  "application/x-rar-compressed",
	"dmg":  "application/x-apple-diskimage",
	"exe":  OctetStream,
}

// Table is an immutable extension lookup table.
type Table struct {
	types map[string]string
}

var defaultTable = &Table{types: defaultTypes}

// Default returns the built-in table.
func Default() *Table {
	return defaultTable
}

// Lookup returns the MIME type for ext, with or without its leading dot.
// Unknown and empty extensions map to application/octet-stream.
func (t *Table) Lookup(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if typ, ok := t.types[ext]; ok {
		return typ
	}
	return OctetStream
}

// With returns a copy of t with overrides applied. t is left unchanged.
func (t *Table) With(overrides map[string]string) *Table {
	types := maps.Clone(t.types)
	for ext, typ := range overrides {
		types[strings.ToLower(strings.TrimPrefix(ext, "."))] = typ
	}
	return &Table{types: types}
}

// Len returns the number of known extensions.
func (t *Table) Len() int {
	return len(t.types)
}

// Lookup resolves ext against the default table.
func Lookup(ext string) string {
	return defaultTable.Lookup(ext)
}
