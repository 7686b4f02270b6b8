package poles

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format identifies how an uploaded file is parsed.
type Format int

const (
	FormatUnknown Format = iota
	FormatXLSX
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatXLSX:
		return "xlsx"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// legacy .xls files are OLE2 compound documents; excelize cannot read them.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}

// DetectFormat picks a parser from the file's leading bytes, falling back to
// its extension. Magic bytes win so a renamed workbook still loads.
func DetectFormat(name string, head []byte) Format {
	if bytes.HasPrefix(head, zipMagic) {
		return FormatXLSX
	}
	if bytes.HasPrefix(head, oleMagic) {
		return FormatUnknown
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		// Extension says workbook but the bytes disagree.
		return FormatUnknown
	case ".csv", ".txt":
		return FormatCSV
	default:
		return FormatUnknown
	}
}
