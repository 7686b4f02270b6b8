package poles

import "testing"

func TestDetectFormat(t *testing.T) {
	zip := []byte{0x50, 0x4B, 0x03, 0x04}
	ole := []byte{0xD0, 0xCF, 0x11, 0xE0}

	tests := []struct {
		name string
		file string
		head []byte
		want Format
	}{
		{"xlsx", "postes.xlsx", zip, FormatXLSX},
		{"renamed workbook", "postes.dat", zip, FormatXLSX},
		{"uppercase csv", "POSTES.CSV", []byte("Lati"), FormatCSV},
		{"txt export", "postes.txt", []byte("Lati"), FormatCSV},
		{"legacy xls", "postes.xls", ole, FormatUnknown},
		{"legacy xls renamed csv", "postes.csv", ole, FormatUnknown},
		{"xlsx name, text bytes", "postes.xlsx", []byte("Lati"), FormatUnknown},
		{"no extension", "postes", []byte("Lati"), FormatUnknown},
		{"empty head", "postes.csv", nil, FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.file, tt.head); got != tt.want {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}
