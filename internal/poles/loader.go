package poles

// loader.go turns an uploaded file into a PoleTable.
//
// Workbooks are read with excelize from the first sheet, the same sheet a
// spreadsheet application opens by default, using raw cell values. CSV files go through the
// streaming sanitizers in streaming.go before encoding/csv sees them.
// The first non-blank row is the header; every following row becomes a
// record, including rows with missing values.

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Load reads a spreadsheet resource and returns its pole table.
//
// A resource that cannot be parsed, or whose header lacks a required column,
// yields *LoadError and no table. A file with a valid header but no data rows
// yields an empty table and a nil error; callers check table.Empty().
func Load(name string, r io.Reader) (*PoleTable, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(zipMagic))

	var (
		rows [][]string
		err  error
	)
	switch DetectFormat(name, head) {
	case FormatXLSX:
		rows, err = readWorkbook(br)
	case FormatCSV:
		rows, err = readCSV(br)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return nil, &LoadError{Source: name, Err: err}
	}

	table, err := buildTable(name, rows)
	if err != nil {
		return nil, &LoadError{Source: name, Err: err}
	}
	return table, nil
}

// readWorkbook returns the rows of the first sheet as stored values. Number
// formats are not applied, so a coordinate styled "0.00" keeps every digit.
func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets", ErrInvalidWorkbook)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrInvalidWorkbook, sheets[0], err)
	}
	return rows, nil
}

// readCSV returns all records of a csv file.
func readCSV(r io.Reader) ([][]string, error) {
	br := skipBOM(newUTF8Sanitizer(r))

	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		rows = append(rows, rec)
	}
}

// buildTable maps raw rows onto records. Leading and trailing blank rows are
// dropped; blank rows between data rows are kept as invalid records so row
// positions match the file.
func buildTable(name string, rows [][]string) (*PoleTable, error) {
	start := 0
	for start < len(rows) && blankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, missingColumnsError(RequiredColumns)
	}

	idx, err := ValidateHeaders(rows[start])
	if err != nil {
		return nil, err
	}
	latPos, _ := idx.Lookup(ColumnLatitude)
	lonPos, _ := idx.Lookup(ColumnLongitude)
	numPos, _ := idx.Lookup(ColumnNumber)

	data := rows[start+1:]
	end := len(data)
	for end > 0 && blankRow(data[end-1]) {
		end--
	}
	data = data[:end]

	records := make([]PoleRecord, len(data))
	unparsable := 0
	for i, row := range data {
		lat, ok := ToFloat8(cellAt(row, latPos))
		if !ok {
			unparsable++
		}
		lon, ok := ToFloat8(cellAt(row, lonPos))
		if !ok {
			unparsable++
		}
		records[i] = PoleRecord{
			Number:    ToText(cellAt(row, numPos)),
			Latitude:  lat,
			Longitude: lon,
		}
	}

	table := &PoleTable{Source: name, Records: records}
	table.Stats = table.countStats(unparsable)
	return table, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if CleanCell(c) != "" {
			return false
		}
	}
	return true
}
