package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"agrodesk/internal/statistics"
)

// Row is one data row keyed by header
type Row map[string]string

// Table is a sheet read as a header row plus data rows
type Table struct {
	Headers []string
	Rows    []Row
}

// DataReader reads the first sheet of an .xlsx workbook, or a .csv file
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader picks the format from the file extension
func NewDataReader(filePath string) *DataReader {
	fileType := "xlsx"
	if strings.EqualFold(filepath.Ext(filePath), ".csv") {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData reads the file into a Table
func (r *DataReader) ReadData() (*Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", r.fileType, err)
	}
	defer f.Close()

	if r.fileType == "csv" {
		return ReadCSV(f)
	}
	return ReadWorkbook(f)
}

// ReadWorkbook reads the first sheet of an .xlsx stream
func ReadWorkbook(rd io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	return processRows(rows)
}

// ReadCSV reads a CSV stream with a header row
func ReadCSV(rd io.Reader) (*Table, error) {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return processRows(rows)
}

// processRows converts raw string rows into a Table. Trailing empty rows
// produced by spreadsheet editors are dropped.
func processRows(rows [][]string) (*Table, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must have at least a header row and one data row")
	}
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	table := &Table{Headers: headers}
	for _, row := range rows[1:] {
		data := make(Row, len(headers))
		empty := true
		for j, cell := range row {
			if j < len(headers) && headers[j] != "" {
				data[headers[j]] = strings.TrimSpace(cell)
				if data[headers[j]] != "" {
					empty = false
				}
			}
		}
		if !empty {
			table.Rows = append(table.Rows, data)
		}
	}
	return table, nil
}

// Groups treats every column as a group of observations, in header order.
// Blank and non-numeric cells are skipped and counted.
func (t *Table) Groups() (statistics.Groups, int) {
	groups := make(statistics.Groups, 0, len(t.Headers))
	skipped := 0
	for _, h := range t.Headers {
		if h == "" {
			continue
		}
		g := statistics.Group{Label: h}
		for _, row := range t.Rows {
			cell := row[h]
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				skipped++
				continue
			}
			g.Values = append(g.Values, v)
		}
		groups = append(groups, g)
	}
	return groups, skipped
}
