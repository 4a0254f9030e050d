// Package tabular reads uploaded dataset files into raw records. It handles
// the three shapes the predictors receive: comma-delimited CSV, whitespace-
// delimited sensor logs, and Excel workbooks.
package tabular

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/core"
	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/inference"
	"github.com/robertofernandezmartinez/ai-corporate-suite/ports"
)

// Reader parses CSV, whitespace-delimited text and xlsx uploads.
type Reader struct {
	maxRecords int
}

// NewReader creates a dataset reader. maxRecords bounds runaway files;
// zero means no bound.
func NewReader(maxRecords int) *Reader {
	return &Reader{maxRecords: maxRecords}
}

var _ ports.DatasetReader = (*Reader)(nil)

// Read parses one uploaded file into raw records. Format is chosen by
// extension first, then by sniffing the first line for a delimiter.
func (r *Reader) Read(ctx context.Context, src io.Reader, filename string) (*inference.TabularDataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	log.Printf("[TabularReader] Reading %s (ext %q)", filename, ext)

	var (
		records [][]string
		err     error
	)
	switch ext {
	case ".xlsx", ".xls":
		records, err = r.readExcel(src)
	default:
		records, err = r.readText(src)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnreadableUpload, err)
	}
	if len(records) == 0 {
		return nil, core.ErrEmptyDataset
	}
	if r.maxRecords > 0 && len(records) > r.maxRecords {
		return nil, fmt.Errorf("%w: %d records exceeds limit %d", core.ErrUnreadableUpload, len(records), r.maxRecords)
	}

	log.Printf("[TabularReader] Parsed %d records from %s", len(records), filename)
	return &inference.TabularDataset{Filename: filename, Records: records}, nil
}

// readText handles delimited text. The first non-empty line decides the
// dialect: commas mean CSV, anything else is split on whitespace runs
// (the turbofan sensor-log format).
func (r *Reader) readText(src io.Reader) ([][]string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	firstLine := ""
	for _, line := range strings.SplitN(string(data), "\n", 10) {
		if strings.TrimSpace(line) != "" {
			firstLine = line
			break
		}
	}
	if firstLine == "" {
		return nil, fmt.Errorf("file contains no data lines")
	}

	if strings.Contains(firstLine, ",") {
		return r.readCSV(bytes.NewReader(data))
	}
	return r.readWhitespace(bytes.NewReader(data))
}

func (r *Reader) readCSV(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, normalization heals them
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv parse error: %w", err)
		}
		if isBlank(record) {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *Reader) readWhitespace(src io.Reader) ([][]string, error) {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var records [][]string
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		records = append(records, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan error: %w", err)
	}
	return records, nil
}

// readExcel reads the first sheet of a workbook.
func (r *Reader) readExcel(src io.Reader) ([][]string, error) {
	workbook, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		records = append(records, row)
	}
	return records, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
