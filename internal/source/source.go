package source

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/artugro/load-flow/pkg/loadflow"
)

var errMissingHeader = errors.New("missing header row")

// ReadTable reads path into a Table, choosing the reader by extension.
// ".xlsx" and ".xlsm" are read as workbooks; anything else as delimited text.
func ReadTable(path string, delimiter rune) (*loadflow.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", loadflow.ErrSourceRead, err)
	}
	defer f.Close()

	t, err := ReadCSV(f, delimiter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadCSV reads delimited text with a header row. Rows may have fewer or
// more fields than the header.
func ReadCSV(r io.Reader, delimiter rune) (*loadflow.Table, error) {
	if !validDelimiter(delimiter) {
		return nil, fmt.Errorf("%w: invalid delimiter %q", loadflow.ErrSourceRead, delimiter)
	}

	cr := csv.NewReader(stripUTF8BOM(bufio.NewReader(r)))
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", loadflow.ErrSourceRead, errMissingHeader)
		}
		return nil, fmt.Errorf("%w: %w", loadflow.ErrSourceRead, err)
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", loadflow.ErrSourceRead, err)
	}
	return loadflow.NewTable(normalizeHeader(header), records), nil
}

// ReadXLSX reads the first sheet of a workbook. The first row is the header.
// Cells are read unformatted.
func ReadXLSX(path string) (*loadflow.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", loadflow.ErrSourceRead, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", loadflow.ErrSourceRead, path)
	}

	// Raw values keep number formats like "#,##0.00" out of salary cells.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", loadflow.ErrSourceRead, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: %w", loadflow.ErrSourceRead, path, errMissingHeader)
	}
	return loadflow.NewTable(normalizeHeader(rows[0]), rows[1:]), nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	}
	return out
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

func validDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}
