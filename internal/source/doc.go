// Package source reads the flat-file inputs of a run into loadflow.Table
// values. CSV files go through encoding/csv with a configurable delimiter.
// XLSX workbooks are read from their first sheet with excelize.
//
// Every failure wraps loadflow.ErrSourceRead. Header cells are trimmed and a
// leading UTF-8 byte order mark is dropped, so exports from spreadsheet tools
// load without preprocessing.
package source
