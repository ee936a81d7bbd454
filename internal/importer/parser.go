// Package importer turns a bank's spreadsheet export into transactions.
// The export has a fixed layout: two header rows, then one row per
// operation with date, category text, card label, description, signed
// amount and currency. Trailing columns are ignored.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	headerRows = 2
	dateLayout = "02.01.2006 15:04:05"
)

const (
	colDate = iota
	colCategory
	colCard
	colDescription
	colAmount
	colCurrency
	minColumns
)

// ParsedRow is one spreadsheet row after position-to-field mapping.
type ParsedRow struct {
	Date        time.Time
	Category    string
	Card        string
	Description string
	Amount      float64 // signed, negative = outflow
	Currency    string
}

// Parse reads the first sheet of an export file. Rows with a missing or
// malformed date, or a zero amount, are dropped silently; the bank pads
// its exports with summary lines that match neither.
func Parse(r io.Reader) ([]ParsedRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("Parse: opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Parse: workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("Parse: reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) <= headerRows {
		return nil, nil
	}

	var parsed []ParsedRow
	for _, cells := range rows[headerRows:] {
		row, ok := parseRow(cells)
		if !ok {
			continue
		}
		parsed = append(parsed, row)
	}
	return parsed, nil
}

func parseRow(cells []string) (ParsedRow, bool) {
	if len(cells) < minColumns {
		return ParsedRow{}, false
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(cells[colDate]))
	if err != nil {
		return ParsedRow{}, false
	}

	amount, err := parseAmount(cells[colAmount])
	if err != nil || amount == 0 {
		return ParsedRow{}, false
	}

	return ParsedRow{
		Date:        date,
		Category:    strings.TrimSpace(cells[colCategory]),
		Card:        strings.TrimSpace(cells[colCard]),
		Description: strings.TrimSpace(cells[colDescription]),
		Amount:      amount,
		Currency:    strings.TrimSpace(cells[colCurrency]),
	}, true
}

// parseAmount accepts both dot and comma decimal separators and strips
// thousands spaces, e.g. "-1 250,50".
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}
