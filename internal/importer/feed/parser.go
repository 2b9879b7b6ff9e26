package feed

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	enc "github.com/mkrogh/ledger/internal/encoding"
	"github.com/mkrogh/ledger/internal/transaction"
)

// Parser reads bank feed CSV exports and produces import rows. The column
// layout is auto-detected by matching headers against known profiles, and
// the delimiter is sniffed because banks disagree on that too.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts import rows from a feed export. fallbackAccount is used
// for formats that carry no account column.
func (p *Parser) Parse(r io.Reader, fallbackAccount string) ([]transaction.ImportRow, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	for _, comma := range []rune{';', ','} {
		rows, err := readAll(data, comma)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1, fallbackAccount)
	}

	return nil, fmt.Errorf("no matching feed format found")
}

func readAll(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a known profile.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts import rows using the matched profile. headerRowNum
// is the 0-based index of the header in the original file, kept for error
// messages.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int, fallbackAccount string) ([]transaction.ImportRow, error) {
	dateIdx := cols[p.DateCol]
	sourceIdx := cols[p.SourceCol]

	accountIdx := -1
	if p.AccountCol != "" {
		if i, ok := cols[p.AccountCol]; ok {
			accountIdx = i
		}
	}

	var out []transaction.ImportRow

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based, past the header

		date, ok := parseDate(row, dateIdx)
		if !ok {
			// Footer and summary rows have no parseable date.
			continue
		}

		source := cellValue(row, sourceIdx)
		if source == "" {
			return nil, fmt.Errorf("row %d: missing source text", rowNum)
		}

		amount, ok := parseAmount(p, cols, row)
		if !ok {
			continue
		}

		account := fallbackAccount
		if accountIdx >= 0 {
			if a := cellValue(row, accountIdx); a != "" {
				account = a
			}
		}

		out = append(out, transaction.ImportRow{
			Date:    date,
			Source:  source,
			Amount:  amount,
			Account: account,
		})
	}

	return out, nil
}

var dateLayouts = []string{
	"02-01-2006",
	"02.01.2006",
	"02/01/2006",
	"2006-01-02",
}

func parseDate(row []string, idx int) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseAmount extracts the signed amount from a row based on the profile's
// amount mode. Debit columns are negated; credit columns stay positive.
func parseAmount(p *Profile, cols colIndex, row []string) (int64, bool) {
	switch p.AmountMode {
	case amountSingle:
		s := cellValue(row, cols[p.AmountCol])
		if s == "" {
			return 0, false
		}

		cents, err := parseAmountCents(s)
		if err != nil || cents == 0 {
			return 0, false
		}

		return cents, true

	case amountSplit:
		if s := cellValue(row, cols[p.DebitCol]); s != "" {
			if cents, err := parseAmountCents(s); err == nil && cents != 0 {
				return -abs(cents), true
			}
		}

		if s := cellValue(row, cols[p.CreditCol]); s != "" {
			if cents, err := parseAmountCents(s); err == nil && cents != 0 {
				return abs(cents), true
			}
		}
	}

	return 0, false
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
