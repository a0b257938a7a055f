// Package glparser turns General Ledger detail exports (XLSX or CSV) into typed
// ledger transaction rows. It knows nothing about storage or diffing.
package glparser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/SscSPs/recon_workbench/internal/apperrors"
	"github.com/SscSPs/recon_workbench/internal/core/domain"
	"github.com/SscSPs/recon_workbench/internal/utils/accounting"
	"github.com/xuri/excelize/v2"
)

// ExpectedExportHint is appended to format errors so users know what to upload.
const ExpectedExportHint = "upload a General Ledger detail (account transactions) report exported as .xlsx or .csv with Date, Debit and Credit columns"

const defaultHeaderScanLimit = 30

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}

	codeAndName = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9.\-/]*)\s+[-–]\s+(.+)$`)
	nonAlnum    = regexp.MustCompile(`[^a-z0-9]+`)

	// Summary lines of GL reports. Only whole leading words count, so "Totalisator Fees" is an account.
	labelRow  = regexp.MustCompile(`(?i)^(grand total|total|opening balance|closing balance|net movement|balance b/f|balance c/f)(\s|:|$)`)
	bareLabel = regexp.MustCompile(`(?i)^(grand total|total|opening balance|closing balance|net movement|balance b/f|balance c/f)\s*:?$`)
)

type column int

const (
	colDate column = iota
	colDebit
	colCredit
	colAccountCode
	colAccountName
	colSource
	colDescription
	colReference
	colContact
	columnCount
)

var headerAliases = map[string]column{
	"date":               colDate,
	"transactiondate":    colDate,
	"txndate":            colDate,
	"postingdate":        colDate,
	"debit":              colDebit,
	"debits":             colDebit,
	"dr":                 colDebit,
	"debitamount":        colDebit,
	"credit":             colCredit,
	"credits":            colCredit,
	"cr":                 colCredit,
	"creditamount":       colCredit,
	"accountcode":        colAccountCode,
	"code":               colAccountCode,
	"accountnumber":      colAccountCode,
	"accountno":          colAccountCode,
	"account":            colAccountName,
	"accountname":        colAccountName,
	"accountdescription": colAccountName,
	"source":             colSource,
	"sourcetype":         colSource,
	"type":               colSource,
	"journaltype":        colSource,
	"description":        colDescription,
	"details":            colDescription,
	"memo":               colDescription,
	"narration":          colDescription,
	"particulars":        colDescription,
	"reference":          colReference,
	"ref":                colReference,
	"referenceno":        colReference,
	"contact":            colContact,
	"contactname":        colContact,
	"name":               colContact,
	"payee":              colContact,
}

// Options tunes parsing of ambiguous cells.
type Options struct {
	// DayFirst resolves numeric dates such as 03/04/2024 as 3 April.
	DayFirst bool
	// HeaderScanLimit bounds how many leading rows are searched for the header row.
	HeaderScanLimit int
}

// Parser parses GL exports. It holds no mutable state and is safe for concurrent use.
type Parser struct {
	opts Options
}

// New creates a Parser.
func New(opts Options) *Parser {
	if opts.HeaderScanLimit <= 0 {
		opts.HeaderScanLimit = defaultHeaderScanLimit
	}
	return &Parser{opts: opts}
}

// Parse reads content as an XLSX workbook or a delimited text export and maps every
// transaction line to a LedgerTransactionRow. Rows whose date or amounts cannot be read,
// or that carry no account, are skipped and reported in SkippedRows. An export with no
// recognizable header row fails with apperrors.ErrFormat. Zero data rows is not an error.
func (p *Parser) Parse(content []byte, fileName string) (*domain.ParseResult, error) {
	if len(content) == 0 {
		return nil, apperrors.NewFormatError("file is empty; " + ExpectedExportHint)
	}

	var sheets [][][]string
	switch {
	case bytes.HasPrefix(content, zipMagic):
		var err error
		sheets, err = readWorkbook(content)
		if err != nil {
			return nil, err
		}
	case bytes.HasPrefix(content, oleMagic):
		return nil, apperrors.NewFormatError("legacy .xls workbooks are not supported; " + ExpectedExportHint)
	case strings.HasSuffix(strings.ToLower(fileName), ".xlsx"):
		return nil, apperrors.NewFormatError("file is not a valid .xlsx workbook; " + ExpectedExportHint)
	default:
		rows, err := readDelimited(content)
		if err != nil {
			return nil, err
		}
		sheets = [][][]string{rows}
	}

	for _, rows := range sheets {
		headerIdx, columns, ok := p.findHeader(rows)
		if !ok {
			continue
		}
		return p.mapRows(rows, headerIdx, columns), nil
	}

	return nil, apperrors.NewFormatError("no header row with Date, Debit and Credit columns found; " + ExpectedExportHint)
}

func readWorkbook(content []byte) ([][][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, apperrors.NewFormatError(fmt.Sprintf("cannot open workbook (%v); %s", err, ExpectedExportHint))
	}
	defer f.Close()

	sheetNames := f.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, apperrors.NewFormatError("workbook has no sheets; " + ExpectedExportHint)
	}

	sheets := make([][][]string, 0, len(sheetNames))
	for _, name := range sheetNames {
		// Raw values keep dates as serial numbers instead of locale-formatted text.
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, apperrors.NewFormatError(fmt.Sprintf("cannot read sheet %q (%v); %s", name, err, ExpectedExportHint))
		}
		for _, row := range rows {
			for i, cell := range row {
				row[i] = trimFloatNoise(cell)
			}
		}
		sheets = append(sheets, rows)
	}
	return sheets, nil
}

func readDelimited(content []byte) ([][]string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = detectDelimiter(content)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewFormatError(fmt.Sprintf("cannot read delimited text (%v); %s", err, ExpectedExportHint))
		}
		// csv.Reader drops blank lines; pad so row index i stays physical line i+1.
		line, _ := reader.FieldPos(0)
		for len(rows) < line-1 {
			rows = append(rows, nil)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func detectDelimiter(content []byte) rune {
	sample := content
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	best, bestCount := ',', bytes.Count(sample, []byte{','})
	for _, candidate := range []rune{';', '\t', '|'} {
		if n := bytes.Count(sample, []byte(string(candidate))); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

func normalizeHeader(cell string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(cell)), "")
}

func (p *Parser) findHeader(rows [][]string) (int, [columnCount]int, bool) {
	limit := p.opts.HeaderScanLimit
	if limit > len(rows) {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		var columns [columnCount]int
		for c := range columns {
			columns[c] = -1
		}
		for j, cell := range rows[i] {
			col, ok := headerAliases[normalizeHeader(cell)]
			if ok && columns[col] < 0 {
				columns[col] = j
			}
		}
		if columns[colDate] >= 0 && columns[colDebit] >= 0 && columns[colCredit] >= 0 {
			return i, columns, true
		}
	}
	return 0, [columnCount]int{}, false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func firstNonEmpty(row []string) (int, string) {
	for i, cell := range row {
		if v := strings.TrimSpace(cell); v != "" {
			return i, v
		}
	}
	return -1, ""
}

func nonEmptyCount(row []string) int {
	n := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			n++
		}
	}
	return n
}

func isLabelRow(text string) bool {
	return labelRow.MatchString(text)
}

// splitAccount separates "200 - Sales" into code and name. Values without a code prefix
// are returned as the name.
func splitAccount(value string) (string, string) {
	value = strings.TrimSpace(value)
	if m := codeAndName.FindStringSubmatch(value); m != nil && strings.ContainsAny(m[1], "0123456789") {
		return m[1], strings.TrimSpace(m[2])
	}
	return "", value
}

func (p *Parser) mapRows(rows [][]string, headerIdx int, columns [columnCount]int) *domain.ParseResult {
	result := &domain.ParseResult{
		Rows:        make([]domain.LedgerTransactionRow, 0, len(rows)-headerIdx),
		Accounts:    make([]domain.LedgerAccountRef, 0),
		SkippedRows: make([]domain.SkippedRow, 0),
	}
	hasAccountColumn := columns[colAccountName] >= 0 || columns[colAccountCode] >= 0
	seenAccounts := make(map[string]struct{})

	var sectionCode, sectionName string
	var dateFrom, dateTo time.Time

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		line := i + 1

		_, lead := firstNonEmpty(row)
		if lead == "" {
			continue
		}

		dateCell := cellAt(row, columns[colDate])
		debitCell := cellAt(row, columns[colDebit])
		creditCell := cellAt(row, columns[colCredit])

		if dateCell == "" && debitCell == "" && creditCell == "" {
			// Account section headings carry a single label cell.
			if !hasAccountColumn && nonEmptyCount(row) == 1 && !bareLabel.MatchString(lead) {
				sectionCode, sectionName = splitAccount(lead)
			}
			continue
		}

		date, err := parseDate(dateCell, p.opts.DayFirst)
		if err != nil {
			// Totals and balance lines carry amounts but no transaction date.
			if isLabelRow(lead) {
				continue
			}
			result.SkippedRows = append(result.SkippedRows, domain.SkippedRow{LineNumber: line, Reason: err.Error()})
			continue
		}
		debit, err := parseAmount(debitCell)
		if err != nil {
			result.SkippedRows = append(result.SkippedRows, domain.SkippedRow{LineNumber: line, Reason: "debit: " + err.Error()})
			continue
		}
		credit, err := parseAmount(creditCell)
		if err != nil {
			result.SkippedRows = append(result.SkippedRows, domain.SkippedRow{LineNumber: line, Reason: "credit: " + err.Error()})
			continue
		}
		debit, credit = accounting.NormalizeDebitCredit(debit, credit)

		code, name := sectionCode, sectionName
		if hasAccountColumn {
			code = cellAt(row, columns[colAccountCode])
			name = cellAt(row, columns[colAccountName])
			if code == "" {
				code, name = splitAccount(name)
			}
			if name == "" {
				name = code
			}
		}
		if name == "" {
			result.SkippedRows = append(result.SkippedRows, domain.SkippedRow{LineNumber: line, Reason: "missing account"})
			continue
		}

		result.Rows = append(result.Rows, domain.LedgerTransactionRow{
			LineNumber:      line,
			AccountCode:     code,
			AccountName:     name,
			TransactionDate: date,
			Source:          cellAt(row, columns[colSource]),
			Description:     cellAt(row, columns[colDescription]),
			Reference:       cellAt(row, columns[colReference]),
			Contact:         cellAt(row, columns[colContact]),
			Debit:           debit,
			Credit:          credit,
		})

		if _, ok := seenAccounts[name]; !ok {
			seenAccounts[name] = struct{}{}
			result.Accounts = append(result.Accounts, domain.LedgerAccountRef{AccountCode: code, AccountName: name})
		}
		if dateFrom.IsZero() || date.Before(dateFrom) {
			dateFrom = date
		}
		if dateTo.IsZero() || date.After(dateTo) {
			dateTo = date
		}
	}

	result.AccountCount = len(seenAccounts)
	if len(result.Rows) > 0 {
		result.DateFrom = &dateFrom
		result.DateTo = &dateTo
	}
	return result
}
