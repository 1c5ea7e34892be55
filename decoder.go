package casjobs

import (
	"encoding/csv"
	"strings"
)

// decodeQuickResult converts the inline CSV of a quick job into a table.
// The first line carries [name]:datatype tokens and the payload ends
// with a trailing blank line. An empty response decodes to a zero-row
// table with no columns.
func decodeQuickResult(result string) (*Table, error) {
	if strings.TrimSpace(result) == "" {
		return NewTable(), nil
	}
	headline, _, _ := strings.Cut(result, "\n")
	cols := parseHeaderLine(headline, ",")
	normalized := replaceNulls(result, ",")
	records, err := readCSV(normalized)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		records = records[1:] // header
	}
	return buildTable(cols, records)
}

// decodeTabResult converts the tab-delimited text of the accelerated
// bulk endpoint. The service strips NULL markers itself, but the
// normalizer is idempotent so it runs anyway.
func decodeTabResult(result string) (*Table, error) {
	if strings.TrimSpace(result) == "" {
		return NewTable(), nil
	}
	normalized := replaceNulls(result, "\t")
	lines := strings.Split(normalized, "\n")
	cols := parseHeaderLine(lines[0], "\t")
	var records [][]string
	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		records = append(records, strings.Split(line, "\t"))
	}
	return buildTable(cols, records)
}

// decodeCSVDownload converts plain CSV retrieved from an output job URL.
// There are no bracketed type hints, so column types are inferred from
// the data: all-integer columns become int64, all-numeric become
// float64, anything else text.
func decodeCSVDownload(text string) (*Table, error) {
	if strings.TrimSpace(text) == "" {
		return NewTable(), nil
	}
	records, err := readCSV(replaceNulls(text, ","))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return NewTable(), nil
	}
	names := records[0]
	records = records[1:]
	cols := make([]headerColumn, len(names))
	for i, name := range names {
		cols[i] = headerColumn{pos: i, name: name, typ: inferColumnType(records, i)}
	}
	return buildTable(cols, records)
}

func readCSV(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, &CasJobsError{
			Number:      ErrCodeBadResponse,
			Message:     "malformed CSV response: %v",
			MessageArgs: []interface{}{err},
		}
	}
	return records, nil
}

func buildTable(cols []headerColumn, records [][]string) (*Table, error) {
	t := NewTable()
	converters := make([]converterFunc, len(cols))
	for i, hc := range cols {
		if err := t.AddColumn(hc.name, hc.typ); err != nil {
			return nil, &CasJobsError{
				Number:      ErrCodeBadResponse,
				Message:     "bad response schema: %v",
				MessageArgs: []interface{}{err},
			}
		}
		converters[i] = converterFor(hc.typ)
	}
	row := make([]interface{}, len(cols))
	for _, record := range records {
		for i, hc := range cols {
			field := ""
			if hc.pos < len(record) {
				field = record[hc.pos]
			}
			v, err := converters[i](field)
			if err != nil {
				return nil, &CasJobsError{
					Number:      ErrCodeBadResponse,
					Message:     "cannot convert %q in column %v: %v",
					MessageArgs: []interface{}{field, hc.name, err},
				}
			}
			row[i] = v
		}
		if err := t.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// inferColumnType scans a column's non-empty fields and picks the
// narrowest of int64, float64, text that fits them all.
func inferColumnType(records [][]string, pos int) DataType {
	intConv := converterFor(TypeInt64)
	floatConv := converterFor(TypeFloat64)
	typ := TypeInt64
	seen := false
	for _, record := range records {
		if pos >= len(record) || record[pos] == "" {
			continue
		}
		seen = true
		if typ == TypeInt64 {
			if _, err := intConv(record[pos]); err == nil {
				continue
			}
			typ = TypeFloat64
		}
		if typ == TypeFloat64 {
			if _, err := floatConv(record[pos]); err == nil {
				continue
			}
			return TypeText
		}
	}
	if !seen {
		return TypeText
	}
	return typ
}
