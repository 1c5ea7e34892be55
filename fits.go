package casjobs

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Minimal reader for the FITS binary-table attachments produced by
// CasJobs output jobs: the first BINTABLE extension, scalar columns
// only, which is all the service emits for a SQL table.

const (
	fitsBlockSize = 2880
	fitsCardSize  = 80
)

func badFITS(format string, args ...interface{}) *CasJobsError {
	return &CasJobsError{
		Number:      ErrCodeBadFITS,
		Message:     format,
		MessageArgs: args,
	}
}

type fitsHeader struct {
	cards map[string]string
}

// readFITSHeader parses header blocks starting at offset and returns the
// header and the offset of the data that follows it.
func readFITSHeader(data []byte, offset int) (*fitsHeader, int, error) {
	h := &fitsHeader{cards: make(map[string]string)}
	for {
		if offset+fitsBlockSize > len(data) {
			return nil, 0, badFITS("truncated FITS header at byte %v", offset)
		}
		block := data[offset : offset+fitsBlockSize]
		offset += fitsBlockSize
		for i := 0; i < fitsBlockSize; i += fitsCardSize {
			card := string(block[i : i+fitsCardSize])
			keyword := strings.TrimRight(card[:8], " ")
			if keyword == "END" {
				return h, offset, nil
			}
			if keyword == "" || keyword == "COMMENT" || keyword == "HISTORY" {
				continue
			}
			if card[8:10] != "= " {
				continue
			}
			h.cards[keyword] = strings.TrimSpace(card[10:])
		}
	}
}

func (h *fitsHeader) str(keyword string) (string, bool) {
	raw, ok := h.cards[keyword]
	if !ok {
		return "", false
	}
	if i := commentStart(raw); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}
	if strings.HasPrefix(raw, "'") {
		raw = strings.TrimPrefix(raw, "'")
		if i := strings.Index(raw, "'"); i >= 0 {
			raw = raw[:i]
		}
		return strings.TrimRight(raw, " "), true
	}
	return raw, true
}

func (h *fitsHeader) intVal(keyword string) (int, bool) {
	s, ok := h.str(keyword)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// commentStart finds the / starting an inline comment, ignoring any /
// inside a quoted value.
func commentStart(raw string) int {
	inQuote := false
	for i, r := range raw {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case r == '/' && !inQuote:
			return i
		}
	}
	return -1
}

// dataSize returns the byte length of the HDU data that follows a
// header, rounded up to a full block.
func (h *fitsHeader) dataSize() int {
	bitpix, _ := h.intVal("BITPIX")
	naxis, _ := h.intVal("NAXIS")
	if naxis == 0 {
		return 0
	}
	size := abs(bitpix) / 8
	for i := 1; i <= naxis; i++ {
		n, ok := h.intVal(fmt.Sprintf("NAXIS%d", i))
		if !ok {
			return 0
		}
		size *= n
	}
	pcount, _ := h.intVal("PCOUNT")
	size += pcount
	return (size + fitsBlockSize - 1) / fitsBlockSize * fitsBlockSize
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type fitsColumn struct {
	name   string
	typ    DataType
	code   byte
	offset int // byte offset within a row
	width  int
	null   int64 // TNULL sentinel for integer columns
	hasNul bool
}

// readFITSTable materializes the first binary-table extension as a
// Table. The TDIM keywords CasJobs writes are structurally invalid and
// are stripped before the column layout is computed.
func readFITSTable(data []byte) (*Table, error) {
	header, offset, err := readFITSHeader(data, 0)
	if err != nil {
		return nil, err
	}
	if _, ok := header.cards["SIMPLE"]; !ok {
		return nil, badFITS("missing SIMPLE keyword, not a FITS file")
	}
	offset += header.dataSize()
	for {
		if offset >= len(data) {
			return nil, badFITS("no binary table extension found")
		}
		header, offset, err = readFITSHeader(data, offset)
		if err != nil {
			return nil, err
		}
		xtension, _ := header.str("XTENSION")
		if xtension == "BINTABLE" {
			break
		}
		offset += header.dataSize()
	}
	for keyword := range header.cards {
		if strings.HasPrefix(keyword, "TDIM") {
			delete(header.cards, keyword)
			logger.Debugf("stripped invalid %v keyword from binary table header", keyword)
		}
	}

	rowBytes, ok := header.intVal("NAXIS1")
	if !ok {
		return nil, badFITS("binary table header missing NAXIS1")
	}
	numRows, ok := header.intVal("NAXIS2")
	if !ok {
		return nil, badFITS("binary table header missing NAXIS2")
	}
	tfields, ok := header.intVal("TFIELDS")
	if !ok {
		return nil, badFITS("binary table header missing TFIELDS")
	}

	cols := make([]fitsColumn, 0, tfields)
	rowOffset := 0
	for i := 1; i <= tfields; i++ {
		name, ok := header.str(fmt.Sprintf("TTYPE%d", i))
		if !ok {
			name = fmt.Sprintf("col%d", i)
		}
		form, ok := header.str(fmt.Sprintf("TFORM%d", i))
		if !ok {
			return nil, badFITS("binary table header missing TFORM%d", i)
		}
		col, err := parseTForm(name, form)
		if err != nil {
			return nil, err
		}
		col.offset = rowOffset
		if null, ok := header.intVal(fmt.Sprintf("TNULL%d", i)); ok {
			col.null = int64(null)
			col.hasNul = true
		}
		rowOffset += col.width
		cols = append(cols, *col)
	}
	if rowOffset != rowBytes {
		return nil, badFITS("row layout is %v bytes but NAXIS1 is %v", rowOffset, rowBytes)
	}
	if offset+numRows*rowBytes > len(data) {
		return nil, badFITS("truncated binary table data")
	}

	t := NewTable()
	for _, col := range cols {
		if err := t.AddColumn(col.name, col.typ); err != nil {
			return nil, badFITS("bad binary table schema: %v", err)
		}
	}
	rowValues := make([]interface{}, len(cols))
	for row := 0; row < numRows; row++ {
		base := offset + row*rowBytes
		for i, col := range cols {
			rowValues[i] = col.cell(data[base+col.offset : base+col.offset+col.width])
		}
		if err := t.AppendRow(rowValues...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// parseTForm interprets a binary-table format code (rT, repeat count
// then type letter). Only scalar numeric fields and character arrays
// appear in CasJobs output.
func parseTForm(name, form string) (*fitsColumn, error) {
	form = strings.TrimSpace(form)
	repeat := 1
	i := 0
	for i < len(form) && form[i] >= '0' && form[i] <= '9' {
		i++
	}
	if i > 0 {
		repeat, _ = strconv.Atoi(form[:i])
	}
	if i >= len(form) {
		return nil, badFITS("empty TFORM for column %v", name)
	}
	code := form[i]
	col := &fitsColumn{name: name, code: code}
	switch code {
	case 'A':
		col.typ = TypeText
		col.width = repeat
		return col, nil
	case 'L', 'B':
		col.typ = TypeUint8
		col.width = 1
	case 'I':
		col.typ = TypeInt16
		col.width = 2
	case 'J':
		col.typ = TypeInt32
		col.width = 4
	case 'K':
		col.typ = TypeInt64
		col.width = 8
	case 'E':
		col.typ = TypeFloat32
		col.width = 4
	case 'D':
		col.typ = TypeFloat64
		col.width = 8
	default:
		return nil, badFITS("unsupported TFORM code %q for column %v", string(code), name)
	}
	if repeat != 1 {
		return nil, badFITS("array column %v (TFORM %v) is not supported", name, form)
	}
	return col, nil
}

// cell decodes one big-endian field. Integer TNULL sentinels and float
// NaNs become nil.
func (c *fitsColumn) cell(raw []byte) interface{} {
	switch c.code {
	case 'A':
		return strings.TrimRight(strings.TrimRight(string(raw), "\x00"), " ")
	case 'L':
		if raw[0] == 'T' {
			return uint8(1)
		}
		return uint8(0)
	case 'B':
		v := raw[0]
		if c.hasNul && int64(v) == c.null {
			return nil
		}
		return v
	case 'I':
		v := int16(binary.BigEndian.Uint16(raw))
		if c.hasNul && int64(v) == c.null {
			return nil
		}
		return v
	case 'J':
		v := int32(binary.BigEndian.Uint32(raw))
		if c.hasNul && int64(v) == c.null {
			return nil
		}
		return v
	case 'K':
		v := int64(binary.BigEndian.Uint64(raw))
		if c.hasNul && v == c.null {
			return nil
		}
		return v
	case 'E':
		v := math.Float32frombits(binary.BigEndian.Uint32(raw))
		if math.IsNaN(float64(v)) {
			return nil
		}
		return v
	default: // 'D'
		v := math.Float64frombits(binary.BigEndian.Uint64(raw))
		if math.IsNaN(v) {
			return nil
		}
		return v
	}
}
