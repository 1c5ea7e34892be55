package casjobs

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// DataType identifies the scalar type of a table column.
type DataType int

// Column types, in the order the service's datatype tokens map to them.
const (
	TypeText DataType = iota
	TypeInt32
	TypeInt16
	TypeUint8
	TypeInt64
	TypeFloat64
	TypeFloat32
	TypeDateTime
)

func (dt DataType) String() string {
	switch dt {
	case TypeText:
		return "text"
	case TypeInt32:
		return "int32"
	case TypeInt16:
		return "int16"
	case TypeUint8:
		return "uint8"
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeFloat32:
		return "float32"
	case TypeDateTime:
		return "datetime"
	}
	return fmt.Sprintf("datatype(%d)", int(dt))
}

// dateTimeLayout is the format the service uses for datetime values in
// delimited output.
const dateTimeLayout = "2006-01-02 15:04:05"

// Column is a named column of uniform scalar type. A nil cell value
// represents NULL.
type Column struct {
	Name   string
	Type   DataType
	Values []interface{}
}

// Table is an ordered collection of equal-length columns. Column order
// is insertion order from the source response and names are unique.
type Table struct {
	cols    []*Column
	byName  map[string]int
	numRows int
}

// NewTable returns an empty table with no columns.
func NewTable() *Table {
	return &Table{byName: make(map[string]int)}
}

// AddColumn appends a column of the given type. Adding a column to a
// table that already has rows, or reusing a name, is an error.
func (t *Table) AddColumn(name string, dt DataType) error {
	if t.numRows > 0 {
		return fmt.Errorf("cannot add column %q to a table with %d rows", name, t.numRows)
	}
	if _, ok := t.byName[name]; ok {
		return fmt.Errorf("duplicate column name %q", name)
	}
	t.byName[name] = len(t.cols)
	t.cols = append(t.cols, &Column{Name: name, Type: dt})
	return nil
}

// NumRows returns the row count shared by all columns.
func (t *Table) NumRows() int { return t.numRows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the columns in order.
func (t *Table) Columns() []*Column { return t.cols }

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// AppendRow appends one value per column, in column order. A nil value
// is NULL.
func (t *Table) AppendRow(values ...interface{}) error {
	if len(values) != len(t.cols) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.cols))
	}
	for i, c := range t.cols {
		c.Values = append(c.Values, values[i])
	}
	t.numRows++
	return nil
}

// Slice returns a view of rows [lo, hi). The returned table shares cell
// storage with the original.
func (t *Table) Slice(lo, hi int) *Table {
	if lo < 0 {
		lo = 0
	}
	if hi > t.numRows {
		hi = t.numRows
	}
	if hi < lo {
		hi = lo
	}
	out := NewTable()
	for _, c := range t.cols {
		out.byName[c.Name] = len(out.cols)
		out.cols = append(out.cols, &Column{Name: c.Name, Type: c.Type, Values: c.Values[lo:hi]})
	}
	out.numRows = hi - lo
	return out
}

// StringColumn returns the named column's values as strings, skipping
// NULL cells. Only valid for text columns.
func (t *Table) StringColumn(name string) ([]string, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("no column %q", name)
	}
	if c.Type != TypeText {
		return nil, fmt.Errorf("column %q is %v, not text", name, c.Type)
	}
	out := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		if v == nil {
			continue
		}
		out = append(out, v.(string))
	}
	return out, nil
}

// datatype tokens emitted for each column type when writing an
// annotated header. The reverse of the inference map; text columns are
// labeled varchar, which inference maps back to text.
var typeToken = map[DataType]string{
	TypeText:     "varchar",
	TypeInt32:    "int",
	TypeInt16:    "smallint",
	TypeUint8:    "tinyint",
	TypeInt64:    "bigint",
	TypeFloat64:  "float",
	TypeFloat32:  "real",
	TypeDateTime: "datetime",
}

// WriteCSV writes the table as comma-delimited text. With annotated set,
// the header tokens carry the service's [name]:datatype shape, so the
// output decodes back through the inline-quick policy; otherwise the
// header is plain column names, the form the upload endpoint expects.
// A NULL cell is written as an empty field.
func (t *Table) WriteCSV(w io.Writer, annotated bool) error {
	header := make([]string, len(t.cols))
	for i, c := range t.cols {
		if annotated {
			header[i] = fmt.Sprintf("[%s]:%s", c.Name, typeToken[c.Type])
		} else {
			header[i] = c.Name
		}
	}
	if _, err := io.WriteString(w, strings.Join(header, ",")+"\n"); err != nil {
		return err
	}
	fields := make([]string, len(t.cols))
	for row := 0; row < t.numRows; row++ {
		for i, c := range t.cols {
			fields[i] = formatCell(c.Values[row], c.Type)
		}
		if _, err := io.WriteString(w, strings.Join(fields, ",")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func formatCell(v interface{}, dt DataType) string {
	if v == nil {
		return ""
	}
	switch dt {
	case TypeInt32:
		return strconv.FormatInt(int64(v.(int32)), 10)
	case TypeInt16:
		return strconv.FormatInt(int64(v.(int16)), 10)
	case TypeUint8:
		return strconv.FormatUint(uint64(v.(uint8)), 10)
	case TypeInt64:
		return strconv.FormatInt(v.(int64), 10)
	case TypeFloat64:
		return strconv.FormatFloat(v.(float64), 'g', -1, 64)
	case TypeFloat32:
		return strconv.FormatFloat(float64(v.(float32)), 'g', -1, 32)
	case TypeDateTime:
		return v.(time.Time).Format(dateTimeLayout)
	default:
		s := v.(string)
		if strings.ContainsAny(s, ",\"\n") {
			return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
		}
		return s
	}
}

func (t *Table) encodeCSV(annotated bool) string {
	var sb strings.Builder
	_ = t.WriteCSV(&sb, annotated)
	return sb.String()
}
