package casjobs

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// headerTokenRegexp matches the service's annotated header tokens of
// shape [name]:datatype.
var headerTokenRegexp = regexp.MustCompile(`^\[([^\[\]]+)\]:(.+)$`)

// datatypeMap translates the service's datatype tokens to column types.
// Tokens not in the map default to text; that is policy, not an error.
var datatypeMap = map[string]DataType{
	"int":      TypeInt32,
	"smallint": TypeInt16,
	"tinyint":  TypeUint8,
	"bigint":   TypeInt64,
	"integer":  TypeInt64,
	"bit":      TypeUint8,
	"float":    TypeFloat64,
	"decimal":  TypeFloat64,
	"real":     TypeFloat32,
	"datetime": TypeDateTime,
}

// headerColumn is one parsed header token. pos is the field position in
// the data rows, which still carry fields for any dropped tokens.
type headerColumn struct {
	pos  int
	name string
	typ  DataType
}

// parseHeaderLine parses a delimited header line of [name]:datatype
// tokens. Tokens that do not match the pattern are dropped from the
// schema with a diagnostic; callers must tolerate the narrower result.
func parseHeaderLine(headline, delimiter string) []headerColumn {
	tokens := strings.Split(headline, delimiter)
	cols := make([]headerColumn, 0, len(tokens))
	for i, tok := range tokens {
		m := headerTokenRegexp.FindStringSubmatch(tok)
		if m == nil {
			logger.Warnf("unable to parse column name %q", tok)
			continue
		}
		dt, ok := datatypeMap[strings.ToLower(m[2])]
		if !ok {
			dt = TypeText
		}
		cols = append(cols, headerColumn{pos: i, name: m[1], typ: dt})
	}
	return cols
}

// converterFunc converts one delimited text field into a typed cell
// value. An empty field converts to nil (NULL).
type converterFunc func(field string) (interface{}, error)

// datetime values show up in a few shapes depending on the path that
// produced them.
var dateTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
	"Jan 2 2006 3:04PM",
}

func converterFor(dt DataType) converterFunc {
	switch dt {
	case TypeInt32:
		return func(field string) (interface{}, error) {
			if field == "" {
				return nil, nil
			}
			v, err := strconv.ParseInt(field, 10, 32)
			return int32(v), err
		}
	case TypeInt16:
		return func(field string) (interface{}, error) {
			if field == "" {
				return nil, nil
			}
			v, err := strconv.ParseInt(field, 10, 16)
			return int16(v), err
		}
	case TypeUint8:
		return func(field string) (interface{}, error) {
			if field == "" {
				return nil, nil
			}
			v, err := strconv.ParseUint(field, 10, 8)
			return uint8(v), err
		}
	case TypeInt64:
		return func(field string) (interface{}, error) {
			if field == "" {
				return nil, nil
			}
			return strconv.ParseInt(field, 10, 64)
		}
	case TypeFloat64:
		return func(field string) (interface{}, error) {
			if field == "" {
				return nil, nil
			}
			return strconv.ParseFloat(field, 64)
		}
	case TypeFloat32:
		return func(field string) (interface{}, error) {
			if field == "" {
				return nil, nil
			}
			v, err := strconv.ParseFloat(field, 32)
			return float32(v), err
		}
	case TypeDateTime:
		return func(field string) (interface{}, error) {
			if field == "" {
				return nil, nil
			}
			return parseDateTime(field)
		}
	default:
		return func(field string) (interface{}, error) {
			return field, nil
		}
	}
}

func parseDateTime(field string) (time.Time, error) {
	var err error
	for _, layout := range dateTimeLayouts {
		var tm time.Time
		if tm, err = time.Parse(layout, field); err == nil {
			return tm, nil
		}
	}
	return time.Time{}, err
}

// replaceNulls rewrites every delimited field whose content is exactly
// the case-insensitive literal "null" into an empty field. Field
// boundaries and all other content are preserved, so tokens like
// NULLABLE or names containing "null" pass through untouched. The
// leading field of the payload is handled like any other.
func replaceNulls(text, delimiter string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), "null") {
			continue
		}
		fields := strings.Split(line, delimiter)
		changed := false
		for j, f := range fields {
			if strings.EqualFold(f, "null") {
				fields[j] = ""
				changed = true
			}
		}
		if changed {
			lines[i] = strings.Join(fields, delimiter)
		}
	}
	return strings.Join(lines, "\n")
}
