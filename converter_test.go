package casjobs

import (
	"testing"
	"time"
)

func TestParseHeaderLine(t *testing.T) {
	cols := parseHeaderLine("[objID]:bigint,[ra]:float,[dec]:real,[name]:varchar", ",")
	assertEqualF(t, len(cols), 4)
	assertEqualE(t, cols[0].name, "objID")
	assertEqualE(t, cols[0].typ, TypeInt64)
	assertEqualE(t, cols[1].name, "ra")
	assertEqualE(t, cols[1].typ, TypeFloat64)
	assertEqualE(t, cols[2].name, "dec")
	assertEqualE(t, cols[2].typ, TypeFloat32)
	// varchar is not in the datatype map and defaults to text
	assertEqualE(t, cols[3].name, "name")
	assertEqualE(t, cols[3].typ, TypeText)
}

func TestParseHeaderLineTypes(t *testing.T) {
	testcases := []struct {
		token string
		typ   DataType
	}{
		{"int", TypeInt32},
		{"smallint", TypeInt16},
		{"tinyint", TypeUint8},
		{"bigint", TypeInt64},
		{"integer", TypeInt64},
		{"bit", TypeUint8},
		{"float", TypeFloat64},
		{"decimal", TypeFloat64},
		{"real", TypeFloat32},
		{"datetime", TypeDateTime},
		{"DateTime", TypeDateTime}, // lookup is case-insensitive
		{"varchar", TypeText},
		{"nvarchar", TypeText},
		{"uniqueidentifier", TypeText},
	}
	for _, tc := range testcases {
		t.Run(tc.token, func(t *testing.T) {
			cols := parseHeaderLine("[c]:"+tc.token, ",")
			assertEqualF(t, len(cols), 1)
			assertEqualE(t, cols[0].typ, tc.typ)
		})
	}
}

func TestParseHeaderLineDropsMalformedTokens(t *testing.T) {
	cols := parseHeaderLine("[ra]:float,garbage,[dec]:float", ",")
	assertEqualF(t, len(cols), 2)
	assertEqualE(t, cols[0].name, "ra")
	assertEqualE(t, cols[0].pos, 0)
	// the dropped token still occupies field position 1 in data rows
	assertEqualE(t, cols[1].name, "dec")
	assertEqualE(t, cols[1].pos, 2)
}

func TestParseHeaderLineTab(t *testing.T) {
	cols := parseHeaderLine("[a]:int\t[b]:varchar", "\t")
	assertEqualF(t, len(cols), 2)
	assertEqualE(t, cols[0].typ, TypeInt32)
	assertEqualE(t, cols[1].typ, TypeText)
}

func TestReplaceNulls(t *testing.T) {
	testcases := []struct {
		name string
		in   string
		out  string
	}{
		{"middle field", "1,null,3", "1,,3"},
		{"uppercase", "1,NULL,3", "1,,3"},
		{"mixed case", "1,NuLl,3", "1,,3"},
		{"leading field", "null,2,3", ",2,3"},
		{"trailing field", "1,2,null", "1,2,"},
		{"whole payload start", "null,b\n1,2\n", ",b\n1,2\n"},
		{"across newlines", "a,null\nnull,b\n", "a,\n,b\n"},
		{"substring untouched", "NULLABLE,annulled,null", "NULLABLE,annulled,"},
		{"no nulls", "1,2,3\n", "1,2,3\n"},
		{"empty", "", ""},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assertEqualE(t, replaceNulls(tc.in, ","), tc.out)
		})
	}
}

func TestReplaceNullsIdempotent(t *testing.T) {
	in := "null,NULL,x\nnull,NULLABLE,null\n"
	once := replaceNulls(in, ",")
	twice := replaceNulls(once, ",")
	assertEqualE(t, twice, once)
}

func TestReplaceNullsTabDelimiter(t *testing.T) {
	assertEqualE(t, replaceNulls("1\tnull\t3", "\t"), "1\t\t3")
	// a comma next to null is just field content when the delimiter is tab
	assertEqualE(t, replaceNulls("1\tnull,x\t3", "\t"), "1\tnull,x\t3")
}

func TestConverterFuncs(t *testing.T) {
	v, err := converterFor(TypeInt32)("42")
	assertNilF(t, err)
	assertEqualE(t, v, int32(42))

	v, err = converterFor(TypeInt64)("-9007199254740993")
	assertNilF(t, err)
	assertEqualE(t, v, int64(-9007199254740993))

	v, err = converterFor(TypeFloat32)("1.5")
	assertNilF(t, err)
	assertEqualE(t, v, float32(1.5))

	v, err = converterFor(TypeUint8)("255")
	assertNilF(t, err)
	assertEqualE(t, v, uint8(255))

	v, err = converterFor(TypeText)("hello world")
	assertNilF(t, err)
	assertEqualE(t, v, "hello world")

	_, err = converterFor(TypeInt16)("40000")
	assertNotNilF(t, err, "out of range for int16")
}

func TestConverterEmptyFieldIsNull(t *testing.T) {
	for _, dt := range []DataType{TypeInt32, TypeInt16, TypeUint8, TypeInt64, TypeFloat64, TypeFloat32, TypeDateTime} {
		v, err := converterFor(dt)("")
		assertNilF(t, err)
		assertNilE(t, v, dt.String())
	}
}

func TestConverterDateTime(t *testing.T) {
	v, err := converterFor(TypeDateTime)("2014-05-07 18:30:15")
	assertNilF(t, err)
	tm := v.(time.Time)
	assertEqualE(t, tm.Year(), 2014)
	assertEqualE(t, tm.Month(), time.May)
	assertEqualE(t, tm.Second(), 15)

	v, err = converterFor(TypeDateTime)("2014-05-07 18:30:15.123")
	assertNilF(t, err)
	assertEqualE(t, v.(time.Time).Nanosecond(), 123000000)

	_, err = converterFor(TypeDateTime)("not a date")
	assertNotNilF(t, err)
}
