package casjobs

import (
	"strings"
	"testing"
	"time"
)

func TestDecodeQuickResult(t *testing.T) {
	result := "[ra]:float,[dec]:float,[name]:varchar\n" +
		"1.0,2.0,\"M31\"\n" +
		"3.0,4.0,\"M33\"\n" +
		"\n"
	tab, err := decodeQuickResult(result)
	assertNilF(t, err)
	assertEqualF(t, tab.NumRows(), 2)
	assertEqualF(t, tab.NumCols(), 3)

	ra, ok := tab.Column("ra")
	assertTrueF(t, ok)
	assertEqualE(t, ra.Type, TypeFloat64)
	assertEqualE(t, ra.Values[0], 1.0)
	assertEqualE(t, ra.Values[1], 3.0)

	dec, ok := tab.Column("dec")
	assertTrueF(t, ok)
	assertEqualE(t, dec.Type, TypeFloat64)
	assertEqualE(t, dec.Values[1], 4.0)

	name, ok := tab.Column("name")
	assertTrueF(t, ok)
	assertEqualE(t, name.Type, TypeText)
	assertEqualE(t, name.Values[0], "M31")
	assertEqualE(t, name.Values[1], "M33")
}

func TestDecodeQuickResultEmpty(t *testing.T) {
	for _, result := range []string{"", "\n", "  \n"} {
		tab, err := decodeQuickResult(result)
		assertNilF(t, err)
		assertEqualE(t, tab.NumRows(), 0)
		assertEqualE(t, tab.NumCols(), 0)
	}
}

func TestDecodeQuickResultNulls(t *testing.T) {
	result := "[objID]:bigint,[ra]:float\n" +
		"null,1.5\n" +
		"42,NULL\n"
	tab, err := decodeQuickResult(result)
	assertNilF(t, err)
	assertEqualF(t, tab.NumRows(), 2)
	objID, _ := tab.Column("objID")
	assertNilE(t, objID.Values[0])
	assertEqualE(t, objID.Values[1], int64(42))
	ra, _ := tab.Column("ra")
	assertEqualE(t, ra.Values[0], 1.5)
	assertNilE(t, ra.Values[1])
}

func TestDecodeQuickResultDroppedColumn(t *testing.T) {
	// the malformed middle token is dropped from the schema but its data
	// fields remain in the rows
	result := "[a]:int,garbage,[c]:int\n" +
		"1,x,3\n" +
		"4,y,6\n"
	tab, err := decodeQuickResult(result)
	assertNilF(t, err)
	assertEqualF(t, tab.NumCols(), 2)
	assertDeepEqualE(t, tab.Names(), []string{"a", "c"})
	c, _ := tab.Column("c")
	assertEqualE(t, c.Values[0], int32(3))
	assertEqualE(t, c.Values[1], int32(6))
}

func TestDecodeQuickResultDateTime(t *testing.T) {
	result := "[obsTime]:datetime,[n]:int\n" +
		"2014-05-07 18:30:15,1\n" +
		"null,2\n"
	tab, err := decodeQuickResult(result)
	assertNilF(t, err)
	col, _ := tab.Column("obsTime")
	assertEqualE(t, col.Type, TypeDateTime)
	assertEqualE(t, col.Values[0].(time.Time).Hour(), 18)
	assertNilE(t, col.Values[1])
}

func TestDecodeTabResult(t *testing.T) {
	result := "[objID]:bigint\t[ra]:float\t[name]:varchar\n" +
		"1234567890123\t1.25\tNGC 224\n" +
		"9876543210987\t2.5\tNGC 598\n" +
		"\n"
	tab, err := decodeTabResult(result)
	assertNilF(t, err)
	assertEqualF(t, tab.NumRows(), 2)
	objID, _ := tab.Column("objID")
	assertEqualE(t, objID.Values[0], int64(1234567890123))
	name, _ := tab.Column("name")
	// tab-delimited fields are not quoted, spaces survive
	assertEqualE(t, name.Values[0], "NGC 224")
}

func TestDecodeCSVDownload(t *testing.T) {
	text := "objID,ra,name\n" +
		"1,1.5,M31\n" +
		"2,null,M33\n"
	tab, err := decodeCSVDownload(text)
	assertNilF(t, err)
	assertEqualF(t, tab.NumRows(), 2)

	objID, _ := tab.Column("objID")
	assertEqualE(t, objID.Type, TypeInt64, "all-integer column")
	assertEqualE(t, objID.Values[1], int64(2))

	ra, _ := tab.Column("ra")
	assertEqualE(t, ra.Type, TypeFloat64, "numeric column with nulls")
	assertNilE(t, ra.Values[1])

	name, _ := tab.Column("name")
	assertEqualE(t, name.Type, TypeText)
	assertEqualE(t, name.Values[1], "M33")
}

func TestDecodeCSVDownloadEmpty(t *testing.T) {
	tab, err := decodeCSVDownload("")
	assertNilF(t, err)
	assertEqualE(t, tab.NumRows(), 0)
	assertEqualE(t, tab.NumCols(), 0)
}

func TestQuickRoundTrip(t *testing.T) {
	orig := NewTable()
	assertNilF(t, orig.AddColumn("objID", TypeInt64))
	assertNilF(t, orig.AddColumn("ra", TypeFloat64))
	assertNilF(t, orig.AddColumn("dec", TypeFloat32))
	assertNilF(t, orig.AddColumn("name", TypeText))
	assertNilF(t, orig.AddColumn("flag", TypeUint8))
	assertNilF(t, orig.AppendRow(int64(1), 10.5, float32(-2.25), "M31", uint8(1)))
	assertNilF(t, orig.AppendRow(int64(2), 187.7059304, float32(12.3), "M87", nil))

	decoded, err := decodeQuickResult(orig.encodeCSV(true))
	assertNilF(t, err)
	assertEqualF(t, decoded.NumRows(), orig.NumRows())
	assertEqualF(t, decoded.NumCols(), orig.NumCols())
	assertDeepEqualE(t, decoded.Names(), orig.Names())
	for i, col := range orig.Columns() {
		assertEqualE(t, decoded.Columns()[i].Type, col.Type, col.Name)
	}
	ra, _ := decoded.Column("ra")
	assertEqualEpsilonE(t, ra.Values[1].(float64), 187.7059304, 1e-9)
	name, _ := decoded.Column("name")
	assertEqualE(t, name.Values[1], "M87")
	flag, _ := decoded.Column("flag")
	assertNilE(t, flag.Values[1])
}

func TestQuickRoundTripQuotedStrings(t *testing.T) {
	orig := NewTable()
	assertNilF(t, orig.AddColumn("name", TypeText))
	assertNilF(t, orig.AppendRow(`spiral, barred`))
	assertNilF(t, orig.AppendRow(`quoted "disk" galaxy`))

	encoded := orig.encodeCSV(true)
	assertTrueE(t, strings.HasPrefix(encoded, "[name]:varchar\n"))
	decoded, err := decodeQuickResult(encoded)
	assertNilF(t, err)
	name, _ := decoded.Column("name")
	assertEqualE(t, name.Values[0], `spiral, barred`)
	assertEqualE(t, name.Values[1], `quoted "disk" galaxy`)
}
