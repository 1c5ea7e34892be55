package casjobs

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ArrowRecord converts the table into an Arrow record batch for handoff
// to Arrow-native consumers. NULL cells become Arrow nulls. The caller
// owns the returned record and must Release it. A nil allocator selects
// the default.
func (t *Table) ArrowRecord(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	fields := make([]arrow.Field, t.NumCols())
	for i, c := range t.Columns() {
		at, err := arrowType(c.Type)
		if err != nil {
			return nil, err
		}
		fields[i] = arrow.Field{Name: c.Name, Type: at, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)
	rb := array.NewRecordBuilder(mem, schema)
	defer rb.Release()
	for i, c := range t.Columns() {
		if err := appendArrowColumn(rb.Field(i), c); err != nil {
			return nil, err
		}
	}
	return rb.NewRecord(), nil
}

func arrowType(dt DataType) (arrow.DataType, error) {
	switch dt {
	case TypeText:
		return arrow.BinaryTypes.String, nil
	case TypeInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case TypeInt16:
		return arrow.PrimitiveTypes.Int16, nil
	case TypeUint8:
		return arrow.PrimitiveTypes.Uint8, nil
	case TypeInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case TypeFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case TypeFloat32:
		return arrow.PrimitiveTypes.Float32, nil
	case TypeDateTime:
		return arrow.FixedWidthTypes.Timestamp_us, nil
	}
	return nil, fmt.Errorf("no arrow mapping for %v", dt)
}

func appendArrowColumn(b array.Builder, c *Column) error {
	for _, v := range c.Values {
		if v == nil {
			b.AppendNull()
			continue
		}
		switch builder := b.(type) {
		case *array.StringBuilder:
			builder.Append(v.(string))
		case *array.Int32Builder:
			builder.Append(v.(int32))
		case *array.Int16Builder:
			builder.Append(v.(int16))
		case *array.Uint8Builder:
			builder.Append(v.(uint8))
		case *array.Int64Builder:
			builder.Append(v.(int64))
		case *array.Float64Builder:
			builder.Append(v.(float64))
		case *array.Float32Builder:
			builder.Append(v.(float32))
		case *array.TimestampBuilder:
			builder.Append(arrow.Timestamp(v.(time.Time).UnixMicro()))
		default:
			return fmt.Errorf("unsupported arrow builder for column %v", c.Name)
		}
	}
	return nil
}
