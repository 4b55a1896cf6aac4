package db

import (
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"
)

// floatNumericCodec decodes NUMERIC values to float64 instead of pgtype.Numeric.
// Encoding and scanning into typed destinations are inherited unchanged.
type floatNumericCodec struct {
	pgtype.NumericCodec
}

func (c floatNumericCodec) DecodeValue(m *pgtype.Map, oid uint32, format int16, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	v, err := c.NumericCodec.DecodeValue(m, oid, format, src)
	if err != nil {
		return nil, err
	}

	n, ok := v.(pgtype.Numeric)
	if !ok {
		return nil, fmt.Errorf("unexpected numeric representation %T", v)
	}
	f, err := n.Float64Value()
	if err != nil {
		return nil, err
	}
	if !f.Valid {
		return nil, nil
	}
	return f.Float64, nil
}

// RegisterDecimalAsFloat makes m decode NUMERIC and NUMERIC[] columns to
// float64 and []any of float64. NULL stays nil.
func RegisterDecimalAsFloat(m *pgtype.Map) {
	numericType := &pgtype.Type{Name: "numeric", OID: pgtype.NumericOID, Codec: floatNumericCodec{}}
	m.RegisterType(numericType)
	m.RegisterType(&pgtype.Type{
		Name:  "_numeric",
		OID:   pgtype.NumericArrayOID,
		Codec: &pgtype.ArrayCodec{ElementType: numericType},
	})
}

// decimalAsFloat converts a database/sql NUMERIC value (text bytes under
// lib/pq) to float64. Values of any other column type pass through.
func decimalAsFloat(databaseTypeName string, v any) (any, error) {
	if databaseTypeName != "NUMERIC" {
		return v, nil
	}

	switch d := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return parseDecimal(string(d))
	case string:
		return parseDecimal(d)
	default:
		return v, nil
	}
}

func parseDecimal(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("decode numeric %q: %w", s, err)
	}
	return f, nil
}
