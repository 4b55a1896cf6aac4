package tui

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// NullText is how SQL NULL is displayed.
const NullText = "NULL"

// FormatValue renders one result value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return NullText
	case string:
		return val
	case []byte:
		return `\x` + hex.EncodeToString(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// FormatRow renders every value of row.
func FormatRow(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = FormatValue(v)
	}
	return out
}
