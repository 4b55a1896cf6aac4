package simplepg

// Record is one result row keyed by column name.
type Record map[string]any

// FetchResult holds the fully materialized rows of a query and their column names.
// Every row has exactly len(Columns) values. A FetchResult is not modified after
// it is returned.
type FetchResult struct {
	Rows    [][]any
	Columns []string
}

// AsRecords zips Columns with each row, preserving row order.
// If a result has duplicate column names, the rightmost value wins.
func (r FetchResult) AsRecords() []Record {
	records := make([]Record, 0, len(r.Rows))
	for _, row := range r.Rows {
		rec := make(Record, len(r.Columns))
		for i, col := range r.Columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records
}

// Len returns the number of rows.
func (r FetchResult) Len() int {
	return len(r.Rows)
}
