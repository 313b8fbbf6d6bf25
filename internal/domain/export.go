package domain

// ExportTable is the flattened, tabular view of an event's orders.
// Every consumer (CSV, XLSX, JSON, sheet sync) renders the same table so the
// outputs never diverge. Each row has exactly len(Headers) cells.
type ExportTable struct {
	Headers []string
	Rows    [][]string
}
