// Package recording persists simulation history. Engine events flow in
// through a hook bridge and land in per-event tables on one of two
// backends, a local SQLite file for single runs or a ClickHouse server for
// long-lived deployments. Rows are buffered and written in batches.
package recording

// DataRecorder is a backend that can record and store rows of simulation
// history.
type DataRecorder interface {
	// CreateTable creates a table shaped like the sample entry. Every
	// exported field of the sample becomes a column.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers one entry for a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all created tables.
	ListTables() []string

	// Flush writes all buffered entries to the backend.
	Flush()

	// Close flushes and releases the backend connection.
	Close() error
}
