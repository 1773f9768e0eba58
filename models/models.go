package models

// ResultSet holds the full output of one query execution: the ordered column
// names as returned by the driver (duplicates allowed) and the rows, each
// aligned positionally to Columns. It is built fresh every cycle and thrown
// away once the artifact is rendered.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// Artifact is a fully rendered export file held in memory, tagged with the
// format that produced it. It is consumed exactly once by a delivery target.
type Artifact struct {
	Format string
	Bytes  []byte
}
