package fmi

// DependencyEntry is one sparse cell of a dependency matrix row: the
// depended-upon variable's index and the kind of dependency (§3 "Dependency
// matrices").
type DependencyEntry struct {
	Index int
	Kind  DependencyKind
}

// DependencyMatrix is a sparse, row-ordered matrix indexed by variable
// index. The three matrices named in §3 (output-on-input, derivative-on-
// state, initial-unknown-on-anything) are each one of these, row-indexed
// by variable index, 0-indexed in storage even though the FMI standard's
// XML encodes the first row as 1-indexed (§4.1 "Derivation rules").
type DependencyMatrix struct {
	rows map[int][]DependencyEntry
}

func newDependencyMatrix() *DependencyMatrix {
	return &DependencyMatrix{rows: make(map[int][]DependencyEntry)}
}

func (m *DependencyMatrix) add(row int, entry DependencyEntry) {
	m.rows[row] = append(m.rows[row], entry)
}

// Row returns the dependency entries for the given 0-indexed variable
// index, or nil if the row has no recorded dependencies.
func (m *DependencyMatrix) Row(variableIndex int) []DependencyEntry {
	return m.rows[variableIndex]
}
