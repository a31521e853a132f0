package compiler

// SourceMap records, for each line of canonical output, the line of the
// original source that produced it. Execution engines use it to report
// runtime failures against the file the author wrote.
type SourceMap struct {
	toSource map[int]int
}

// NewSourceMap creates an empty map.
func NewSourceMap() *SourceMap {
	return &SourceMap{toSource: make(map[int]int)}
}

// Add records that output line generated maps back to source line original.
// Lines are 1-based.
func (m *SourceMap) Add(generated, original int) {
	m.toSource[generated] = original
}

// SourceLine returns the original source line for an output line, or 0 when
// the line has no mapping.
func (m *SourceMap) SourceLine(generated int) int {
	return m.toSource[generated]
}

// Len reports how many output lines are mapped.
func (m *SourceMap) Len() int {
	return len(m.toSource)
}
