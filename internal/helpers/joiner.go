package helpers

// Joiner accumulates a module's emitted lines and concatenates them once,
// at exactly the final size, instead of repeatedly reallocating a
// growing string. The printer's string-only traffic (one rendered
// statement or import/export line at a time) never needs the byte-slice
// side of the original two-kind joiner, so this keeps only the string
// path.
type Joiner struct {
	strings  []joinerString
	length   uint32
	lastByte byte
}

type joinerString struct {
	data   string
	offset uint32
}

func (j *Joiner) AddString(data string) {
	if len(data) > 0 {
		j.lastByte = data[len(data)-1]
	}
	j.strings = append(j.strings, joinerString{data, j.length})
	j.length += uint32(len(data))
}

// EnsureNewlineAtEnd appends a trailing newline if the joiner is
// non-empty and doesn't already end in one.
func (j *Joiner) EnsureNewlineAtEnd() {
	if j.length > 0 && j.lastByte != '\n' {
		j.AddString("\n")
	}
}

func (j *Joiner) Done() []byte {
	buffer := make([]byte, j.length)
	for _, item := range j.strings {
		copy(buffer[item.offset:], item.data)
	}
	return buffer
}
