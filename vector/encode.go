package vector

import "encoding/binary"

// Encode renders the table in its hardware format: one little endian word
// per entry, entry N at byte offset 4N. The result is bit exact; hardware
// reads it without interpretation.
func (t *Table) Encode() []byte {
	buf := make([]byte, t.Size())
	for i, entry := range t.Entries {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(entry.Addr))
	}
	return buf
}
