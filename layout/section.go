package layout

// Kind classifies a section by its placement and initialization rules.
type Kind int

const (
	// KindVectors is the hardware vector table. It must be the first content
	// in flash.
	KindVectors Kind = iota

	// KindCode is executable text, placed in flash.
	KindCode

	// KindRodata is read-only data, placed in flash after code.
	KindRodata

	// KindData is initialized data. It occupies RAM at run time and its
	// initial contents are stored in flash, to be copied over by the reset
	// sequence.
	KindData

	// KindBss is zero-initialized data in RAM. It occupies no flash space.
	KindBss

	// KindStack is the stack, pinned to the top of RAM growing downward.
	KindStack
)

func (k Kind) String() string {
	switch k {
	case KindVectors:
		return "vectors"
	case KindCode:
		return "code"
	case KindRodata:
		return "rodata"
	case KindData:
		return "data"
	case KindBss:
		return "bss"
	case KindStack:
		return "stack"
	}
	return "unknown"
}

// Section is a named chunk of the program to be placed. Either Data holds
// the contents or Size gives the length, never both.
type Section struct {
	Name  string
	Kind  Kind
	Data  []byte
	Size  uint64
	Align uint64
}

// Length returns the section's size in bytes.
func (s Section) Length() uint64 {
	if s.Data != nil {
		return uint64(len(s.Data))
	}
	return s.Size
}

// Alignment returns the section's alignment, defaulting to word alignment.
func (s Section) Alignment() uint64 {
	if s.Align == 0 {
		return 4
	}
	return s.Align
}

func alignUp(addr, align uint64) uint64 {
	return (addr + align - 1) &^ (align - 1)
}

func alignDown(addr, align uint64) uint64 {
	return addr &^ (align - 1)
}
