package boot

import (
	"github.com/voltbyte/bringup/layout"
)

// Sequence is the work the reset handler performs before handing control to
// the application: copy the initialized data template from flash into RAM,
// then zero the bss range. It is built from resolved layout symbols and
// performs no validation of its own; by the time it runs there is nothing
// left to report to, so every range defect must have been rejected at build
// time.
type Sequence struct {
	DataLoadStart uint64
	DataStart     uint64
	DataEnd       uint64
	BssStart      uint64
	BssEnd        uint64
}

// NewSequence derives the reset work from layout symbols.
func NewSequence(symbols layout.Symbols) Sequence {
	return Sequence{
		DataLoadStart: symbols.DataLoadStart,
		DataStart:     symbols.DataStart,
		DataEnd:       symbols.DataEnd,
		BssStart:      symbols.BssStart,
		BssEnd:        symbols.BssEnd,
	}
}

// State is the machine state after the reset path ran on the host model.
type State struct {
	SP     uint64
	PC     uint64
	Copied uint64
	Zeroed uint64
}

// Run executes the sequence against a memory model: the template bytes are
// copied in ascending order, then the bss range is zeroed. Empty ranges are
// legal and do nothing. Errors come only from the host model itself.
func (s Sequence) Run(mem *Memory) (copied, zeroed uint64, err error) {
	if s.DataEnd > s.DataStart {
		buf := make([]byte, s.DataEnd-s.DataStart)
		if err := mem.Read(s.DataLoadStart, buf); err != nil {
			return 0, 0, err
		}
		if err := mem.Write(s.DataStart, buf); err != nil {
			return 0, 0, err
		}
		copied = uint64(len(buf))
	}

	if s.BssEnd > s.BssStart {
		zero := make([]byte, s.BssEnd-s.BssStart)
		if err := mem.Write(s.BssStart, zero); err != nil {
			return copied, 0, err
		}
		zeroed = uint64(len(zero))
	}

	return copied, zeroed, nil
}

// Reset performs a power-on reset against the model: the core loads the
// initial stack pointer from slot 0 of the vector table and the reset
// handler address from slot 1, then the reset sequence initializes memory
// and control transfers to the entry. Interrupts are masked throughout;
// nothing here suspends or blocks.
func Reset(mem *Memory, vectorBase uint64, seq Sequence) (State, error) {
	sp, err := mem.ReadWord(vectorBase)
	if err != nil {
		return State{}, err
	}
	entry, err := mem.ReadWord(vectorBase + 4)
	if err != nil {
		return State{}, err
	}

	copied, zeroed, err := seq.Run(mem)
	if err != nil {
		return State{}, err
	}

	return State{
		SP: uint64(sp),
		// The Thumb bit selects the execution state; the fetch address is
		// the value with it cleared.
		PC:     uint64(entry) &^ 1,
		Copied: copied,
		Zeroed: zeroed,
	}, nil
}
