package layout

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/voltbyte/bringup/memmap"
)

// Plan describes a program to be placed into a device address map. The map
// must contain a FLASH and a RAM region.
type Plan struct {
	Memory   memmap.Map
	Sections []Section
}

// Placement is a section resolved to its final addresses. Addr is where the
// section lives at run time; LoadAddr is where its contents sit in flash.
// The two differ only for initialized data.
type Placement struct {
	Section  Section
	Region   string
	Addr     uint64
	LoadAddr uint64
}

func (p Placement) Length() uint64 {
	return p.Section.Length()
}

// Symbol is a named boundary address.
type Symbol struct {
	Name string
	Addr uint64
}

// Symbols are the boundary addresses consumed by the reset sequence and
// exported by the linker script.
type Symbols struct {
	TextStart     uint64 // _stext
	TextEnd       uint64 // _etext
	DataLoadStart uint64 // _sidata
	DataStart     uint64 // _sdata
	DataEnd       uint64 // _edata
	BssStart      uint64 // _sbss
	BssEnd        uint64 // _ebss
	StackBottom   uint64 // __stack_bottom
	StackTop      uint64 // __stack
}

// List returns the symbols in their canonical emission order.
func (s Symbols) List() []Symbol {
	return []Symbol{
		{"_stext", s.TextStart},
		{"_etext", s.TextEnd},
		{"_sidata", s.DataLoadStart},
		{"_sdata", s.DataStart},
		{"_edata", s.DataEnd},
		{"_sbss", s.BssStart},
		{"_ebss", s.BssEnd},
		{"__stack_bottom", s.StackBottom},
		{"__stack", s.StackTop},
	}
}

// Layout is the resolved address assignment for a plan. It is computed once
// per build and never modified afterwards.
type Layout struct {
	Memory     memmap.Map
	Placements []Placement
	Symbols    Symbols
}

// Find returns the placement of the named section.
func (l *Layout) Find(name string) (Placement, bool) {
	for _, placement := range l.Placements {
		if placement.Section.Name == name {
			return placement, true
		}
	}
	return Placement{}, false
}

// Resolve assigns every section in the plan to a concrete address. The
// vector table becomes the first content in flash, initialized data is given
// both a RAM address and a flash load address, and the stack is pinned to
// the top of RAM. Sections that do not fit fail with an overflow naming the
// region; nothing is ever truncated.
func Resolve(plan Plan) (*Layout, error) {
	if err := plan.Memory.Validate(); err != nil {
		return nil, err
	}

	flash, err := plan.Memory.Find("FLASH")
	if err != nil {
		return nil, err
	}
	ram, err := plan.Memory.Find("RAM")
	if err != nil {
		return nil, err
	}

	sections := make([]Section, len(plan.Sections))
	copy(sections, plan.Sections)

	var stack *Section
	if stack, err = validate(sections); err != nil {
		return nil, err
	}

	refs := make([]*Section, len(sections))
	for i := range sections {
		refs[i] = &sections[i]
	}
	ordered, err := computeOrder(refs)
	if err != nil {
		return nil, err
	}

	// The stack sits at the top of RAM and grows downward. Its bottom bounds
	// everything else placed in RAM.
	stackTop := alignDown(ram.End(), stackAlign(stack))
	if stack.Length() > stackTop-ram.Base {
		return nil, &OverflowError{Region: ram.Name, Need: stack.Length() - (stackTop - ram.Base)}
	}
	stackBottom := stackTop - stack.Length()

	layout := Layout{Memory: plan.Memory}
	flashCursor := flash.Base
	ramCursor := ram.Base

	var (
		textEnd       = flash.Base
		dataLoadStart uint64
		dataStart     uint64
		dataEnd       uint64
		bssStart      uint64
		bssEnd        uint64
		sawData       bool
		sawBss        bool
	)

	for _, section := range ordered {
		align := section.Alignment()
		switch section.Kind {
		case KindVectors, KindCode, KindRodata:
			addr := alignUp(flashCursor, align)
			if section.Kind == KindVectors && addr != flash.Base {
				// Hardware fetches the table from the bottom of flash.
				return nil, fmt.Errorf("vector table %q must sit at %#x, would land at %#x", section.Name, flash.Base, addr)
			}
			end := addr + section.Length()
			if end > flash.End() {
				return nil, &OverflowError{Region: flash.Name, Need: end - flash.End()}
			}
			layout.Placements = append(layout.Placements, Placement{
				Section: *section, Region: flash.Name, Addr: addr, LoadAddr: addr,
			})
			flashCursor = end
			textEnd = end

		case KindData:
			addr := alignUp(ramCursor, align)
			if !sawData {
				sawData = true
				dataStart = addr
				dataLoadStart = alignUp(flashCursor, align)
			}
			// Keep the flash template at the same offsets as the RAM image so
			// the reset sequence can copy it as one range.
			load := dataLoadStart + (addr - dataStart)
			end := addr + section.Length()
			loadEnd := load + section.Length()
			if loadEnd > flash.End() {
				return nil, &OverflowError{Region: flash.Name, Need: loadEnd - flash.End()}
			}
			if end > stackBottom {
				return nil, &OverflowError{Region: ram.Name, Need: end - stackBottom}
			}
			layout.Placements = append(layout.Placements, Placement{
				Section: *section, Region: ram.Name, Addr: addr, LoadAddr: load,
			})
			ramCursor = end
			dataEnd = end
			flashCursor = loadEnd

		case KindBss:
			addr := alignUp(ramCursor, align)
			if !sawBss {
				sawBss = true
				bssStart = addr
			}
			end := addr + section.Length()
			if end > stackBottom {
				return nil, &OverflowError{Region: ram.Name, Need: end - stackBottom}
			}
			layout.Placements = append(layout.Placements, Placement{
				Section: *section, Region: ram.Name, Addr: addr, LoadAddr: addr,
			})
			ramCursor = end
			bssEnd = end
		}
	}

	layout.Placements = append(layout.Placements, Placement{
		Section: *stack, Region: ram.Name, Addr: stackBottom, LoadAddr: stackBottom,
	})

	// Ranges with no sections collapse to empty but stay defined so the
	// reset sequence can run them unconditionally.
	if !sawData {
		dataStart = ramCursor
		dataEnd = ramCursor
		dataLoadStart = textEnd
	}
	if !sawBss {
		bssStart = ramCursor
		bssEnd = ramCursor
	}

	layout.Symbols = Symbols{
		TextStart:     flash.Base,
		TextEnd:       textEnd,
		DataLoadStart: dataLoadStart,
		DataStart:     dataStart,
		DataEnd:       dataEnd,
		BssStart:      bssStart,
		BssEnd:        bssEnd,
		StackBottom:   stackBottom,
		StackTop:      stackTop,
	}

	return &layout, nil
}

// validate checks the section set and returns its stack section.
func validate(sections []Section) (*Section, error) {
	var stack *Section
	vectors := 0
	names := map[string]bool{}

	for i := range sections {
		section := &sections[i]
		if len(section.Name) == 0 {
			return nil, fmt.Errorf("section %d has no name", i)
		}
		if names[section.Name] {
			return nil, errors.Join(ErrDuplicateSection, fmt.Errorf("section %q", section.Name))
		}
		names[section.Name] = true

		if section.Align != 0 && bits.OnesCount64(section.Align) != 1 {
			return nil, errors.Join(ErrBadAlignment, fmt.Errorf("section %q alignment %d", section.Name, section.Align))
		}
		if section.Data != nil && section.Size != 0 {
			return nil, errors.Join(ErrAmbiguousSize, fmt.Errorf("section %q", section.Name))
		}

		switch section.Kind {
		case KindVectors:
			vectors++
			if vectors > 1 {
				return nil, ErrMultipleVectorTables
			}
			if section.Length() == 0 || section.Length()%4 != 0 {
				return nil, fmt.Errorf("vector table section %q length %d is not a multiple of 4", section.Name, section.Length())
			}
		case KindStack:
			if stack != nil {
				return nil, ErrMultipleStacks
			}
			if section.Data != nil {
				return nil, fmt.Errorf("stack section %q cannot have contents", section.Name)
			}
			if section.Length() == 0 {
				return nil, fmt.Errorf("stack section %q has no size", section.Name)
			}
			stack = section
		case KindBss:
			if section.Data != nil {
				return nil, fmt.Errorf("bss section %q cannot have contents", section.Name)
			}
		}
	}

	if vectors == 0 {
		return nil, ErrNoVectorTable
	}
	if stack == nil {
		return nil, ErrNoStack
	}
	return stack, nil
}

func stackAlign(stack *Section) uint64 {
	if align := stack.Alignment(); align > 8 {
		return align
	}
	return 8
}
