package vector

import (
	"errors"
	"fmt"

	"github.com/voltbyte/bringup/targets"
)

// Index identifies a slot in the vector table. The first 16 slots are fixed
// by the architecture; device interrupts follow from FirstIRQ.
type Index int

const (
	InitialSP Index = 0
	Reset     Index = 1
	NMI       Index = 2
	HardFault Index = 3
	// MemManage, BusFault, UsageFault and DebugMonitor exist on mainline
	// profiles only. Baseline profiles reserve their slots.
	MemManage    Index = 4
	BusFault     Index = 5
	UsageFault   Index = 6
	SVCall       Index = 11
	DebugMonitor Index = 12
	PendSV       Index = 14
	SysTick      Index = 15
	FirstIRQ     Index = 16
)

// SystemEntries is the number of architecture defined slots before the
// device interrupts.
const SystemEntries = 16

func (i Index) String() string {
	switch i {
	case InitialSP:
		return "InitialSP"
	case Reset:
		return "Reset"
	case NMI:
		return "NMI"
	case HardFault:
		return "HardFault"
	case MemManage:
		return "MemManage"
	case BusFault:
		return "BusFault"
	case UsageFault:
		return "UsageFault"
	case SVCall:
		return "SVCall"
	case DebugMonitor:
		return "DebugMonitor"
	case PendSV:
		return "PendSV"
	case SysTick:
		return "SysTick"
	}
	if i >= FirstIRQ {
		return fmt.Sprintf("IRQ%d", int(i-FirstIRQ))
	}
	return fmt.Sprintf("Reserved%d", int(i))
}

// Interrupt is one external interrupt line by IRQ number.
type Interrupt struct {
	Name  string
	Value int
}

// Entry is one resolved vector table slot. Reserved slots hold zero; every
// other slot holds either the initial stack pointer or a handler address
// with the Thumb bit set.
type Entry struct {
	Index    Index
	Name     string
	Addr     uint64
	Reserved bool
}

// Table is the hardware vector table: a fixed length sequence of word size
// entries whose order and meaning never change after construction.
type Table struct {
	Profile targets.Profile
	Entries []Entry
}

// Config carries the addresses a table is built from. Handlers other than
// reset point at the default handler trap.
type Config struct {
	Profile        targets.Profile
	Interrupts     []Interrupt
	InitialSP      uint64
	Entry          uint64
	DefaultHandler uint64
}

// Count returns the table length in entries for a device interrupt set:
// the 16 system slots plus one slot per IRQ number up to the highest used.
func Count(interrupts []Interrupt) int {
	count := SystemEntries
	for _, irq := range interrupts {
		if index := SystemEntries + irq.Value + 1; index > count {
			count = index
		}
	}
	return count
}

// Build lays down the full table for a profile and device interrupt set.
// Slot 0 is the initial stack pointer and slot 1 the reset handler; the
// remaining handler slots are filled with the default handler so that no
// usable slot is ever null.
func Build(cfg Config) (*Table, error) {
	for _, irq := range cfg.Interrupts {
		if irq.Value < 0 {
			return nil, fmt.Errorf("interrupt %s has negative number %d", irq.Name, irq.Value)
		}
		if irq.Value >= cfg.Profile.MaxInterrupts {
			return nil, fmt.Errorf("interrupt %s number %d exceeds profile limit %d", irq.Name, irq.Value, cfg.Profile.MaxInterrupts)
		}
	}

	byValue := map[int]Interrupt{}
	for _, irq := range cfg.Interrupts {
		if other, ok := byValue[irq.Value]; ok {
			return nil, fmt.Errorf("interrupts %s and %s share number %d", other.Name, irq.Name, irq.Value)
		}
		byValue[irq.Value] = irq
	}

	table := Table{
		Profile: cfg.Profile,
		Entries: make([]Entry, Count(cfg.Interrupts)),
	}

	for i := range table.Entries {
		index := Index(i)
		entry := Entry{Index: index}

		switch index {
		case InitialSP:
			entry.Name = "__stack"
			entry.Addr = cfg.InitialSP
		case Reset:
			entry.Name = "Reset_Handler"
			entry.Addr = thumb(cfg.Entry)
		case NMI:
			entry.Name = "NMI_Handler"
			entry.Addr = thumb(cfg.DefaultHandler)
		case HardFault:
			entry.Name = "HardFault_Handler"
			entry.Addr = thumb(cfg.DefaultHandler)
		case MemManage, BusFault, UsageFault, DebugMonitor:
			if cfg.Profile.Mainline {
				entry.Name = faultName(index)
				entry.Addr = thumb(cfg.DefaultHandler)
			} else {
				entry.Reserved = true
			}
		case SVCall:
			entry.Name = "SVC_Handler"
			entry.Addr = thumb(cfg.DefaultHandler)
		case PendSV:
			entry.Name = "PendSV_Handler"
			entry.Addr = thumb(cfg.DefaultHandler)
		case SysTick:
			entry.Name = "SysTick_Handler"
			entry.Addr = thumb(cfg.DefaultHandler)
		default:
			if index < FirstIRQ {
				// Architecture reserved slot.
				entry.Reserved = true
				break
			}
			if irq, ok := byValue[int(index-FirstIRQ)]; ok {
				entry.Name = irq.Name + "_Handler"
			} else {
				// Interrupt number not wired on this device. The slot still
				// gets the trap, never garbage.
				entry.Name = "Default_Handler"
			}
			entry.Addr = thumb(cfg.DefaultHandler)
		}

		table.Entries[i] = entry
	}

	return &table, nil
}

// Validate rejects tables with undefined handler slots. Reserved slots are
// exempt; everything else must carry a usable address before the image is
// emitted, because at run time there is nothing left to report to.
func (t *Table) Validate() error {
	var err error
	for _, entry := range t.Entries {
		if entry.Reserved {
			continue
		}
		switch entry.Index {
		case InitialSP:
			if entry.Addr == 0 {
				err = errors.Join(err, &SlotError{Index: entry.Index, Name: entry.Name})
			}
			if entry.Addr%8 != 0 {
				err = errors.Join(err, fmt.Errorf("initial stack pointer %#x is not 8 byte aligned", entry.Addr))
			}
		default:
			if entry.Addr == 0 || entry.Addr&1 == 0 {
				err = errors.Join(err, &SlotError{Index: entry.Index, Name: entry.Name})
			}
		}
		if entry.Addr > 0xFFFFFFFF {
			err = errors.Join(err, fmt.Errorf("slot %d value %#x exceeds the word size", entry.Index, entry.Addr))
		}
	}
	return err
}

// Lookup returns the entry at the given index.
func (t *Table) Lookup(index Index) (Entry, bool) {
	if int(index) >= len(t.Entries) {
		return Entry{}, false
	}
	return t.Entries[index], true
}

// Size returns the table size in bytes.
func (t *Table) Size() uint64 {
	return uint64(len(t.Entries)) * 4
}

func faultName(index Index) string {
	switch index {
	case MemManage:
		return "MemManage_Handler"
	case BusFault:
		return "BusFault_Handler"
	case UsageFault:
		return "UsageFault_Handler"
	case DebugMonitor:
		return "DebugMon_Handler"
	}
	return ""
}

// thumb sets the Thumb execution bit on a handler address.
func thumb(addr uint64) uint64 {
	if addr == 0 {
		return 0
	}
	return addr | 1
}
