package vector

import (
	"bytes"
	"errors"
	"testing"

	"github.com/voltbyte/bringup/targets"
)

func profile(t *testing.T, name string) targets.Profile {
	t.Helper()
	p, err := targets.FindByName(name)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestBuildBaseline(t *testing.T) {
	irqs := []Interrupt{
		{Name: "PM", Value: 0},
		{Name: "SYSCTRL", Value: 1},
		{Name: "I2S", Value: 27},
	}

	table, err := Build(Config{
		Profile:        profile(t, "thumbv6m-none-eabi"),
		Interrupts:     irqs,
		InitialSP:      0x20002000,
		Entry:          0x000000C0,
		DefaultHandler: 0x000000B0,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(table.Entries) != 44 {
		t.Fatalf("expected 44 entries (16 system + 28 interrupts), got %d", len(table.Entries))
	}

	sp, _ := table.Lookup(InitialSP)
	if sp.Addr != 0x20002000 {
		t.Errorf("slot 0 must hold the initial stack pointer, got %#x", sp.Addr)
	}
	if sp.Addr&1 != 0 {
		t.Error("the stack pointer must not carry a Thumb bit")
	}

	reset, _ := table.Lookup(Reset)
	if reset.Addr != 0x000000C1 {
		t.Errorf("slot 1 must hold the reset handler with the Thumb bit, got %#x", reset.Addr)
	}
	if reset.Name != "Reset_Handler" {
		t.Errorf("unexpected reset entry name %q", reset.Name)
	}

	// Baseline profiles reserve the configurable fault slots.
	for _, index := range []Index{MemManage, BusFault, UsageFault, DebugMonitor} {
		entry, _ := table.Lookup(index)
		if !entry.Reserved || entry.Addr != 0 {
			t.Errorf("slot %d must be reserved on a baseline profile", index)
		}
	}

	for _, index := range []Index{NMI, HardFault, SVCall, PendSV, SysTick} {
		entry, _ := table.Lookup(index)
		if entry.Addr != 0x000000B1 {
			t.Errorf("slot %d (%s) must trap to the default handler, got %#x", index, index, entry.Addr)
		}
	}

	// Interrupt slots without a device interrupt still get the trap.
	unused, _ := table.Lookup(FirstIRQ + 5)
	if unused.Name != "Default_Handler" || unused.Addr != 0x000000B1 {
		t.Errorf("unused interrupt slot must hold the default handler, got %q %#x", unused.Name, unused.Addr)
	}

	named, _ := table.Lookup(FirstIRQ + 27)
	if named.Name != "I2S_Handler" {
		t.Errorf("expected I2S_Handler at the last slot, got %q", named.Name)
	}
}

func TestBuildMainline(t *testing.T) {
	table, err := Build(Config{
		Profile:        profile(t, "thumbv7em-none-eabi"),
		InitialSP:      0x20020000,
		Entry:          0x00400100,
		DefaultHandler: 0x004000F0,
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		index    Index
		expected string
	}{
		{MemManage, "MemManage_Handler"},
		{BusFault, "BusFault_Handler"},
		{UsageFault, "UsageFault_Handler"},
		{DebugMonitor, "DebugMon_Handler"},
	}
	for _, tt := range tests {
		entry, _ := table.Lookup(tt.index)
		if entry.Reserved {
			t.Errorf("slot %d must be populated on a mainline profile", tt.index)
		}
		if entry.Name != tt.expected {
			t.Errorf("expected %s at slot %d, got %q", tt.expected, tt.index, entry.Name)
		}
	}

	// Slots 7 through 10 and 13 are reserved on every profile.
	for _, index := range []Index{7, 8, 9, 10, 13} {
		entry, _ := table.Lookup(index)
		if !entry.Reserved || entry.Addr != 0 {
			t.Errorf("slot %d must be reserved", index)
		}
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		name     string
		irqs     []Interrupt
		expected int
	}{
		{"no interrupts", nil, 16},
		{"dense", []Interrupt{{"A", 0}, {"B", 1}, {"C", 2}}, 19},
		{"sparse", []Interrupt{{"A", 0}, {"Z", 38}}, 55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.irqs); got != tt.expected {
				t.Errorf("expected %d entries, got %d", tt.expected, got)
			}
		})
	}
}

func TestBuildRejectsBadInterrupts(t *testing.T) {
	v6m := profile(t, "thumbv6m-none-eabi")

	tests := []struct {
		name string
		irqs []Interrupt
	}{
		{"negative", []Interrupt{{"X", -1}}},
		{"beyond profile limit", []Interrupt{{"X", 32}}},
		{"duplicate", []Interrupt{{"A", 3}, {"B", 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(Config{Profile: v6m, Interrupts: tt.irqs, InitialSP: 0x20001000, Entry: 0x100, DefaultHandler: 0xE0})
			if err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	v7m := profile(t, "thumbv7m-none-eabi")

	t.Run("complete table passes", func(t *testing.T) {
		table, err := Build(Config{Profile: v7m, InitialSP: 0x20005000, Entry: 0x08000100, DefaultHandler: 0x080000F0})
		if err != nil {
			t.Fatal(err)
		}
		if err := table.Validate(); err != nil {
			t.Errorf("expected a valid table, got %v", err)
		}
	})

	t.Run("missing default handler", func(t *testing.T) {
		table, err := Build(Config{Profile: v7m, InitialSP: 0x20005000, Entry: 0x08000100})
		if err != nil {
			t.Fatal(err)
		}
		err = table.Validate()
		if !errors.Is(err, ErrUndefinedEntry) {
			t.Fatalf("expected ErrUndefinedEntry, got %v", err)
		}
		var slot *SlotError
		if !errors.As(err, &slot) {
			t.Fatal("error carries no slot detail")
		}
	})

	t.Run("missing reset handler", func(t *testing.T) {
		table, err := Build(Config{Profile: v7m, InitialSP: 0x20005000, DefaultHandler: 0x080000F0})
		if err != nil {
			t.Fatal(err)
		}
		if err := table.Validate(); !errors.Is(err, ErrUndefinedEntry) {
			t.Fatalf("expected ErrUndefinedEntry, got %v", err)
		}
	})

	t.Run("unaligned stack pointer", func(t *testing.T) {
		table, err := Build(Config{Profile: v7m, InitialSP: 0x20005004 | 2, Entry: 0x08000100, DefaultHandler: 0x080000F0})
		if err != nil {
			t.Fatal(err)
		}
		if err := table.Validate(); err == nil {
			t.Error("expected an error for an unaligned stack pointer")
		}
	})
}

func TestEncode(t *testing.T) {
	table, err := Build(Config{
		Profile:        profile(t, "thumbv6m-none-eabi"),
		Interrupts:     []Interrupt{{Name: "WWDG", Value: 0}},
		InitialSP:      0x20002000,
		Entry:          0x000000C0,
		DefaultHandler: 0x000000B0,
	})
	if err != nil {
		t.Fatal(err)
	}

	buf := table.Encode()
	if len(buf) != 4*17 {
		t.Fatalf("expected %d bytes, got %d", 4*17, len(buf))
	}

	// Entry N sits at byte offset 4N, little endian.
	if !bytes.Equal(buf[0:4], []byte{0x00, 0x20, 0x00, 0x20}) {
		t.Errorf("slot 0 encoded as % x", buf[0:4])
	}
	if !bytes.Equal(buf[4:8], []byte{0xC1, 0x00, 0x00, 0x00}) {
		t.Errorf("slot 1 encoded as % x", buf[4:8])
	}
	// Reserved slot 7 encodes as zero.
	if !bytes.Equal(buf[28:32], []byte{0, 0, 0, 0}) {
		t.Errorf("reserved slot 7 encoded as % x", buf[28:32])
	}
	// The WWDG slot at index 16 traps to the default handler.
	if !bytes.Equal(buf[64:68], []byte{0xB1, 0x00, 0x00, 0x00}) {
		t.Errorf("slot 16 encoded as % x", buf[64:68])
	}
}
