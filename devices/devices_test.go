package devices

import (
	"errors"
	"testing"
)

func TestFindByChip(t *testing.T) {
	tests := []struct {
		name     string
		chip     string
		series   string
		flash    int
		ram      int
		expected error
	}{
		{"samd21 64K", "atsamd21g16a", "samd21", 64, 8, nil},
		{"samd21 256K", "ATSAMD21G18A", "samd21", 256, 32, nil},
		{"stm32l0 64K", "stm32l053r8", "stm32l0x3", 64, 8, nil},
		{"stm32l0 192K", "STM32L073RZ", "stm32l0x3", 192, 20, nil},
		{"stm32f1 128K", "stm32f103cb", "stm32f103", 128, 20, nil},
		{"sam4s 1M", "atsam4s16c", "sam4s", 1024, 128, nil},
		{"nrf52", "nrf52832", "nrf52832", 512, 64, nil},
		{"unknown", "atsamd51j19a", "", 0, 0, ErrUnknownDevice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device, err := FindByChip(tt.chip)
			if !errors.Is(err, tt.expected) {
				t.Fatalf("expected error %v, got %v", tt.expected, err)
			}
			if err != nil {
				return
			}
			if device.Info.Series != tt.series {
				t.Errorf("expected series %q, got %q", tt.series, device.Info.Series)
			}
			if device.Memory.Flash != tt.flash {
				t.Errorf("expected %dK flash, got %dK", tt.flash, device.Memory.Flash)
			}
			if device.Memory.Ram != tt.ram {
				t.Errorf("expected %dK RAM, got %dK", tt.ram, device.Memory.Ram)
			}
		})
	}
}

func TestFindBySeries(t *testing.T) {
	info, err := FindBySeries("samd21")
	if err != nil {
		t.Fatal(err)
	}
	if info.Cpu != "cortex-m0plus" {
		t.Errorf("expected cortex-m0plus, got %s", info.Cpu)
	}
	if info.Profile != "thumbv6m-none-eabi" {
		t.Errorf("expected thumbv6m-none-eabi, got %s", info.Profile)
	}

	if _, err := FindBySeries("msp430"); !errors.Is(err, ErrUnknownDevice) {
		t.Errorf("expected ErrUnknownDevice, got %v", err)
	}
}

func TestMemoryMap(t *testing.T) {
	device, err := FindByChip("atsamd21g16a")
	if err != nil {
		t.Fatal(err)
	}

	m, err := device.MemoryMap()
	if err != nil {
		t.Fatal(err)
	}

	flash, err := m.Find("FLASH")
	if err != nil {
		t.Fatal(err)
	}
	if flash.Base != 0x00000000 || flash.Length != 0x10000 {
		t.Errorf("unexpected flash region %#x+%#x", flash.Base, flash.Length)
	}
	if flash.Attr.Writable() {
		t.Error("flash must not be writable")
	}

	ram, err := m.Find("RAM")
	if err != nil {
		t.Fatal(err)
	}
	if ram.Base != 0x20000000 || ram.Length != 0x2000 {
		t.Errorf("unexpected RAM region %#x+%#x", ram.Base, ram.Length)
	}
	if ram.End() != 0x20002000 {
		t.Errorf("expected RAM end 0x20002000, got %#x", ram.End())
	}
}

func TestInterruptValuesAscend(t *testing.T) {
	for _, info := range All() {
		last := -1
		for _, irq := range info.Interrupts {
			if irq.Value <= last {
				t.Errorf("series %s: interrupt %s value %d out of order", info.Series, irq.Name, irq.Value)
			}
			last = irq.Value
		}
	}
}
