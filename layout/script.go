package layout

import (
	"fmt"
	"strings"
)

// Script renders the device specific linker script for a resolved layout:
// the MEMORY block, the stack size and an include of the shared section
// rules. The section rules mirror exactly what Resolve computes, so linking
// with the script reproduces the layout's addresses.
func Script(l *Layout) string {
	var w strings.Builder

	fmt.Fprintln(&w, "MEMORY")
	fmt.Fprintln(&w, "{")
	for _, region := range l.Memory {
		fmt.Fprintf(&w, "\t%s (%s) : ORIGIN = 0x%08X, LENGTH = %s\n", region.Name, region.Attr, region.Base, lengthString(region.Length))
	}
	fmt.Fprintln(&w, "}")

	var stackSize uint64
	for _, placement := range l.Placements {
		if placement.Section.Kind == KindStack {
			stackSize = placement.Length()
		}
	}
	fmt.Fprintf(&w, "__stack_size = %s;\n", lengthString(stackSize))
	fmt.Fprintln(&w, "INCLUDE program.ld")

	return w.String()
}

// ProgramScript returns the shared section rules included by every device
// script. The boundary symbols defined here carry the same names and
// meanings as Symbols.
func ProgramScript() string {
	return programScript
}

func lengthString(length uint64) string {
	if length != 0 && length%1024 == 0 {
		return fmt.Sprintf("%dK", length/1024)
	}
	return fmt.Sprintf("%d", length)
}

const programScript = `ENTRY(Reset_Handler)

SECTIONS
{
	.text :
	{
		_stext = .;
		KEEP(*(.isr_vector))
		*(.text*)
		*(.rodata*)
		. = ALIGN(4);
		_etext = .;
	} > FLASH

	.data :
	{
		. = ALIGN(4);
		_sdata = .;
		*(.data*)
		. = ALIGN(4);
		_edata = .;
	} > RAM AT> FLASH
	_sidata = LOADADDR(.data);

	.bss (NOLOAD) :
	{
		. = ALIGN(4);
		_sbss = .;
		*(.bss*)
		*(COMMON)
		. = ALIGN(4);
		_ebss = .;
	} > RAM

	__stack_bottom = ORIGIN(RAM) + LENGTH(RAM) - __stack_size;
	__stack = ORIGIN(RAM) + LENGTH(RAM);

	/DISCARD/ :
	{
		*(.ARM.exidx*)
		*(.ARM.extab*)
	}
}
`
