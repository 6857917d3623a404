package boot

import (
	"fmt"
	"strings"

	"github.com/voltbyte/bringup/vector"
)

// Startup renders the startup assembly for a vector table: the reset
// handler performing the copy and zero loops, the default handler trap, the
// fully populated vector table and weak aliases pointing every unclaimed
// handler at the trap. The file replaces the toolchain's startup object, so
// builds using it must link with startup injection disabled.
func Startup(table *vector.Table, entry string) string {
	var w strings.Builder

	// Write preamble
	w.WriteString(`.syntax unified

// Entered with interrupts masked and SP already loaded from the vector
// table. Copies the initialized data template from flash into RAM, zeroes
// the bss range and hands control to the application entry.
.section .text.Reset_Handler
.global  Reset_Handler
.type    Reset_Handler, %function
Reset_Handler:
    ldr  r0, =_sidata
    ldr  r1, =_sdata
    ldr  r2, =_edata
1:
    cmp  r1, r2
    bcs  2f
    ldm  r0!, {r3}
    stm  r1!, {r3}
    b    1b
2:
    movs r3, #0
    ldr  r0, =_sbss
    ldr  r1, =_ebss
3:
    cmp  r0, r1
    bcs  4f
    stm  r0!, {r3}
    b    3b
4:
`)
	fmt.Fprintf(&w, "    bl   %s\n", entry)
	w.WriteString(`    b    Default_Handler
.size Reset_Handler, .-Reset_Handler

// This is the default handler for interrupts, if triggered but not defined.
.section .text.Default_Handler
.global  Default_Handler
.type    Default_Handler, %function
Default_Handler:
    wfe
    b    Default_Handler
.size Default_Handler, .-Default_Handler

// Avoid the need for repeated .weak and .set instructions.
.macro IRQ handler
    .weak  \handler
    .set   \handler, Default_Handler
.endm

// Must set the "a" flag on the section:
// https://sourceware.org/binutils/docs/as/Section.html#ELF-Version
.section .isr_vector, "a", %progbits
.global  __isr_vector
__isr_vector:
    // Interrupt vector as defined by Cortex-M, starting with the stack top.
    // On reset, SP is initialized with *0x0 and PC is loaded with *0x4,
    // loading __stack and Reset_Handler.
`)

	for _, e := range table.Entries {
		if e.Reserved {
			fmt.Fprintf(&w, "    .long 0 /* %s */\n", e.Index)
			continue
		}
		fmt.Fprintf(&w, "    .long %s\n", e.Name)
	}
	w.WriteString(".size __isr_vector, .-__isr_vector\n\n")

	// Declare weak aliases so unimplemented handlers resolve to the trap.
	seen := map[string]bool{
		"__stack":         true,
		"Reset_Handler":   true,
		"Default_Handler": true,
	}
	for _, e := range table.Entries {
		if e.Reserved || seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		fmt.Fprintf(&w, "IRQ %s\n", e.Name)
	}

	return w.String()
}
