package layout

import (
	"fmt"
	"strings"
)

// Report renders a readable summary of the resolved layout: every placement
// with its addresses, followed by the boundary symbols.
func Report(l *Layout) string {
	var w strings.Builder

	fmt.Fprintf(&w, "%-14s %-8s %-6s %-10s %-10s %s\n", "SECTION", "KIND", "REGION", "ADDR", "LOAD", "SIZE")
	for _, placement := range l.Placements {
		fmt.Fprintf(&w, "%-14s %-8s %-6s 0x%08X 0x%08X %d\n",
			placement.Section.Name,
			placement.Section.Kind,
			placement.Region,
			placement.Addr,
			placement.LoadAddr,
			placement.Length())
	}

	fmt.Fprintln(&w)
	for _, symbol := range l.Symbols.List() {
		fmt.Fprintf(&w, "%-14s = 0x%08X\n", symbol.Name, symbol.Addr)
	}

	return w.String()
}
