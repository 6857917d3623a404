package image

import (
	"fmt"

	"github.com/voltbyte/bringup/layout"
)

// DefaultPad fills gaps between flash sections. 0xFF matches the erased
// state of NOR flash, so padded bytes cost no programming time.
const DefaultPad byte = 0xFF

// Flatten renders the flash resident contents of a layout into a single
// flat image starting at the lowest load address. Section contents come
// from the placements themselves or from the contents map, which overrides
// by section name; sections with only a size are filled with the pad byte.
// Gaps between sections are filled with the pad byte as well.
func Flatten(l *layout.Layout, contents map[string][]byte, pad byte) ([]byte, error) {
	type piece struct {
		name string
		addr uint64
		data []byte
	}

	var pieces []piece
	base := ^uint64(0)
	end := uint64(0)

	for _, placement := range l.Placements {
		switch placement.Section.Kind {
		case layout.KindBss, layout.KindStack:
			// Nothing stored in flash.
			continue
		}

		data, ok := contents[placement.Section.Name]
		if !ok {
			data = placement.Section.Data
		}
		if data == nil {
			data = make([]byte, placement.Length())
			for i := range data {
				data[i] = pad
			}
		}
		if uint64(len(data)) != placement.Length() {
			return nil, fmt.Errorf("section %s contents are %d bytes, placement is %d",
				placement.Section.Name, len(data), placement.Length())
		}

		pieces = append(pieces, piece{placement.Section.Name, placement.LoadAddr, data})
		if placement.LoadAddr < base {
			base = placement.LoadAddr
		}
		if e := placement.LoadAddr + uint64(len(data)); e > end {
			end = e
		}
	}

	if len(pieces) == 0 {
		return nil, nil
	}

	buf := make([]byte, end-base)
	for i := range buf {
		buf[i] = pad
	}
	for _, p := range pieces {
		copy(buf[p.addr-base:], p.data)
	}

	return buf, nil
}
