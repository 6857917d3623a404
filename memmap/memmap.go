package memmap

import (
	"errors"
	"fmt"
	"strings"
)

// Attr describes the access permissions of a memory region.
type Attr uint8

const (
	Read Attr = 1 << iota
	Write
	Exec
)

func (a Attr) Readable() bool   { return a&Read != 0 }
func (a Attr) Writable() bool   { return a&Write != 0 }
func (a Attr) Executable() bool { return a&Exec != 0 }

// String formats the attribute set using linker script notation.
func (a Attr) String() string {
	var sb strings.Builder
	if a.Readable() {
		sb.WriteByte('r')
	}
	if a.Writable() {
		sb.WriteByte('w')
	}
	if a.Executable() {
		sb.WriteByte('x')
	}
	return sb.String()
}

// Region is a contiguous physical address range on the device.
type Region struct {
	Name   string
	Base   uint64
	Length uint64
	Attr   Attr
}

// End returns the first address past the region.
func (r Region) End() uint64 {
	return r.Base + r.Length
}

// Contains reports whether [addr, addr+size) lies entirely inside the region.
func (r Region) Contains(addr, size uint64) bool {
	return addr >= r.Base && addr+size <= r.End()
}

// Overlaps reports whether two regions share any address.
func (r Region) Overlaps(other Region) bool {
	return r.Base < other.End() && other.Base < r.End()
}

// Map is the set of regions making up a device's address space.
type Map []Region

// New creates a validated map from the given regions.
func New(regions ...Region) (Map, error) {
	m := Map(regions)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Find returns the region with the given name.
func (m Map) Find(name string) (Region, error) {
	for _, region := range m {
		if region.Name == name {
			return region, nil
		}
	}
	return Region{}, errors.Join(ErrNoSuchRegion, fmt.Errorf("region %q", name))
}

// Validate checks that every region is non-empty, does not wrap the address
// space and does not overlap any other region.
func (m Map) Validate() error {
	for i, region := range m {
		if len(region.Name) == 0 {
			return ErrUnnamedRegion
		}
		if region.Length == 0 {
			return errors.Join(ErrEmptyRegion, fmt.Errorf("region %q", region.Name))
		}
		if region.End() < region.Base {
			return errors.Join(ErrRegionWraps, fmt.Errorf("region %q", region.Name))
		}
		for _, other := range m[i+1:] {
			if region.Name == other.Name {
				return errors.Join(ErrDuplicateRegion, fmt.Errorf("region %q", region.Name))
			}
			if region.Overlaps(other) {
				return errors.Join(ErrRegionOverlap, fmt.Errorf("regions %q and %q", region.Name, other.Name))
			}
		}
	}
	return nil
}
