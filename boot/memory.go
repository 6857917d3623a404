package boot

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/voltbyte/bringup/memmap"
)

// Memory is a byte accurate host model of a device address space. Each
// region of the map is backed by its own buffer; accesses outside any
// region fail rather than wrap.
type Memory struct {
	regions []backedRegion
}

type backedRegion struct {
	region memmap.Region
	data   []byte
}

// NewMemory allocates a model for the given address map.
func NewMemory(m memmap.Map) (*Memory, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	mem := Memory{}
	for _, region := range m {
		mem.regions = append(mem.regions, backedRegion{
			region: region,
			data:   make([]byte, region.Length),
		})
	}
	return &mem, nil
}

func (m *Memory) find(addr, size uint64) (*backedRegion, error) {
	for i := range m.regions {
		if m.regions[i].region.Contains(addr, size) {
			return &m.regions[i], nil
		}
	}
	return nil, errors.Join(ErrUnmappedAddress, fmt.Errorf("range %#x+%#x", addr, size))
}

// Read copies memory at addr into p. The range must lie inside one region.
func (m *Memory) Read(addr uint64, p []byte) error {
	region, err := m.find(addr, uint64(len(p)))
	if err != nil {
		return err
	}
	copy(p, region.data[addr-region.region.Base:])
	return nil
}

// Write copies p into memory at addr. The range must lie inside one region.
func (m *Memory) Write(addr uint64, p []byte) error {
	region, err := m.find(addr, uint64(len(p)))
	if err != nil {
		return err
	}
	copy(region.data[addr-region.region.Base:], p)
	return nil
}

// ReadWord reads a little endian word, the way the core fetches vector
// table entries.
func (m *Memory) ReadWord(addr uint64) (uint32, error) {
	var buf [4]byte
	if err := m.Read(addr, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteWord writes a little endian word.
func (m *Memory) WriteWord(addr uint64, value uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	return m.Write(addr, buf[:])
}
