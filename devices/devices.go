package devices

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/voltbyte/bringup/memmap"
)

//go:embed devices.yaml
var rawDevices []byte
var devices Devices

type Devices []DeviceInfo

// DeviceInfo describes a device series sharing a core, an address map and an
// interrupt set. Flash and RAM sizes vary per chip and are decoded from the
// size code embedded in the chip name.
type DeviceInfo struct {
	Series     string                `yaml:"series"`
	Vendor     string                `yaml:"vendor"`
	Chips      []string              `yaml:"chips"`
	Cpu        string                `yaml:"cpu"`
	Profile    string                `yaml:"profile"`
	FlashBase  uint64                `yaml:"flashBase"`
	RamBase    uint64                `yaml:"ramBase"`
	SizeCode   string                `yaml:"sizeCode"`
	Memories   map[string]MemorySpec `yaml:"memories"`
	Interrupts []Interrupt           `yaml:"interrupts"`
}

// MemorySpec holds memory sizes in KiB for one size code.
type MemorySpec struct {
	Flash int `yaml:"flash"`
	Ram   int `yaml:"ram"`
}

// Interrupt is one external interrupt line. Value is the IRQ number, not the
// vector table index.
type Interrupt struct {
	Name  string `yaml:"name"`
	Value int    `yaml:"value"`
}

// Device is a fully resolved chip: its series information plus the decoded
// memory sizes.
type Device struct {
	Name   string
	Info   DeviceInfo
	Memory MemorySpec
}

// MemoryMap returns the device's address map with flash and RAM regions.
func (d Device) MemoryMap() (memmap.Map, error) {
	return memmap.New(
		memmap.Region{
			Name:   "FLASH",
			Base:   d.Info.FlashBase,
			Length: uint64(d.Memory.Flash) * 1024,
			Attr:   memmap.Read | memmap.Exec,
		},
		memmap.Region{
			Name:   "RAM",
			Base:   d.Info.RamBase,
			Length: uint64(d.Memory.Ram) * 1024,
			Attr:   memmap.Read | memmap.Write | memmap.Exec,
		},
	)
}

func (t Devices) FindBySeries(name string) (DeviceInfo, error) {
	for _, device := range t {
		if device.Series == strings.ToLower(name) {
			return device, nil
		}
	}
	return DeviceInfo{}, errors.Join(ErrUnknownDevice, fmt.Errorf("series %q", name))
}

func (t Devices) FindByChip(name string) (Device, error) {
	chip := strings.ToLower(name)
	for _, device := range t {
		if slices.Contains(device.Chips, chip) {
			spec, err := device.decodeMemories(chip)
			if err != nil {
				return Device{}, err
			}
			return Device{Name: chip, Info: device, Memory: spec}, nil
		}
	}
	return Device{}, errors.Join(ErrUnknownDevice, fmt.Errorf("chip %q", name))
}

// decodeMemories extracts the size code from the chip name and looks up the
// memory sizes for it.
func (d DeviceInfo) decodeMemories(chip string) (MemorySpec, error) {
	regex, err := regexp.Compile(d.SizeCode)
	if err != nil {
		return MemorySpec{}, fmt.Errorf("series %s has invalid size code pattern: %w", d.Series, err)
	}
	codes := regex.FindStringSubmatch(chip)
	if len(codes) < 2 {
		return MemorySpec{}, fmt.Errorf("cannot determine memories for %s", chip)
	}
	spec, ok := d.Memories[codes[1]]
	if !ok {
		return MemorySpec{}, fmt.Errorf("cannot determine memories for %s", chip)
	}
	return spec, nil
}

// FindBySeries returns the series entry with the given name.
func FindBySeries(name string) (DeviceInfo, error) {
	return devices.FindBySeries(name)
}

// FindByChip resolves a chip name to its device, decoding the flash and RAM
// sizes from the name.
func FindByChip(name string) (Device, error) {
	return devices.FindByChip(name)
}

// All returns every registered device series.
func All() Devices {
	return devices
}

func init() {
	var t struct {
		Elements []DeviceInfo `yaml:"devices"`
	}
	if err := yaml.Unmarshal(rawDevices, &t); err != nil {
		panic(err)
	}

	devices = t.Elements
}
