package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/voltbyte/bringup/layout"
)

// Program is the build description: the application entry symbol, the stack
// size and the ordered list of sections to place. The vector table and the
// stack section itself are owned by the build pipeline, not the manifest.
type Program struct {
	Name     string    `yaml:"name"`
	Entry    string    `yaml:"entry"`
	Stack    Size      `yaml:"stack"`
	Sections []Section `yaml:"sections"`

	// Dir is the directory the manifest was loaded from. Section file
	// references resolve relative to it.
	Dir string `yaml:"-"`
}

// Section describes one chunk of the program. Either Size or File gives the
// contents, never both.
type Section struct {
	Name  string `yaml:"name"`
	Kind  string `yaml:"kind"`
	Size  Size   `yaml:"size"`
	File  string `yaml:"file"`
	Align uint64 `yaml:"align"`
}

// LayoutKind maps the manifest kind to the layout model.
func (s Section) LayoutKind() (layout.Kind, error) {
	switch s.Kind {
	case "code":
		return layout.KindCode, nil
	case "rodata":
		return layout.KindRodata, nil
	case "data":
		return layout.KindData, nil
	case "bss":
		return layout.KindBss, nil
	}
	return 0, fmt.Errorf("section %q has unknown kind %q", s.Name, s.Kind)
}

// Path returns the section's contents file resolved against the manifest
// directory.
func (s Section) Path(dir string) string {
	if filepath.IsAbs(s.File) {
		return s.File
	}
	return filepath.Join(dir, s.File)
}

// Load reads and parses a program manifest.
func Load(fname string) (*Program, error) {
	b, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	program, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	program.Dir = filepath.Dir(fname)
	return program, nil
}

// Parse decodes a manifest and validates it. Unknown fields are rejected so
// typos fail the build instead of silently dropping sections.
func Parse(b []byte) (*Program, error) {
	var program Program
	decoder := yaml.NewDecoder(strings.NewReader(string(b)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&program); err != nil {
		return nil, err
	}

	if len(program.Entry) == 0 {
		program.Entry = "main"
	}
	if program.Stack == 0 {
		program.Stack = 4096
	}

	var err error
	for i, section := range program.Sections {
		if len(section.Name) == 0 {
			err = errors.Join(err, fmt.Errorf("section %d has no name", i))
			continue
		}
		if _, kindErr := section.LayoutKind(); kindErr != nil {
			err = errors.Join(err, kindErr)
		}
		if section.Size != 0 && len(section.File) > 0 {
			err = errors.Join(err, fmt.Errorf("section %q has both a size and a contents file", section.Name))
		}
		if section.Size == 0 && len(section.File) == 0 {
			err = errors.Join(err, fmt.Errorf("section %q has neither a size nor a contents file", section.Name))
		}
		if section.Kind == "bss" && len(section.File) > 0 {
			err = errors.Join(err, fmt.Errorf("section %q is zero initialized and cannot have contents", section.Name))
		}
	}
	if err != nil {
		return nil, err
	}

	return &program, nil
}

// Size is a byte count. It unmarshals from plain integers, hexadecimal
// literals and K/M suffixed strings.
type Size uint64

func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	text := strings.TrimSpace(value.Value)

	multiplier := uint64(1)
	switch {
	case strings.HasSuffix(text, "K"), strings.HasSuffix(text, "k"):
		multiplier = 1024
		text = text[:len(text)-1]
	case strings.HasSuffix(text, "M"), strings.HasSuffix(text, "m"):
		multiplier = 1024 * 1024
		text = text[:len(text)-1]
	}

	base := 10
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		base = 16
		text = text[2:]
	}

	parsed, err := strconv.ParseUint(text, base, 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid size %q", value.Line, value.Value)
	}
	*s = Size(parsed * multiplier)
	return nil
}
