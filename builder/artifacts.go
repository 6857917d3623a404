package builder

import (
	"os"
	"path/filepath"

	"github.com/voltbyte/bringup/devices"
	"github.com/voltbyte/bringup/layout"
	"github.com/voltbyte/bringup/manifest"
	"github.com/voltbyte/bringup/targets"
	"github.com/voltbyte/bringup/vector"
)

// Artifacts is everything one build produces, held in memory until the
// whole set exists. A failed build therefore never leaves partial output
// behind.
type Artifacts struct {
	Device  devices.Device
	Profile targets.Profile
	Program *manifest.Program

	Layout  *layout.Layout
	Table   *vector.Table
	Script  string
	Startup string
	Report  string

	Binary []byte
	Hex    string

	LinkFlags []string
	Runner    []string
	Toolchain Toolchain
}

// openocdScript is the debugger side of the runner: the GDB command from
// the profile loads the image through it.
const openocdScript = `target extended-remote :3333
monitor reset halt
load
monitor reset init
`

// Write lays the artifact set out in dir, creating it if needed.
func (a *Artifacts) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	name := a.Program.Name
	type file struct {
		name string
		data []byte
	}
	files := []file{
		{"target.ld", []byte(a.Script)},
		{"program.ld", []byte(layout.ProgramScript())},
		{name + ".bin", a.Binary},
		{name + ".hex", []byte(a.Hex)},
		{name + ".map", []byte(a.Report)},
		{"openocd.gdb", []byte(openocdScript)},
	}
	// With toolchain startup there is no startup.s to write.
	if len(a.Startup) != 0 {
		files = append(files, file{"startup.s", []byte(a.Startup)})
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.name), f.data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// linkFlags are the compiler driver flags for linking against the emitted
// scripts. With custom startup the toolchain's injection is suppressed and
// the emitted startup.s is authoritative; with toolchain startup the
// default startup object stays in the link.
func linkFlags(p targets.Profile, customStartup bool) []string {
	flags := []string{
		"-T", "target.ld",
		"-nostdlib",
	}
	if customStartup {
		flags = append(flags, "-nostartfiles")
	}
	flags = append(flags,
		"-ffreestanding",
		"--target="+p.Triple,
		"-mthumb",
		"-mcpu="+p.Cpu,
	)
	if p.HardFloat() {
		flags = append(flags, "-mfloat-abi=hard", "-mfpu=fpv4-sp-d16")
	} else {
		flags = append(flags, "-mfloat-abi=soft")
	}
	return append(flags, "-Wl,--gc-sections")
}
