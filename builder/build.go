package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"

	"github.com/voltbyte/bringup/boot"
	"github.com/voltbyte/bringup/devices"
	"github.com/voltbyte/bringup/image"
	"github.com/voltbyte/bringup/layout"
	"github.com/voltbyte/bringup/manifest"
	"github.com/voltbyte/bringup/targets"
	"github.com/voltbyte/bringup/vector"
)

// BuildAll builds every manifest in turn. With more than one manifest the
// output path must be a directory; each program then gets a subdirectory
// named after its manifest.
func BuildAll(ctx context.Context, manifests []string, opts Options) error {
	// Check output path with respect to the number of input manifests
	if info, err := os.Stat(opts.Output); err == nil && !info.IsDir() && len(manifests) > 1 {
		return ErrUnexpectedOutputPath
	}

	for _, fname := range manifests {
		perBuild := opts
		perBuild.Manifest = fname
		if len(manifests) > 1 {
			base := strings.TrimSuffix(filepath.Base(fname), filepath.Ext(fname))
			perBuild.Output = filepath.Join(opts.Output, base)
		}

		artifacts, err := Build(ctx, perBuild)
		if err != nil {
			return err
		}
		if len(perBuild.Output) != 0 {
			if err := artifacts.Write(perBuild.Output); err != nil {
				return err
			}
		}
	}
	return nil
}

// Build runs the pipeline for one program: device and profile resolution,
// manifest parsing, layout, vector table construction and validation,
// script and startup emission, image encoding. Everything is computed
// before anything can be written, so a failure produces no output at all.
func Build(ctx context.Context, opts Options) (*Artifacts, error) {
	if len(opts.Device) == 0 {
		return nil, ErrNoDevice
	}
	switch opts.Startup {
	case "", "custom", "toolchain":
	default:
		return nil, fmt.Errorf("unknown startup mode %q", opts.Startup)
	}
	device, err := devices.FindByChip(opts.Device)
	if err != nil {
		return nil, err
	}

	profileName := device.Info.Profile
	if len(opts.Profile) != 0 {
		profileName = opts.Profile
	}
	profile, err := targets.FindByName(profileName)
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("building for %s (%s, %d KiB flash, %d KiB ram)",
		device.Name, profile.Name, device.Memory.Flash, device.Memory.Ram)

	// Toolchain discovery is advisory here. Without the tools the artifacts
	// are still produced; linking just cannot run on this host.
	tc, err := FindToolchain(opts)
	if err != nil {
		klog.Warningf("toolchain: %v", err)
	} else if err := checkLinker(tc, profile, opts.AllowBrokenLinker); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	program, err := manifest.Load(opts.Manifest)
	if err != nil {
		return nil, err
	}
	entry := program.Entry
	if len(opts.Entry) != 0 {
		entry = opts.Entry
	}
	stackSize := uint64(program.Stack)
	if opts.StackSize > 0 {
		stackSize = uint64(opts.StackSize)
	}

	memory, err := device.MemoryMap()
	if err != nil {
		return nil, err
	}

	irqs := deviceInterrupts(device)
	sections := []layout.Section{
		{Name: ".isr_vector", Kind: layout.KindVectors, Size: uint64(vector.Count(irqs)) * 4},
	}
	for _, section := range program.Sections {
		kind, err := section.LayoutKind()
		if err != nil {
			return nil, err
		}

		s := layout.Section{Name: section.Name, Kind: kind, Size: uint64(section.Size), Align: section.Align}
		if len(section.File) != 0 {
			data, err := os.ReadFile(section.Path(program.Dir))
			if err != nil {
				return nil, err
			}
			s.Data = data
			s.Size = 0
		}
		sections = append(sections, s)
	}
	sections = append(sections, layout.Section{Name: ".stack", Kind: layout.KindStack, Size: stackSize})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l, err := layout.Resolve(layout.Plan{Memory: memory, Sections: sections})
	if err != nil {
		return nil, err
	}
	klog.V(2).Infof("layout:\n%s", layout.Report(l))

	// The host model needs concrete handler addresses. The entry lands on
	// the first code byte and every other handler shares the trap there.
	// On-device builds resolve these symbols at link time instead.
	handlerBase := l.Symbols.TextEnd
	for _, placement := range l.Placements {
		if placement.Section.Kind == layout.KindCode {
			handlerBase = placement.Addr
			break
		}
	}

	table, err := vector.Build(vector.Config{
		Profile:        profile,
		Interrupts:     irqs,
		InitialSP:      l.Symbols.StackTop,
		Entry:          handlerBase,
		DefaultHandler: handlerBase,
	})
	if err != nil {
		return nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	binary, err := image.Flatten(l, map[string][]byte{".isr_vector": table.Encode()}, image.DefaultPad)
	if err != nil {
		return nil, err
	}
	reset, _ := table.Lookup(vector.Reset)

	var startup string
	if opts.customStartup() {
		startup = boot.Startup(table, entry)
	}

	return &Artifacts{
		Device:    device,
		Profile:   profile,
		Program:   program,
		Layout:    l,
		Table:     table,
		Script:    layout.Script(l),
		Startup:   startup,
		Report:    layout.Report(l),
		Binary:    binary,
		Hex:       image.EncodeHex(l.Symbols.TextStart, binary, uint32(reset.Addr)),
		LinkFlags: linkFlags(profile, opts.customStartup()),
		Runner:    append(profile.RunnerArgs(), program.Name+".elf"),
		Toolchain: tc,
	}, nil
}

// Simulate loads the flat image into a host model of the device memory and
// runs the reset sequence, returning the machine state at handoff.
func Simulate(a *Artifacts) (boot.State, error) {
	mem, err := boot.NewMemory(a.Layout.Memory)
	if err != nil {
		return boot.State{}, err
	}
	if err := mem.Write(a.Layout.Symbols.TextStart, a.Binary); err != nil {
		return boot.State{}, err
	}
	return boot.Reset(mem, a.Layout.Symbols.TextStart, boot.NewSequence(a.Layout.Symbols))
}

func deviceInterrupts(device devices.Device) []vector.Interrupt {
	irqs := make([]vector.Interrupt, len(device.Info.Interrupts))
	for i, irq := range device.Info.Interrupts {
		irqs[i] = vector.Interrupt{Name: irq.Name, Value: irq.Value}
	}
	return irqs
}
