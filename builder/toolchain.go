package builder

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/coreos/go-semver/semver"
	"k8s.io/klog/v2"

	"github.com/voltbyte/bringup/targets"
)

// LinkerFlavor tells GNU ld and ld.lld apart. Both accept the same script
// language but differ in veneer generation and default flags.
type LinkerFlavor int

const (
	LinkerUnknown LinkerFlavor = iota
	LinkerBFD
	LinkerLLD
)

func (f LinkerFlavor) String() string {
	switch f {
	case LinkerBFD:
		return "GNU ld"
	case LinkerLLD:
		return "ld.lld"
	}
	return "unknown"
}

type Toolchain struct {
	LD      string
	GDB     string
	ObjCopy string

	LDFlavor  LinkerFlavor
	LDVersion *semver.Version
}

// FindToolchain locates the external tools. LD, GDB and OBJCOPY in the
// environment override discovery; otherwise the LLVM tools are preferred
// with the GNU ARM embedded tools as fallback.
func FindToolchain(opts Options) (Toolchain, error) {
	env := opts.environment()

	ld := env.Value("LD")
	if len(ld) == 0 {
		names := []string{"ld.lld", "arm-none-eabi-ld", "ld"}
		switch opts.Linker {
		case "lld":
			names = []string{"ld.lld"}
		case "bfd":
			names = []string{"arm-none-eabi-ld", "ld"}
		}

		var err error
		if ld, err = findFirst(names...); err != nil {
			return Toolchain{}, err
		}
	}

	gdb := env.Value("GDB")
	if len(gdb) == 0 {
		var err error
		if gdb, err = findFirst("gdb-multiarch", "arm-none-eabi-gdb"); err != nil {
			return Toolchain{}, err
		}
	}

	objcopy := env.Value("OBJCOPY")
	if len(objcopy) == 0 {
		var err error
		if objcopy, err = findFirst("llvm-objcopy", "arm-none-eabi-objcopy", "objcopy"); err != nil {
			return Toolchain{}, err
		}
	}

	tc := Toolchain{
		LD:      ld,
		GDB:     gdb,
		ObjCopy: objcopy,
	}
	tc.LDFlavor, tc.LDVersion = probeLinker(ld)
	return tc, nil
}

func findFirst(names ...string) (string, error) {
	var firstErr error
	for _, name := range names {
		fname, err := findExecutable(name)
		if err == nil {
			return fname, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", errors.Join(ErrNoToolchain, firstErr)
}

func findExecutable(cmd string) (string, error) {
	fname, err := exec.LookPath(cmd)
	if err == nil {
		fname, err = filepath.Abs(fname)
	}
	return fname, err
}

func probeLinker(ld string) (LinkerFlavor, *semver.Version) {
	output, err := exec.Command(ld, "--version").Output()
	if err != nil {
		return LinkerUnknown, nil
	}
	return parseLinkerVersion(string(output))
}

var linkerVersionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

func parseLinkerVersion(output string) (LinkerFlavor, *semver.Version) {
	line := output
	if i := strings.IndexByte(output, '\n'); i >= 0 {
		line = output[:i]
	}

	flavor := LinkerUnknown
	switch {
	case strings.Contains(line, "LLD"):
		flavor = LinkerLLD
	case strings.Contains(line, "GNU ld"):
		flavor = LinkerBFD
	}

	m := linkerVersionPattern.FindStringSubmatch(line)
	if m == nil {
		return flavor, nil
	}
	patch := m[3]
	if len(patch) == 0 {
		patch = "0"
	}

	version, err := semver.NewVersion(fmt.Sprintf("%s.%s.%s", m[1], m[2], patch))
	if err != nil {
		return flavor, nil
	}
	return flavor, version
}

// Interworking veneers from these GNU ld releases can reach Thumb code with
// the Thumb bit clear when the target is a baseline core. The first long
// branch then faults, so these versions are refused for armv6-m builds
// unless Options.AllowBrokenLinker is set.
var brokenBFD = []struct {
	min, max semver.Version
}{
	{*semver.New("2.35.0"), *semver.New("2.36.2")},
}

func checkLinker(tc Toolchain, profile targets.Profile, allowBroken bool) error {
	if tc.LDFlavor != LinkerBFD || tc.LDVersion == nil {
		return nil
	}
	if profile.Rank() != 0 {
		return nil
	}

	for _, r := range brokenBFD {
		if !tc.LDVersion.LessThan(r.min) && tc.LDVersion.LessThan(r.max) {
			err := fmt.Errorf("GNU ld %s emits bad interworking veneers for %s, use %s or newer or ld.lld",
				tc.LDVersion, profile.Name, r.max)
			if allowBroken {
				klog.Warningf("%v (continuing anyway)", err)
				return nil
			}
			return errors.Join(ErrBrokenLinker, err)
		}
	}
	return nil
}
