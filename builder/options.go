package builder

// Options selects what to build and how.
type Options struct {
	Manifest string
	Output   string

	Device    string
	Profile   string // overrides the device default profile
	Entry     string // overrides the manifest entry symbol
	StackSize int    // overrides the manifest stack size, in bytes

	Linker            string // "lld", "bfd" or empty for automatic
	AllowBrokenLinker bool

	// Startup selects who provides the startup code: "custom" (the default)
	// emits startup.s and links with -nostartfiles, "toolchain" keeps the
	// toolchain's own startup object and emits none.
	Startup string

	Environment Env
}

func (o Options) customStartup() bool {
	return o.Startup != "toolchain"
}

func (o Options) environment() Env {
	if o.Environment == nil {
		return Environment()
	}
	return o.Environment
}
