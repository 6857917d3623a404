package builder

import "errors"

var (
	ErrNoDevice             = errors.New("no device specified")
	ErrUnexpectedOutputPath = errors.New("unexpected output path provided")
	ErrNoToolchain          = errors.New("required tool not found")
	ErrBrokenLinker         = errors.New("linker version is incompatible")
)
