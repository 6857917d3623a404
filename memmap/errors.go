package memmap

import "errors"

var (
	ErrNoSuchRegion    = errors.New("no such region")
	ErrUnnamedRegion   = errors.New("region has no name")
	ErrEmptyRegion     = errors.New("region has zero length")
	ErrRegionWraps     = errors.New("region wraps the address space")
	ErrDuplicateRegion = errors.New("duplicate region name")
	ErrRegionOverlap   = errors.New("regions overlap")
)
