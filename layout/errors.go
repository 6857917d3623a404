package layout

import (
	"errors"
	"fmt"
)

var (
	ErrLayoutOverflow       = errors.New("layout overflows region")
	ErrNoVectorTable        = errors.New("plan has no vector table section")
	ErrMultipleVectorTables = errors.New("plan has multiple vector table sections")
	ErrNoStack              = errors.New("plan has no stack section")
	ErrMultipleStacks       = errors.New("plan has multiple stack sections")
	ErrDuplicateSection     = errors.New("duplicate section name")
	ErrBadAlignment         = errors.New("section alignment is not a power of two")
	ErrAmbiguousSize        = errors.New("section has both contents and an explicit size")
)

// OverflowError reports a region whose sections did not fit. The layout is
// abandoned rather than truncated.
type OverflowError struct {
	Region string
	Need   uint64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("sections overflow region %s by %d bytes", e.Region, e.Need)
}

func (e *OverflowError) Is(target error) bool {
	return target == ErrLayoutOverflow
}
