package vector

import (
	"errors"
	"fmt"
)

var (
	ErrUndefinedEntry = errors.New("undefined vector table entry")
)

// SlotError reports a handler slot that would reach the device undefined.
type SlotError struct {
	Index Index
	Name  string
}

func (e *SlotError) Error() string {
	if len(e.Name) > 0 {
		return fmt.Sprintf("vector table slot %d (%s) has no handler", e.Index, e.Name)
	}
	return fmt.Sprintf("vector table slot %d has no handler", e.Index)
}

func (e *SlotError) Is(target error) bool {
	return target == ErrUndefinedEntry
}
