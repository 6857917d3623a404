package boot

import "errors"

var (
	ErrUnmappedAddress = errors.New("address range is not mapped")
)
