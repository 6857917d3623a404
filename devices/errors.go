package devices

import "errors"

var (
	ErrUnknownDevice = errors.New("unknown device")
)
