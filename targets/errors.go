package targets

import "errors"

var (
	ErrUnknownProfile = errors.New("unknown target profile")
)
