package domain

import "errors"

var (
	// ErrBinOverCapacity rejects a putaway that would push a bin past
	// its configured capacity. Capacity 0 means unlimited.
	ErrBinOverCapacity = errors.New("bin is over capacity")
)
