package world

import "errors"

var (
	ErrUnknownKind     = errors.New("unknown entity kind")
	ErrUnknownCategory = errors.New("unknown entity category")
)
