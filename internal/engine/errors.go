package engine

import "errors"

var (
	// ErrUnknownTemplate is returned for palette names that do not exist.
	ErrUnknownTemplate = errors.New("unknown template")

	// ErrNotManaged is returned for items that are not (or no longer) part of the manager.
	ErrNotManaged = errors.New("item not managed")
)
