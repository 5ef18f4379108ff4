package feed

import (
	"errors"
)

var (
	// ErrFeedTimeout marks a feed fetch that exceeded its deadline.
	ErrFeedTimeout = errors.New("feed fetch timed out")

	// ErrNoContent marks a page with no usable article body.
	ErrNoContent = errors.New("no usable content extracted")
)
