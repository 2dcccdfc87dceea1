package dialog

import "errors"

var (
	ErrUpstreamFetch      = errors.New("upstream fetch failed")
	ErrEmptyFeed          = errors.New("feed returned no records")
	ErrUnrecognizedIntent = errors.New("unrecognized intent")
	ErrMissingSlot        = errors.New("missing slot value")
)
