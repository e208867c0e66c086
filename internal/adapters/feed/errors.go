package feed

import "errors"

// Sentinel errors of the quote sources.
var (
	ErrNoPrice   = errors.New("no price in quote response")
	ErrBadStatus = errors.New("unexpected quote response status")
	ErrNoSymbols = errors.New("no index symbols configured")
	ErrNoFetcher = errors.New("no quote fetcher configured")
)
