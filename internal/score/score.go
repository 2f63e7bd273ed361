// Package score provides ScoreStore implementations for hosts without Nakama storage.
package score

import "errors"

// ErrNotFound is returned by Load when no score has been saved yet.
var ErrNotFound = errors.New("score not found")
