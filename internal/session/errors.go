package session

import "errors"

var (
	// ErrNotFound means the referenced game code is unknown: mistyped,
	// expired, or already cleaned up after its last player left.
	ErrNotFound = errors.New("game not found")

	// ErrFull means two distinct connections already hold the player slots.
	ErrFull = errors.New("game is full")
)
