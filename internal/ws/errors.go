package ws

import (
	"errors"

	"github.com/devpatel/shabd-ramat/internal/session"
)

// User-facing failure strings, kept in Gujarati like the validator's.
const (
	msgNotFound     = "રમત મળી નથી"
	msgFull         = "રમત ભરેલી છે"
	msgCreateFailed = "રમત બનાવવામાં નિષ્ફળ"
	msgActionFailed = "ક્રિયા નિષ્ફળ થઈ. ફરી પ્રયાસ કરો."
)

func userMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return msgNotFound
	case errors.Is(err, session.ErrFull):
		return msgFull
	default:
		return msgActionFailed
	}
}
