package client

import (
	"context"
	"errors"
)

// Recognizer is the external speech-capture collaborator: a black box that
// eventually yields one transcript or one error. Implementations live with
// whatever capture backend the frontend has; tests stub it.
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
}

// Capture failure codes, mirroring the capture backend's error vocabulary.
var (
	ErrNoSpeech     = errors.New("no-speech")
	ErrNoMicrophone = errors.New("audio-capture")
	ErrNotAllowed   = errors.New("not-allowed")

	// ErrCaptureInProgress is returned when a capture is started while a
	// team is already speaking, instead of silently racing two captures.
	ErrCaptureInProgress = errors.New("capture already in progress")
)

// CaptureMessage maps a capture failure to its user-facing Gujarati text.
func CaptureMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoSpeech):
		return "કોઈ અવાજ સંભળાયો નથી. ફરી પ્રયાસ કરો."
	case errors.Is(err, ErrNoMicrophone):
		return "માઇક્રોફોન મળ્યું નથી. કૃપા કરીને માઇક્રોફોન ચાલુ કરો."
	case errors.Is(err, ErrNotAllowed):
		return "માઇક્રોફોનની પરવાનગી આપો."
	default:
		return "શબ્દ ઓળખવામાં સમસ્યા. ફરી પ્રયાસ કરો."
	}
}
