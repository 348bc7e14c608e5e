package session

import (
	"crypto/rand"
	"math/big"
)

const codeLength = 4

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode draws a random 4-character game code. Uniqueness against live
// sessions is the caller's job: draw, check, and redraw on collision.
func GenerateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := 0; i < codeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[num.Int64()]
	}
	return string(code), nil
}
