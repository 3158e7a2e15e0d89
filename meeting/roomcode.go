package meeting

import (
	"crypto/rand"
	"math/big"
)

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewRoomCode returns n characters drawn uniformly from A-Z0-9.
func NewRoomCode(n int) (string, error) {
	max := big.NewInt(int64(len(roomCodeAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = roomCodeAlphabet[idx.Int64()]
	}
	return string(b), nil
}
